// Package session owns the credential boundary between the sync core and the
// Supabase auth endpoint. The sync core sees only the narrow Credentials
// capability; sign-in/sign-up flows and token persistence live behind it.
package session

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"familystock/internal/repositories/metadata"
)

// Credentials is the capability the sync core needs from the session layer.
type Credentials interface {
	// CurrentUserID returns the owner id attached to synced records.
	// Returns shared.ErrNotAuthenticated when nobody is signed in.
	CurrentUserID(ctx context.Context) (string, error)

	// BearerToken returns the credential for the Authorization header,
	// refreshing it first when it is within 5 minutes of expiry. Falls back
	// to the static service key when no session exists. Fails with
	// shared.ErrTokenExpired when a refresh is irrecoverably rejected.
	BearerToken(ctx context.Context) (string, error)

	// NotifyTokenExpired clears the session's access credential, forcing
	// re-authentication. Called when the remote reports an expired token.
	NotifyTokenExpired(ctx context.Context)
}

const keyLocalOwnerID = "local_owner_id"

// LocalCredentials backs the offline-only mode: a synthetic owner id with no
// bearer credential, so records stay scoped to this device.
type LocalCredentials struct {
	meta metadata.Repository
}

func NewLocalCredentials(meta metadata.Repository) *LocalCredentials {
	return &LocalCredentials{meta: meta}
}

// CurrentUserID returns the persisted synthetic owner id, creating one on
// first use.
func (l *LocalCredentials) CurrentUserID(ctx context.Context) (string, error) {
	v, err := l.meta.Get(ctx, keyLocalOwnerID)
	if err != nil {
		return "", err
	}
	if v != nil {
		return string(v), nil
	}

	id := fmt.Sprintf("local-%s", uuid.NewString())
	if err := l.meta.Set(ctx, keyLocalOwnerID, []byte(id)); err != nil {
		return "", err
	}
	return id, nil
}

func (l *LocalCredentials) BearerToken(ctx context.Context) (string, error) {
	return "", nil
}

func (l *LocalCredentials) NotifyTokenExpired(ctx context.Context) {}
