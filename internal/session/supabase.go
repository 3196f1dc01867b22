package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sethvargo/go-retry"

	"familystock/internal/logging"
	"familystock/internal/repositories/metadata"
	"familystock/internal/shared"
)

// refreshWindow is how close to expiry a token may get before BearerToken
// refreshes it proactively.
const refreshWindow = 5 * time.Minute

// Supabase implements Credentials against the Supabase auth (GoTrue) endpoint
// and persists the session in the metadata repository, so a restart restores
// the signed-in state.
type Supabase struct {
	authURL string
	anonKey string
	http    *http.Client
	meta    metadata.Repository
	log     logging.Logger

	mu           sync.Mutex
	userID       string
	email        string
	accessToken  string
	refreshToken string
}

// NewSupabase constructs the session layer. baseURL is the project root
// (https://<project>.supabase.co); the auth endpoint lives under /auth/v1.
func NewSupabase(baseURL, anonKey string, meta metadata.Repository, log logging.Logger) *Supabase {
	return &Supabase{
		authURL: baseURL + "/auth/v1",
		anonKey: anonKey,
		http:    &http.Client{Timeout: 15 * time.Second},
		meta:    meta,
		log:     log,
	}
}

type authResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         *struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

// Restore loads a previously persisted session, if any.
func (s *Supabase) Restore(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, dst := range map[string]*string{
		metadata.KeyUserID:       &s.userID,
		metadata.KeyUserEmail:    &s.email,
		metadata.KeyAccessToken:  &s.accessToken,
		metadata.KeyRefreshToken: &s.refreshToken,
	} {
		v, err := s.meta.Get(ctx, key)
		if err != nil {
			return err
		}
		if v != nil {
			*dst = string(v)
		}
	}
	return nil
}

// SignIn authenticates with the password grant and persists the session.
func (s *Supabase) SignIn(ctx context.Context, email, password string) error {
	resp, err := s.tokenRequest(ctx, "/token?grant_type=password",
		map[string]string{"email": email, "password": password})
	if err != nil {
		return shared.ErrInvalidCredentials
	}
	if resp.AccessToken == "" || resp.User == nil {
		return shared.ErrInvalidCredentials
	}
	return s.storeSession(ctx, resp)
}

// SignUp creates an account. When the project requires email confirmation the
// response carries no token; that case surfaces as ErrEmailConfirmationNeeded.
func (s *Supabase) SignUp(ctx context.Context, email, password string) error {
	resp, err := s.tokenRequest(ctx, "/signup",
		map[string]string{"email": email, "password": password})
	if err != nil {
		return shared.ErrSignUpFailed
	}
	if resp.AccessToken == "" || resp.User == nil {
		return shared.ErrEmailConfirmationNeeded
	}
	return s.storeSession(ctx, resp)
}

// SignOut clears the persisted session and the pull watermarks, so the next
// signed-in user starts from a full pull.
func (s *Supabase) SignOut(ctx context.Context) error {
	s.mu.Lock()
	s.userID, s.email, s.accessToken, s.refreshToken = "", "", "", ""
	s.mu.Unlock()

	for _, key := range []string{
		metadata.KeyUserID, metadata.KeyUserEmail,
		metadata.KeyAccessToken, metadata.KeyRefreshToken,
		metadata.KeyLastPullStockItems, metadata.KeyLastPullShopping, metadata.KeyLastPullReceipts,
	} {
		if err := s.meta.Delete(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

// CurrentUserID implements Credentials.
func (s *Supabase) CurrentUserID(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.userID == "" {
		return "", shared.ErrNotAuthenticated
	}
	return s.userID, nil
}

// CurrentEmail returns the signed-in account's email, for display only.
func (s *Supabase) CurrentEmail() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.email
}

// IsAuthenticated reports whether a session with a live access token exists.
func (s *Supabase) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID != "" && s.accessToken != ""
}

// BearerToken implements Credentials. With no session it returns the static
// anon key; with a session it returns the access token, refreshing first when
// the token is within refreshWindow of its exp claim.
func (s *Supabase) BearerToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	token := s.accessToken
	refresh := s.refreshToken
	s.mu.Unlock()

	if token == "" {
		return s.anonKey, nil
	}

	if !expiresWithin(token, refreshWindow) {
		return token, nil
	}

	if refresh == "" {
		return "", shared.ErrTokenExpired
	}
	return s.doRefresh(ctx, refresh)
}

// NotifyTokenExpired implements Credentials: the access credential is dropped
// but the account identity is kept, so the user can sign straight back in.
func (s *Supabase) NotifyTokenExpired(ctx context.Context) {
	s.mu.Lock()
	s.accessToken = ""
	s.refreshToken = ""
	s.mu.Unlock()

	if err := s.meta.Delete(ctx, metadata.KeyAccessToken); err != nil {
		s.log.Warn(ctx, "failed to clear access token", "error", err)
	}
	if err := s.meta.Delete(ctx, metadata.KeyRefreshToken); err != nil {
		s.log.Warn(ctx, "failed to clear refresh token", "error", err)
	}
	s.log.Info(ctx, "session expired, re-authentication required")
}

// doRefresh exchanges the refresh token for a new session. Transport errors
// are retried with a short fibonacci backoff; a rejected grant means the
// session is gone and surfaces as ErrTokenExpired.
func (s *Supabase) doRefresh(ctx context.Context, refreshToken string) (string, error) {
	var resp *authResponse

	backoff := retry.WithMaxRetries(2, retry.NewFibonacci(500*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		r, err := s.tokenRequest(ctx, "/token?grant_type=refresh_token",
			map[string]string{"refresh_token": refreshToken})
		if err != nil {
			var se statusError
			if errors.As(err, &se) {
				return err // grant rejected, don't retry
			}
			return retry.RetryableError(err)
		}
		resp = r
		return nil
	})
	if err != nil {
		s.NotifyTokenExpired(ctx)
		return "", shared.ErrTokenExpired
	}

	if err := s.storeSession(ctx, resp); err != nil {
		return "", err
	}
	return resp.AccessToken, nil
}

func (s *Supabase) storeSession(ctx context.Context, resp *authResponse) error {
	s.mu.Lock()
	s.accessToken = resp.AccessToken
	s.refreshToken = resp.RefreshToken
	if resp.User != nil {
		s.userID = resp.User.ID
		s.email = resp.User.Email
	}
	userID, email := s.userID, s.email
	s.mu.Unlock()

	for key, v := range map[string]string{
		metadata.KeyUserID:       userID,
		metadata.KeyUserEmail:    email,
		metadata.KeyAccessToken:  resp.AccessToken,
		metadata.KeyRefreshToken: resp.RefreshToken,
	} {
		if err := s.meta.Set(ctx, key, []byte(v)); err != nil {
			return err
		}
	}
	return nil
}

type statusError int

func (e statusError) Error() string { return fmt.Sprintf("auth endpoint returned %d", int(e)) }

func (s *Supabase) tokenRequest(ctx context.Context, path string, body map[string]string) (*authResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.authURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", s.anonKey)

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, statusError(resp.StatusCode)
	}

	var ar authResponse
	if err := json.Unmarshal(data, &ar); err != nil {
		return nil, err
	}
	return &ar, nil
}

// expiresWithin reports whether token's exp claim falls within d from now.
// The claim is read without signature verification; the client holds no
// signing key and only needs the expiry for scheduling a refresh.
// Unparseable tokens are treated as expiring.
func expiresWithin(token string, d time.Duration) bool {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return true
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return time.Until(claims.ExpiresAt.Time) < d
}
