package session

import (
	"context"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"familystock/internal/logging"
	"familystock/internal/repositories/metadata"
	"familystock/internal/shared"

	_ "modernc.org/sqlite"
)

func setupMeta(t *testing.T) metadata.Repository {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE metadata (key TEXT PRIMARY KEY, value BLOB);`)
	require.NoError(t, err)

	return metadata.NewSQLiteRepository(db)
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// makeJWT builds an unsigned token whose exp claim is now+ttl. Only the
// payload matters; the client never verifies the signature.
func makeJWT(t *testing.T, ttl time.Duration) string {
	t.Helper()
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none","typ":"JWT"}`))
	payload, err := json.Marshal(map[string]any{"exp": time.Now().Add(ttl).Unix()})
	require.NoError(t, err)
	return header + "." + base64.RawURLEncoding.EncodeToString(payload) + "."
}

func authServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func writeSession(w http.ResponseWriter, access, refresh string) {
	_ = json.NewEncoder(w).Encode(map[string]any{
		"access_token":  access,
		"refresh_token": refresh,
		"user":          map[string]string{"id": "u-1", "email": "a@b.c"},
	})
}

func TestSignIn_PersistsSession(t *testing.T) {
	token := makeJWT(t, time.Hour)

	srv := authServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/token", r.URL.Path)
		assert.Equal(t, "password", r.URL.Query().Get("grant_type"))
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))

		body, _ := io.ReadAll(r.Body)
		var creds map[string]string
		require.NoError(t, json.Unmarshal(body, &creds))
		assert.Equal(t, "a@b.c", creds["email"])

		writeSession(w, token, "refresh-1")
	})

	meta := setupMeta(t)
	s := NewSupabase(srv.URL, "anon-key", meta, testLogger())
	ctx := context.Background()

	require.NoError(t, s.SignIn(ctx, "a@b.c", "secret"))

	userID, err := s.CurrentUserID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u-1", userID)
	assert.True(t, s.IsAuthenticated())

	// a fresh instance over the same store restores the session
	s2 := NewSupabase(srv.URL, "anon-key", meta, testLogger())
	require.NoError(t, s2.Restore(ctx))
	assert.True(t, s2.IsAuthenticated())
	assert.Equal(t, "a@b.c", s2.CurrentEmail())
}

func TestSignIn_BadCredentials(t *testing.T) {
	srv := authServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":"invalid_grant"}`)
	})

	s := NewSupabase(srv.URL, "anon-key", setupMeta(t), testLogger())
	err := s.SignIn(context.Background(), "a@b.c", "wrong")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
	assert.False(t, s.IsAuthenticated())
}

func TestSignUp_EmailConfirmationNeeded(t *testing.T) {
	srv := authServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/signup", r.URL.Path)
		// no token in the response when the project requires confirmation
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id": "u-1", "email": "a@b.c",
		})
	})

	s := NewSupabase(srv.URL, "anon-key", setupMeta(t), testLogger())
	err := s.SignUp(context.Background(), "a@b.c", "secret")
	assert.ErrorIs(t, err, shared.ErrEmailConfirmationNeeded)
}

func TestBearerToken_AnonWithoutSession(t *testing.T) {
	s := NewSupabase("http://unused", "anon-key", setupMeta(t), testLogger())
	tok, err := s.BearerToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "anon-key", tok)
}

func TestBearerToken_FreshTokenNotRefreshed(t *testing.T) {
	token := makeJWT(t, time.Hour)
	srv := authServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("grant_type") == "refresh_token" {
			t.Fatal("unexpected refresh for a fresh token")
		}
		writeSession(w, token, "refresh-1")
	})

	s := NewSupabase(srv.URL, "anon-key", setupMeta(t), testLogger())
	ctx := context.Background()
	require.NoError(t, s.SignIn(ctx, "a@b.c", "secret"))

	tok, err := s.BearerToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, token, tok)
}

func TestBearerToken_RefreshesNearExpiry(t *testing.T) {
	oldToken := makeJWT(t, time.Minute) // inside the refresh window
	newToken := makeJWT(t, time.Hour)

	srv := authServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("grant_type") {
		case "password":
			writeSession(w, oldToken, "refresh-1")
		case "refresh_token":
			body, _ := io.ReadAll(r.Body)
			var req map[string]string
			require.NoError(t, json.Unmarshal(body, &req))
			assert.Equal(t, "refresh-1", req["refresh_token"])
			writeSession(w, newToken, "refresh-2")
		default:
			t.Fatalf("unexpected grant: %s", r.URL.RawQuery)
		}
	})

	meta := setupMeta(t)
	s := NewSupabase(srv.URL, "anon-key", meta, testLogger())
	ctx := context.Background()
	require.NoError(t, s.SignIn(ctx, "a@b.c", "secret"))

	tok, err := s.BearerToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, newToken, tok)

	// the rotated refresh token is persisted
	v, err := meta.Get(ctx, metadata.KeyRefreshToken)
	require.NoError(t, err)
	assert.Equal(t, []byte("refresh-2"), v)
}

func TestBearerToken_RejectedRefreshExpiresSession(t *testing.T) {
	oldToken := makeJWT(t, time.Minute)

	srv := authServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("grant_type") {
		case "password":
			writeSession(w, oldToken, "refresh-1")
		case "refresh_token":
			w.WriteHeader(http.StatusBadRequest)
		}
	})

	s := NewSupabase(srv.URL, "anon-key", setupMeta(t), testLogger())
	ctx := context.Background()
	require.NoError(t, s.SignIn(ctx, "a@b.c", "secret"))

	_, err := s.BearerToken(ctx)
	assert.ErrorIs(t, err, shared.ErrTokenExpired)

	// identity survives, only the tokens are dropped
	userID, err := s.CurrentUserID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u-1", userID)
	assert.False(t, s.IsAuthenticated())
}

func TestSignOut_ClearsSessionAndWatermarks(t *testing.T) {
	token := makeJWT(t, time.Hour)
	srv := authServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeSession(w, token, "refresh-1")
	})

	meta := setupMeta(t)
	s := NewSupabase(srv.URL, "anon-key", meta, testLogger())
	ctx := context.Background()
	require.NoError(t, s.SignIn(ctx, "a@b.c", "secret"))
	require.NoError(t, meta.Set(ctx, metadata.KeyLastPullStockItems, []byte("2026-01-01T00:00:00Z")))

	require.NoError(t, s.SignOut(ctx))

	_, err := s.CurrentUserID(ctx)
	assert.ErrorIs(t, err, shared.ErrNotAuthenticated)

	v, err := meta.Get(ctx, metadata.KeyLastPullStockItems)
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestExpiresWithin(t *testing.T) {
	assert.False(t, expiresWithin(makeJWT(t, time.Hour), refreshWindow))
	assert.True(t, expiresWithin(makeJWT(t, time.Minute), refreshWindow))
	assert.True(t, expiresWithin("not-a-jwt", refreshWindow))
}
