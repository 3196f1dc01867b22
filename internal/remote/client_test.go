package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"familystock/internal/logging"
	"familystock/internal/shared"
)

type fakeCreds struct {
	userID          string
	token           string
	userErr         error
	expiredNotified bool
}

func (f *fakeCreds) CurrentUserID(ctx context.Context) (string, error) {
	if f.userErr != nil {
		return "", f.userErr
	}
	return f.userID, nil
}

func (f *fakeCreds) BearerToken(ctx context.Context) (string, error) { return f.token, nil }

func (f *fakeCreds) NotifyTokenExpired(ctx context.Context) { f.expiredNotified = true }

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func restServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_RequestHeaders(t *testing.T) {
	srv := restServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/stock_items", r.URL.Path)
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		assert.Equal(t, "eq.u-1", r.URL.Query().Get("user_id"))
		fmt.Fprint(w, `[]`)
	})

	c := NewClient(srv.URL, "anon-key", &fakeCreds{token: "tok-1"}, testLogger())

	q := url.Values{}
	q.Set("user_id", "eq.u-1")
	var rows []json.RawMessage
	require.NoError(t, c.Get(context.Background(), "stock_items", q, &rows))
}

func TestClient_PostSendsPreferHeader(t *testing.T) {
	srv := restServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "return=representation", r.Header.Get("Prefer"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		fmt.Fprint(w, `[{"id":"a"}]`)
	})

	c := NewClient(srv.URL, "anon-key", &fakeCreds{token: "tok-1"}, testLogger())

	var saved []struct {
		ID string `json:"id"`
	}
	require.NoError(t, c.Post(context.Background(), "stock_items", map[string]string{"id": "a"}, &saved))
	require.Len(t, saved, 1)
	assert.Equal(t, "a", saved[0].ID)
}

func TestClient_ExpiredTokenNotifiesSession(t *testing.T) {
	srv := restServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"message":"JWT expired"}`)
	})

	creds := &fakeCreds{token: "tok-1"}
	c := NewClient(srv.URL, "anon-key", creds, testLogger())

	err := c.Post(context.Background(), "stock_items", map[string]string{"id": "a"}, nil)
	assert.ErrorIs(t, err, shared.ErrTokenExpired)
	assert.True(t, creds.expiredNotified)
}

func TestClient_Generic401IsStatusError(t *testing.T) {
	srv := restServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"message":"permission denied"}`)
	})

	creds := &fakeCreds{token: "tok-1"}
	c := NewClient(srv.URL, "anon-key", creds, testLogger())

	err := c.Delete(context.Background(), "stock_items", nil)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusUnauthorized, se.Code)
	assert.False(t, creds.expiredNotified)
}

func TestClient_UnreachableServer(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // nothing listens anymore

	c := NewClient(srv.URL, "anon-key", &fakeCreds{token: "tok-1"}, testLogger())

	err := c.Post(context.Background(), "stock_items", map[string]string{"id": "a"}, nil)
	assert.ErrorIs(t, err, shared.ErrServerUnavailable)

	assert.ErrorIs(t, c.Ping(context.Background()), shared.ErrServerUnavailable)
}

func TestClient_GetRetriesTransientFailures(t *testing.T) {
	attempts := 0
	srv := restServer(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			// drop the connection mid-request
			hj, ok := w.(http.Hijacker)
			require.True(t, ok)
			conn, _, err := hj.Hijack()
			require.NoError(t, err)
			conn.Close()
			return
		}
		fmt.Fprint(w, `[]`)
	})

	c := NewClient(srv.URL, "anon-key", &fakeCreds{token: "tok-1"}, testLogger())

	var rows []json.RawMessage
	require.NoError(t, c.Get(context.Background(), "stock_items", nil, &rows))
	assert.Equal(t, 2, attempts)
}

func TestClient_PingOnline(t *testing.T) {
	srv := restServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
	})

	c := NewClient(srv.URL, "anon-key", &fakeCreds{}, testLogger())
	assert.NoError(t, c.Ping(context.Background()))
}
