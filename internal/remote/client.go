// Package remote talks to the PostgREST data endpoint. Client carries the
// verbs and auth headers; the per-entity repositories build the queries and
// own the upsert/conflict flow.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"familystock/internal/logging"
	"familystock/internal/session"
	"familystock/internal/shared"
)

// tokenExpiredMarker is the body fragment PostgREST returns on a 401 caused
// by an expired JWT, as opposed to a generic authorization failure.
const tokenExpiredMarker = "JWT expired"

// StatusError is a non-2xx response that is not a token expiry.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("remote returned %d: %s", e.Code, e.Body)
}

// Client issues PostgREST requests with the project api key and the current
// bearer token. It is safe for concurrent use.
type Client struct {
	restURL string
	anonKey string
	http    *http.Client
	creds   session.Credentials
	log     logging.Logger
}

// NewClient constructs a client for the project at baseURL
// (https://<project>.supabase.co); the data endpoint lives under /rest/v1.
func NewClient(baseURL, anonKey string, creds session.Credentials, log logging.Logger) *Client {
	return &Client{
		restURL: baseURL + "/rest/v1",
		anonKey: anonKey,
		http:    &http.Client{Timeout: 30 * time.Second},
		creds:   creds,
		log:     log,
	}
}

// Get runs a filtered select. Transient transport failures are retried with
// a short fibonacci backoff; reads are idempotent so this is safe.
func (c *Client) Get(ctx context.Context, table string, query url.Values, out any) error {
	backoff := retry.WithMaxRetries(2, retry.NewFibonacci(300*time.Millisecond))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := c.do(ctx, http.MethodGet, table, query, nil, out)
		if errors.Is(err, shared.ErrServerUnavailable) {
			return retry.RetryableError(err)
		}
		return err
	})
}

// Post inserts a row. The response representation is decoded into out.
func (c *Client) Post(ctx context.Context, table string, body, out any) error {
	return c.do(ctx, http.MethodPost, table, nil, body, out)
}

// Patch updates the rows matched by query.
func (c *Client) Patch(ctx context.Context, table string, query url.Values, body, out any) error {
	return c.do(ctx, http.MethodPatch, table, query, body, out)
}

// Delete removes the rows matched by query.
func (c *Client) Delete(ctx context.Context, table string, query url.Values) error {
	return c.do(ctx, http.MethodDelete, table, query, nil, nil)
}

// Ping probes the data endpoint root. Any HTTP response counts as online;
// only a transport failure means unreachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.restURL+"/", nil)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", c.anonKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrServerUnavailable, err)
	}
	resp.Body.Close()
	return nil
}

func (c *Client) do(ctx context.Context, method, table string, query url.Values, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(payload)
	}

	u := c.restURL + "/" + table
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return err
	}

	token, err := c.creds.BearerToken(ctx)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method == http.MethodPost || method == http.MethodPatch {
		req.Header.Set("Prefer", "return=representation")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrServerUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrServerUnavailable, err)
	}

	if resp.StatusCode == http.StatusUnauthorized && strings.Contains(string(data), tokenExpiredMarker) {
		c.creds.NotifyTokenExpired(ctx)
		return shared.ErrTokenExpired
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{Code: resp.StatusCode, Body: string(data)}
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode %s %s: %w", method, table, err)
		}
	}
	return nil
}
