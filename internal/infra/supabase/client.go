// Package supabase is the hosted persistence gateway. It talks to a Supabase
// project over PostgREST for the record collections and over GoTrue for
// password authentication. All snake_case wire translation happens in this
// package; nothing outside it sees the wire shape.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const preferReturn = "return=representation"

// Client is a Supabase REST client scoped to one project. Safe for concurrent
// use; the session token is swapped under a lock on sign-in/sign-out.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	log     zerolog.Logger

	mu    sync.RWMutex
	token string
}

// NewClient creates a gateway client for the project at baseURL using the
// anon API key. Requests use the anon key until SignIn installs a session
// token.
func NewClient(baseURL, apiKey string, log zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 15 * time.Second},
		log:     log,
	}
}

// apiError is a non-2xx response from PostgREST or GoTrue.
type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("supabase: status %d: %s", e.Status, e.Message)
}

// rest performs a PostgREST call against /rest/v1/{resource} and decodes the
// JSON response into out (which may be nil).
func (c *Client) rest(ctx context.Context, method, resource string, query url.Values, prefer string, body, out interface{}) error {
	u := c.baseURL + "/rest/v1/" + resource
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var payload io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("rest %s %s: encoding body: %w", method, resource, err)
		}
		payload = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, payload)
	if err != nil {
		return fmt.Errorf("rest %s %s: building request: %w", method, resource, err)
	}
	c.setHeaders(req)
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("rest %s %s: %w", method, resource, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("rest %s %s: reading response: %w", method, resource, err)
	}

	if resp.StatusCode >= 400 {
		return &apiError{Status: resp.StatusCode, Message: errorMessage(raw)}
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("rest %s %s: decoding response: %w", method, resource, err)
		}
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()
	if token == "" {
		token = c.apiKey
	}

	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
}

// errorMessage pulls a human-readable message out of a PostgREST or GoTrue
// error body, falling back to the raw body.
func errorMessage(raw []byte) string {
	var body struct {
		Message          string `json:"message"`
		Msg              string `json:"msg"`
		ErrorDescription string `json:"error_description"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		switch {
		case body.Message != "":
			return body.Message
		case body.ErrorDescription != "":
			return body.ErrorDescription
		case body.Msg != "":
			return body.Msg
		}
	}
	return strings.TrimSpace(string(raw))
}

// idFilter builds the PostgREST primary-key filter for one record.
func idFilter(id string) url.Values {
	q := url.Values{}
	q.Set("id", "eq."+id)
	return q
}
