package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Session is an authenticated GoTrue session.
type Session struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
}

// AuthError carries the identity provider's message so it can be surfaced
// verbatim on the login form.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}

// SignIn exchanges email/password credentials for a session and installs the
// access token on the client. Subsequent gateway calls run as the user.
func (c *Client) SignIn(ctx context.Context, email, password string) (Session, error) {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return Session{}, fmt.Errorf("SignIn: encoding credentials: %w", err)
	}

	u := c.baseURL + "/auth/v1/token?grant_type=password"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return Session{}, fmt.Errorf("SignIn: building request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Session{}, fmt.Errorf("SignIn: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Session{}, fmt.Errorf("SignIn: reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return Session{}, &AuthError{Message: errorMessage(raw)}
	}

	var session Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return Session{}, fmt.Errorf("SignIn: decoding session: %w", err)
	}

	c.mu.Lock()
	c.token = session.AccessToken
	c.mu.Unlock()

	return session, nil
}

// SignOut revokes the session with GoTrue and drops the token. Gateway calls
// fall back to the anon key afterwards.
func (c *Client) SignOut(ctx context.Context) error {
	c.mu.Lock()
	token := c.token
	c.token = ""
	c.mu.Unlock()

	if token == "" {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/v1/logout", nil)
	if err != nil {
		return fmt.Errorf("SignOut: building request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("SignOut: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		return fmt.Errorf("SignOut: status %d", resp.StatusCode)
	}
	return nil
}

// Token returns the current session access token, or "" when signed out.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}
