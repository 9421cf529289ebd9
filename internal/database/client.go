// Package database provides the Supabase REST integration. The backend is a
// managed document store; rows are addressed by collection (table) and id and
// scoped to the signed-in user.
package database

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"
)

// Client wraps the Supabase REST API.
type Client struct {
	url        string
	anonKey    string
	httpClient *http.Client

	mu          sync.RWMutex
	accessToken string
}

// Config holds client configuration. Empty fields fall back to the
// SUPABASE_URL / SUPABASE_ANON_KEY environment variables.
type Config struct {
	URL     string
	AnonKey string
	Timeout time.Duration
}

// NewClient creates a new Supabase client.
func NewClient(cfg Config) (*Client, error) {
	url := cfg.URL
	if url == "" {
		url = os.Getenv("SUPABASE_URL")
	}
	if url == "" {
		return nil, fmt.Errorf("SUPABASE_URL is required")
	}

	key := cfg.AnonKey
	if key == "" {
		key = os.Getenv("SUPABASE_ANON_KEY")
	}
	if key == "" {
		return nil, fmt.Errorf("SUPABASE_ANON_KEY is required")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	transport := http.DefaultTransport
	if base, ok := http.DefaultTransport.(*http.Transport); ok {
		cloned := base.Clone()
		if cloned.TLSClientConfig != nil {
			cloned.TLSClientConfig = cloned.TLSClientConfig.Clone()
			if cloned.TLSClientConfig.MinVersion < tls.VersionTLS12 {
				cloned.TLSClientConfig.MinVersion = tls.VersionTLS12
			}
		} else {
			cloned.TLSClientConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		transport = cloned
	}

	return &Client{
		url:     strings.TrimRight(url, "/"),
		anonKey: key,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}, nil
}

// BaseURL returns the project URL.
func (c *Client) BaseURL() string {
	return c.url
}

// SetAccessToken installs the signed-in user's access token. Subsequent
// requests run under that user's row-level security scope.
func (c *Client) SetAccessToken(token string) {
	c.mu.Lock()
	c.accessToken = token
	c.mu.Unlock()
}

// ClearAccessToken drops the user token; requests fall back to the anon key.
func (c *Client) ClearAccessToken() {
	c.SetAccessToken("")
}

const (
	maxResponseBytes  = 8 << 20  // 8 MiB
	maxErrorBodyBytes = 32 << 10 // 32 KiB
)

// Error is a failed Supabase API call.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("supabase API error %d: %s", e.StatusCode, e.Message)
}

// Request makes an HTTP request to the REST API. body is JSON-encoded when
// non-nil; query is a raw PostgREST query string ("id=eq.7&limit=1").
func (c *Client) Request(ctx context.Context, method, table string, body interface{}, query string) ([]byte, error) {
	url := fmt.Sprintf("%s/rest/v1/%s", c.url, table)
	if query != "" {
		url += "?" + query
	}

	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	c.mu.RLock()
	token := c.accessToken
	c.mu.RUnlock()
	if token == "" {
		token = c.anonKey
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Prefer", "return=representation")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return nil, &Error{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(respBody)),
		}
	}

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return respBody, nil
}
