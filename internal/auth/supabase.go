package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/fieldside/strikerlog/internal/database"
)

// Supabase restores a session from a long-lived refresh token and installs
// the resulting access token on the database client, so subsequent store
// requests run under the user's row-level security scope.
type Supabase struct {
	client       *database.Client
	anonKey      string
	refreshToken string
	httpClient   *http.Client

	accessToken string
	userID      string
}

var _ Provider = (*Supabase)(nil)

// SupabaseConfig configures the provider.
type SupabaseConfig struct {
	AnonKey      string
	RefreshToken string
	Timeout      time.Duration
}

// NewSupabase creates a provider bound to the given database client.
func NewSupabase(client *database.Client, cfg SupabaseConfig) (*Supabase, error) {
	if client == nil {
		return nil, fmt.Errorf("database client is required")
	}
	if cfg.AnonKey == "" {
		return nil, fmt.Errorf("anon key is required")
	}
	if cfg.RefreshToken == "" {
		return nil, fmt.Errorf("refresh token is required")
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Supabase{
		client:       client,
		anonKey:      cfg.AnonKey,
		refreshToken: cfg.RefreshToken,
		httpClient:   &http.Client{Timeout: timeout},
	}, nil
}

type session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         *struct {
		ID string `json:"id"`
	} `json:"user"`
}

// SignInSilently exchanges the refresh token for a session.
func (s *Supabase) SignInSilently(ctx context.Context) (string, error) {
	body, err := json.Marshal(map[string]string{"refresh_token": s.refreshToken})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := s.client.BaseURL() + "/auth/v1/token?grant_type=refresh_token"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", s.anonKey)
	req.Header.Set("Authorization", "Bearer "+s.anonKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("sign-in failed (%d): %s", resp.StatusCode, respBody)
	}

	var sess session
	if err := json.Unmarshal(respBody, &sess); err != nil {
		return "", fmt.Errorf("unmarshal session: %w", err)
	}
	if sess.AccessToken == "" {
		return "", fmt.Errorf("sign-in returned no access token")
	}

	userID := ""
	if sess.User != nil {
		userID = sess.User.ID
	}
	if userID == "" {
		userID, err = subjectOf(sess.AccessToken)
		if err != nil {
			return "", err
		}
	}

	if sess.RefreshToken != "" {
		s.refreshToken = sess.RefreshToken
	}
	s.accessToken = sess.AccessToken
	s.userID = userID
	s.client.SetAccessToken(sess.AccessToken)

	return userID, nil
}

// SignOut revokes the session and drops the installed token. A failed revoke
// still clears local state; the caller is signing out either way.
func (s *Supabase) SignOut(ctx context.Context) error {
	token := s.accessToken
	s.accessToken = ""
	s.userID = ""
	s.client.ClearAccessToken()

	if token == "" {
		return nil
	}

	url := s.client.BaseURL() + "/auth/v1/logout"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("apikey", s.anonKey)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	resp.Body.Close()
	return nil
}

// subjectOf extracts the sub claim from an access token. The token was just
// issued by the backend over TLS; signature verification happens server-side.
func subjectOf(accessToken string) (string, error) {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(accessToken, claims); err != nil {
		return "", fmt.Errorf("parse access token: %w", err)
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", fmt.Errorf("access token has no subject")
	}
	return sub, nil
}
