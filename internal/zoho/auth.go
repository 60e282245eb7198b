package zoho

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"clinic-engage/internal/cache"
	"clinic-engage/internal/config"
)

// tokenManager caches the Zoho access token obtained from the refresh
// token grant. Zoho tokens last an hour; we renew a minute early.
type tokenManager struct {
	cfg        *config.Config
	httpClient *http.Client

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

func newTokenManager(cfg *config.Config, httpClient *http.Client) *tokenManager {
	return &tokenManager{cfg: cfg, httpClient: httpClient}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	Error       string `json:"error"`
}

// AccessToken returns a cached token, falling back to the Redis mirror
// before spending a refresh grant.
func (t *tokenManager) AccessToken() (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.token != "" && time.Now().Before(t.expiresAt) {
		return t.token, nil
	}
	if token, ttl, ok := cache.GetZohoToken(context.Background()); ok {
		t.token = token
		t.expiresAt = time.Now().Add(ttl)
		return token, nil
	}
	return t.refreshLocked()
}

// Invalidate drops the cached token, mirror included, so the next call
// refreshes.
func (t *tokenManager) Invalidate() {
	t.mu.Lock()
	t.token = ""
	t.expiresAt = time.Time{}
	t.mu.Unlock()
	cache.DeleteZohoToken(context.Background())
}

func (t *tokenManager) refreshLocked() (string, error) {
	form := url.Values{}
	form.Set("refresh_token", t.cfg.ZohoRefreshToken)
	form.Set("client_id", t.cfg.ZohoClientID)
	form.Set("client_secret", t.cfg.ZohoClientSecret)
	form.Set("grant_type", "refresh_token")

	resp, err := t.httpClient.Post(t.cfg.ZohoTokenURL, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to reach zoho token endpoint: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("zoho token endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return "", fmt.Errorf("failed to parse zoho token response: %w", err)
	}
	if tr.Error != "" || tr.AccessToken == "" {
		return "", fmt.Errorf("zoho token refresh rejected: %s", string(body))
	}

	t.token = tr.AccessToken
	expires := tr.ExpiresIn
	if expires <= 0 {
		expires = 3600
	}
	ttl := time.Duration(expires)*time.Second - time.Minute
	t.expiresAt = time.Now().Add(ttl)
	cache.SetZohoToken(context.Background(), t.token, ttl)
	return t.token, nil
}
