package bakalari

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
)

// Config holds Bakaláři API configuration
type Config struct {
	BaseURL  string
	Username string
	Password string
	Timeout  time.Duration
}

// Client is a thin wrapper over the Bakaláři v3 REST API. It only fetches
// roster data; reconciliation happens in the sync domain. Safe for
// concurrent use; token refresh is serialized.
type Client struct {
	httpClient *http.Client
	config     Config

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// ClassRecord is a class as supplied by the school system.
type ClassRecord struct {
	ID        string `json:"Id"`
	Name      string `json:"Abbrev"`
	Grade     int    `json:"Grade"`
	TeacherID string `json:"TeacherId"`
}

// SubjectRecord is a subject as supplied by the school system.
type SubjectRecord struct {
	ID           string `json:"Id"`
	Name         string `json:"Name"`
	Abbreviation string `json:"Abbrev"`
}

// StudentRecord is a pupil as supplied by the school system.
type StudentRecord struct {
	ID      string `json:"Id"`
	Name    string `json:"FullName"`
	Email   string `json:"Email"`
	ClassID string `json:"ClassId"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// NewClient creates new Bakaláři API client
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		config:     cfg,
	}
}

// Authenticate obtains (or refreshes) an access token using the password
// grant the Bakaláři API exposes.
func (c *Client) Authenticate(ctx context.Context) error {
	_, err := c.bearer(ctx)
	return err
}

// bearer returns a valid access token, refreshing within a minute of
// expiry. The lock covers the whole check-and-refresh so concurrent
// callers share a single refresh.
func (c *Client) bearer(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpiry.Add(-time.Minute)) {
		return c.token, nil
	}

	if strings.TrimSpace(c.config.BaseURL) == "" {
		return "", fmt.Errorf("bakalari config error: base_url is empty")
	}

	form := url.Values{}
	form.Set("client_id", "ANDR")
	form.Set("grant_type", "password")
	form.Set("username", c.config.Username)
	form.Set("password", c.config.Password)

	base := strings.TrimRight(c.config.BaseURL, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/api/login", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("bakalari api call failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("bakalari api call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("bakalari login failed: status %d: %s", resp.StatusCode, string(body))
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("bakalari login response: %w", err)
	}

	c.token = tok.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	return c.token, nil
}

// FetchClasses returns the class roster.
func (c *Client) FetchClasses(ctx context.Context) ([]ClassRecord, error) {
	var out struct {
		Classes []ClassRecord `json:"Classes"`
	}
	if err := c.get(ctx, "/api/3/classes", &out); err != nil {
		return nil, err
	}
	return out.Classes, nil
}

// FetchSubjects returns the subject list.
func (c *Client) FetchSubjects(ctx context.Context) ([]SubjectRecord, error) {
	var out struct {
		Subjects []SubjectRecord `json:"Subjects"`
	}
	if err := c.get(ctx, "/api/3/subjects", &out); err != nil {
		return nil, err
	}
	return out.Subjects, nil
}

// FetchStudents returns the pupil roster.
func (c *Client) FetchStudents(ctx context.Context) ([]StudentRecord, error) {
	var out struct {
		Students []StudentRecord `json:"Students"`
	}
	if err := c.get(ctx, "/api/3/students", &out); err != nil {
		return nil, err
	}
	return out.Students, nil
}

func (c *Client) get(ctx context.Context, path string, v interface{}) error {
	token, err := c.bearer(ctx)
	if err != nil {
		return err
	}

	base := strings.TrimRight(c.config.BaseURL, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+path, nil)
	if err != nil {
		return fmt.Errorf("bakalari api call failed: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("bakalari api call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("bakalari %s: status %d: %s", path, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("bakalari %s: decode: %w", path, err)
	}
	return nil
}
