// Package supabase is a small REST client for the parts of Supabase the
// service uses: GoTrue auth and Storage uploads.
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
	"time"

	"github.com/tidwall/gjson"
)

type Config struct {
	ProjectURL     string
	AnonKey        string
	ServiceRoleKey string
	Timeout        time.Duration
}

type Client struct {
	cfg        Config
	authURL    string
	storageURL string
	http       *http.Client
}

func New(cfg Config) (*Client, error) {
	if cfg.ProjectURL == "" {
		return nil, fmt.Errorf("project URL is required")
	}
	if cfg.AnonKey == "" {
		return nil, fmt.Errorf("anon key is required")
	}
	base := strings.TrimRight(cfg.ProjectURL, "/")
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("invalid project URL: %w", err)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	cfg.ProjectURL = base

	return &Client{
		cfg:        cfg,
		authURL:    base + "/auth/v1",
		storageURL: base + "/storage/v1",
		http:       &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// User is the subset of a GoTrue user the service reads.
type User struct {
	ID       string
	Email    string
	FullName string
	Provider string
}

// Error is a non-2xx answer from Supabase.
type Error struct {
	Code       string
	Message    string
	StatusCode int
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("supabase error %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("supabase error %d: %s", e.StatusCode, e.Message)
}

// ClientError reports whether Supabase rejected the request itself.
func (e *Error) ClientError() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}

// SignUp creates an email/password account. fullName is stored in user
// metadata so later sign-ins can recover it.
func (c *Client) SignUp(ctx context.Context, email, password, fullName string) (*User, error) {
	body, err := json.Marshal(map[string]any{
		"email":    email,
		"password": password,
		"data":     map[string]string{"full_name": fullName},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	respBody, err := c.do(ctx, http.MethodPost, c.authURL+"/signup", body, c.cfg.AnonKey, "", nil)
	if err != nil {
		return nil, err
	}

	// With email confirmation on, GoTrue answers with the bare user object;
	// otherwise it returns a session wrapping it.
	user := gjson.GetBytes(respBody, "user")
	if !user.Exists() {
		user = gjson.ParseBytes(respBody)
	}
	return parseUser(user)
}

// SignInWithPassword checks the credentials and returns the account.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*User, error) {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	respBody, err := c.do(ctx, http.MethodPost, c.authURL+"/token?grant_type=password", body, c.cfg.AnonKey, "", nil)
	if err != nil {
		return nil, err
	}
	return parseUser(gjson.GetBytes(respBody, "user"))
}

// GetUser resolves a provider access token (for example one obtained through
// the Google OAuth redirect) to its account.
func (c *Client) GetUser(ctx context.Context, accessToken string) (*User, error) {
	if c.cfg.ServiceRoleKey == "" {
		return nil, fmt.Errorf("service role key not configured")
	}
	respBody, err := c.do(ctx, http.MethodGet, c.authURL+"/user", nil, c.cfg.ServiceRoleKey, accessToken, nil)
	if err != nil {
		return nil, err
	}
	return parseUser(gjson.ParseBytes(respBody))
}

// Upload stores data at bucket/path, overwriting any previous object.
func (c *Client) Upload(ctx context.Context, bucket, path, contentType string, data []byte) error {
	if c.cfg.ServiceRoleKey == "" {
		return fmt.Errorf("service role key not configured")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	headers := map[string]string{
		"Content-Type": contentType,
		"x-upsert":     "true",
	}
	_, err := c.do(ctx, http.MethodPost, c.storageURL+"/object/"+bucket+"/"+strings.TrimLeft(path, "/"), data, c.cfg.ServiceRoleKey, "", headers)
	return err
}

// PublicURL returns the public URL for an object in a public bucket.
func (c *Client) PublicURL(bucket, path string) string {
	return c.storageURL + "/object/public/" + bucket + "/" + strings.TrimLeft(path, "/")
}

func (c *Client) do(ctx context.Context, method, target string, body []byte, apiKey, bearer string, headers map[string]string) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	if bearer == "" {
		bearer = apiKey
	}
	req.Header.Set("apikey", apiKey)
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, parseError(respBody, resp.StatusCode)
	}
	return respBody, nil
}

func parseUser(res gjson.Result) (*User, error) {
	id := res.Get("id").String()
	if id == "" {
		return nil, fmt.Errorf("unmarshal response: user id missing")
	}
	u := &User{
		ID:       id,
		Email:    res.Get("email").String(),
		FullName: firstNonEmpty(res, "user_metadata.full_name", "user_metadata.name", "user_metadata.fullname"),
		Provider: res.Get("app_metadata.provider").String(),
	}
	return u, nil
}

func parseError(body []byte, statusCode int) error {
	if !gjson.ValidBytes(body) {
		return &Error{Code: "unknown", Message: strings.TrimSpace(string(body)), StatusCode: statusCode}
	}
	res := gjson.ParseBytes(body)
	msg := firstNonEmpty(res, "msg", "message", "error_description", "error")
	if msg == "" {
		msg = http.StatusText(statusCode)
	}
	code := res.Get("error_code").String()
	if code == "" {
		code = res.Get("code").String()
	}
	return &Error{Code: code, Message: msg, StatusCode: statusCode}
}

func firstNonEmpty(res gjson.Result, paths ...string) string {
	for _, p := range paths {
		if v := res.Get(p); v.Type == gjson.String && v.Str != "" {
			return v.Str
		}
	}
	return ""
}
