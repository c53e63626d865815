// Package client is a Go client for the CampusConnect HTTP API. A Store keeps
// the caller's session and the last data fetched for it so UIs and scripts can
// read state without another round trip.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/tidwall/gjson"
)

var ErrNoSession = errors.New("client: no active session")

// APIError is a non-2xx answer from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("campusconnect: %s (status %d)", e.Message, e.StatusCode)
}

type Option func(*Store)

func WithHTTPClient(c *http.Client) Option {
	return func(s *Store) { s.http = c }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Store is safe for concurrent use. Failed calls never modify state, except
// that any 401 drops the session.
type Store struct {
	baseURL string
	http    *http.Client
	now     func() time.Time

	mu      sync.RWMutex
	session *Session
	profile *Profile
	updates []Update
	trends  []Trend
	payment Payment
}

func New(baseURL string, opts ...Option) *Store {
	s := &Store{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Session returns the current session, or false once its token has expired.
func (s *Store) Session() (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil || !s.now().Before(s.session.ExpiresAt) {
		return nil, false
	}
	cp := *s.session
	return &cp, true
}

// Logout forgets the session and everything fetched with it.
func (s *Store) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = nil
	s.profile = nil
	s.payment = Payment{}
}

func (s *Store) Profile() *Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profile == nil {
		return nil
	}
	cp := *s.profile
	return &cp
}

func (s *Store) Updates() []Update {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Update(nil), s.updates...)
}

func (s *Store) Trends() []Trend {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Trend(nil), s.trends...)
}

func (s *Store) Payment() Payment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.payment
}

type authResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

func (s *Store) SignUp(ctx context.Context, fullName, email, password string) (*Session, error) {
	return s.authenticate(ctx, "/api/auth/signup", map[string]string{
		"fullname": fullName, "email": email, "password": password,
	})
}

func (s *Store) Login(ctx context.Context, email, password string) (*Session, error) {
	return s.authenticate(ctx, "/api/auth/login", map[string]string{
		"email": email, "password": password,
	})
}

// GoogleSync trades the provider access token from the OAuth redirect for a
// session.
func (s *Store) GoogleSync(ctx context.Context, accessToken string) (*Session, error) {
	return s.authenticate(ctx, "/api/auth/google/sync", map[string]string{
		"access_token": accessToken,
	})
}

func (s *Store) authenticate(ctx context.Context, path string, body any) (*Session, error) {
	var resp authResponse
	if err := s.doJSON(ctx, http.MethodPost, path, body, false, &resp); err != nil {
		return nil, err
	}
	exp, err := tokenExpiry(resp.Token)
	if err != nil {
		return nil, err
	}
	sess := &Session{Token: resp.Token, ExpiresAt: exp, User: resp.User}

	s.mu.Lock()
	if s.session == nil || s.session.User.ID != sess.User.ID {
		s.profile = nil
		s.payment = Payment{}
	}
	s.session = sess
	s.mu.Unlock()

	cp := *sess
	return &cp, nil
}

// tokenExpiry reads exp without verifying the signature; only the server can.
func tokenExpiry(token string) (time.Time, error) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, fmt.Errorf("client: malformed session token: %w", err)
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, errors.New("client: session token has no expiry")
	}
	return claims.ExpiresAt.Time, nil
}

func (s *Store) FetchProfile(ctx context.Context) (*Profile, error) {
	var p Profile
	if err := s.doJSON(ctx, http.MethodGet, "/api/profile/me", nil, true, &p); err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.profile = &p
	s.mu.Unlock()
	return &p, nil
}

func (s *Store) UpdateProfile(ctx context.Context, in ProfileUpdate) (*Profile, error) {
	body, contentType, err := encodeProfile(in)
	if err != nil {
		return nil, err
	}
	var resp struct {
		Profile Profile `json:"profile"`
	}
	if err := s.do(ctx, http.MethodPost, "/api/profile/update", body, contentType, true, &resp); err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.profile = &resp.Profile
	s.mu.Unlock()
	return &resp.Profile, nil
}

// ListProfiles queries the public student directory. Results are not cached.
func (s *Store) ListProfiles(ctx context.Context, q DirectoryQuery) (*DirectoryPage, error) {
	var page DirectoryPage
	if err := s.doJSON(ctx, http.MethodGet, "/api/students/profiles"+q.encode(), nil, false, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *Store) FetchUpdates(ctx context.Context) ([]Update, error) {
	var updates []Update
	if err := s.doJSON(ctx, http.MethodGet, "/api/updates", nil, false, &updates); err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.updates = updates
	s.mu.Unlock()
	return append([]Update(nil), updates...), nil
}

// CreateUpdate posts an update and prepends it to the cached feed.
func (s *Store) CreateUpdate(ctx context.Context, in NewUpdate) (*Update, error) {
	var resp struct {
		Update Update `json:"update"`
	}
	if err := s.doJSON(ctx, http.MethodPost, "/api/updates/create", in, true, &resp); err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.updates = append([]Update{resp.Update}, s.updates...)
	s.mu.Unlock()
	return &resp.Update, nil
}

func (s *Store) DeleteUpdate(ctx context.Context, id string) error {
	if err := s.doJSON(ctx, http.MethodDelete, "/api/updates/"+id, nil, true, nil); err != nil {
		return err
	}
	s.mu.Lock()
	kept := make([]Update, 0, len(s.updates))
	for _, u := range s.updates {
		if u.ID != id {
			kept = append(kept, u)
		}
	}
	s.updates = kept
	s.mu.Unlock()
	return nil
}

func (s *Store) FetchTrends(ctx context.Context) ([]Trend, error) {
	var trends []Trend
	if err := s.doJSON(ctx, http.MethodGet, "/api/trends", nil, false, &trends); err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.trends = trends
	s.mu.Unlock()
	return append([]Trend(nil), trends...), nil
}

func (s *Store) CreateTrend(ctx context.Context, in NewTrend) (*Trend, error) {
	var resp struct {
		Trend Trend `json:"trend"`
	}
	if err := s.doJSON(ctx, http.MethodPost, "/api/trends/create", in, true, &resp); err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.trends = append([]Trend{resp.Trend}, s.trends...)
	s.mu.Unlock()
	return &resp.Trend, nil
}

// CreateOrder opens a payment order for amount in major currency units.
func (s *Store) CreateOrder(ctx context.Context, amount float64) (*Order, error) {
	var resp struct {
		Order Order `json:"order"`
	}
	if err := s.doJSON(ctx, http.MethodPost, "/api/payment/create-order", map[string]float64{"amount": amount}, true, &resp); err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.payment = Payment{Status: resp.Order.Status, Order: &resp.Order}
	s.mu.Unlock()
	return &resp.Order, nil
}

func (s *Store) FetchPaymentStatus(ctx context.Context) (string, error) {
	var resp struct {
		Status string `json:"status"`
	}
	if err := s.doJSON(ctx, http.MethodGet, "/api/payment/status", nil, true, &resp); err != nil {
		return "", err
	}
	s.mu.Lock()
	s.payment.Status = resp.Status
	s.mu.Unlock()
	return resp.Status, nil
}

func (s *Store) doJSON(ctx context.Context, method, path string, in any, auth bool, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("client: encode request: %w", err)
		}
		body = bytes.NewReader(raw)
		contentType = "application/json"
	}
	return s.do(ctx, method, path, body, contentType, auth, out)
}

func (s *Store) do(ctx context.Context, method, path string, body io.Reader, contentType string, auth bool, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("client: build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	var token string
	if auth {
		sess, ok := s.Session()
		if !ok {
			return ErrNoSession
		}
		token = sess.Token
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("client: read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		if resp.StatusCode == http.StatusUnauthorized && token != "" {
			s.invalidate(token)
		}
		msg := gjson.GetBytes(raw, "error").String()
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("client: decode response: %w", err)
	}
	return nil
}

// invalidate drops the session only if it is still the one that was rejected.
func (s *Store) invalidate(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session != nil && s.session.Token == token {
		s.session = nil
	}
}
