package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/config"
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/events"
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/identity"
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/jobs"
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/models"
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/payment"
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/services"
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/session"
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/storage"
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/testutil"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testSecret = "server-test-secret-0123456789"

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type stubGateway struct{}

func (stubGateway) CreateOrder(_ context.Context, amount int64, currency, receipt string) (*payment.Order, error) {
	return &payment.Order{
		ID: "order_test", Entity: "order", Amount: amount, Currency: currency,
		Receipt: receipt, Status: "created", CreatedAt: time.Now().Unix(),
	}, nil
}

type testServer struct {
	app *fiber.App
	db  *gorm.DB
}

func newTestServer(t *testing.T, mutate func(*config.Config)) *testServer {
	t.Helper()
	db := testutil.NewTestDB(t)
	cfg := &config.Config{
		JWTSecret:          testSecret,
		CORSOrigins:        "*",
		UpdateDeletePolicy: config.DeletePolicyAny,
	}
	if mutate != nil {
		mutate(cfg)
	}

	reg := prometheus.NewRegistry()
	m := metrics.NewCollector(reg)
	issuer := session.NewIssuer(testSecret, time.Hour)
	idp := identity.NewLocalProvider(db).WithCost(bcrypt.MinCost)
	uploadDir := t.TempDir()
	admins := services.NewAdminResolver(db, cfg.AdminIDs())

	app := New(cfg, Deps{
		DB:        db,
		Auth:      services.NewAuthService(db, issuer, idp, m),
		Profiles:  services.NewProfileService(db, storage.NewDiskStore(uploadDir, "http://localhost:8080")),
		Directory: services.NewDirectoryService(db),
		Updates:   services.NewUpdateService(db, cfg.UpdateDeletePolicy, admins),
		Trends:    services.NewTrendService(db),
		Payments:  services.NewPaymentService(db, stubGateway{}, events.NopPublisher{}, m, "INR"),
		Admins:    admins,
		Retention: jobs.NewRetentionJob(db, nil, m),
		Metrics:   m,
		Gatherer:  reg,
		UploadDir: uploadDir,
	})
	return &testServer{app: app, db: db}
}

func (s *testServer) do(t *testing.T, method, path, token string, body io.Reader, contentType string) (int, []byte) {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func (s *testServer) json(t *testing.T, method, path, token string, payload any) (int, map[string]any) {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	status, data := s.do(t, method, path, token, body, fiber.MIMEApplicationJSON)
	var out map[string]any
	if len(data) > 0 && data[0] == '{' {
		require.NoError(t, json.Unmarshal(data, &out))
	}
	return status, out
}

func (s *testServer) signup(t *testing.T, name, email string) string {
	t.Helper()
	status, body := s.json(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"fullname": name, "email": email, "password": "secret123",
	})
	require.Equal(t, http.StatusCreated, status, body)
	return body["token"].(string)
}

func profileForm(t *testing.T, fields map[string]string, files map[string][]byte) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for name, data := range files {
		part, err := w.CreateFormFile(name, name+".png")
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func baseProfile() map[string]string {
	return map[string]string{
		"fullName":       "Asha Rao",
		"collegeName":    "IIT Delhi",
		"collegeAddress": "Hauz Khas",
		"fieldOfStudy":   "CS",
		"graduationYear": "2026",
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)
	status, body := s.json(t, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "ok", body["db"])
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.signup(t, "Asha Rao", "asha@example.com")
	assert.NotEmpty(t, token)

	status, body := s.json(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"fullname": "Asha Rao", "email": "asha@example.com", "password": "secret123",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "User already registered", body["error"])

	status, body = s.json(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "asha@example.com", "password": "secret123",
	})
	assert.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, body["token"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "asha@example.com", user["email"])

	status, body = s.json(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "asha@example.com", "password": "wrong-pass",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Invalid login credentials", body["error"])

	status, body = s.json(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"fullname": "X", "email": "not-an-email", "password": "secret123",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["error"], "email")
}

func TestProfileFlow(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.signup(t, "Asha Rao", "asha@example.com")

	status, body := s.json(t, http.MethodGet, "/api/profile/me", token, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Profile not found", body["error"])

	fields := baseProfile()
	fields["bio"] = "hello"
	form, ct := profileForm(t, fields, map[string][]byte{"profileImage": pngHeader})
	status, raw := s.do(t, http.MethodPost, "/api/profile/update", token, form, ct)
	require.Equal(t, http.StatusOK, status, string(raw))

	var updated struct {
		Message string         `json:"message"`
		Profile models.Profile `json:"profile"`
	}
	require.NoError(t, json.Unmarshal(raw, &updated))
	assert.Equal(t, "hello", updated.Profile.Bio)
	assert.Equal(t, 2026, updated.Profile.GraduationYear)
	assert.True(t, strings.HasPrefix(updated.Profile.ProfileImageURL, "http://localhost:8080/uploads/profiles/"))

	// The uploaded object is served back under /uploads.
	path := strings.TrimPrefix(updated.Profile.ProfileImageURL, "http://localhost:8080")
	status, data := s.do(t, http.MethodGet, path, "", nil, "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, pngHeader, data)

	// Omitted optional fields and attachments are kept; remove_ clears.
	form, ct = profileForm(t, map[string]string{
		"fullName": "Asha R", "collegeName": "IIT Delhi", "collegeAddress": "Hauz Khas",
		"fieldOfStudy": "CS", "graduationYear": "2027", "remove_profileImage": "true",
	}, nil)
	status, raw = s.do(t, http.MethodPost, "/api/profile/update", token, form, ct)
	require.Equal(t, http.StatusOK, status, string(raw))

	status, raw = s.do(t, http.MethodGet, "/api/profile/me", token, nil, "")
	require.Equal(t, http.StatusOK, status)
	var me models.Profile
	require.NoError(t, json.Unmarshal(raw, &me))
	assert.Equal(t, "Asha R", me.FullName)
	assert.Equal(t, "hello", me.Bio)
	assert.Empty(t, me.ProfileImageURL)

	bad := baseProfile()
	bad["graduationYear"] = "next year"
	form, ct = profileForm(t, bad, nil)
	status, _ = s.do(t, http.MethodPost, "/api/profile/update", token, form, ct)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestDirectory(t *testing.T) {
	s := newTestServer(t, nil)
	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		token := s.signup(t, "Student", email)
		form, ct := profileForm(t, baseProfile(), nil)
		status, _ := s.do(t, http.MethodPost, "/api/profile/update", token, form, ct)
		require.Equal(t, http.StatusOK, status)
	}

	status, body := s.json(t, http.MethodGet, "/api/students/profiles?page=2&limit=2", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 3, body["total"])
	assert.EqualValues(t, 2, body["totalPages"])
	assert.Len(t, body["profiles"], 1)

	status, body = s.json(t, http.MethodGet, "/api/students/profiles?collegeName=Nowhere", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 0, body["total"])
	assert.Empty(t, body["profiles"])
}

func TestFeeds(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.signup(t, "Asha Rao", "asha@example.com")

	status, body := s.json(t, http.MethodPost, "/api/updates/create", "", map[string]string{
		"title": "Hackathon", "type": "event", "details": "Saturday",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Missing authorization token", body["error"])

	status, body = s.json(t, http.MethodPost, "/api/updates/create", token, map[string]string{
		"title": "Hackathon", "type": "event", "details": "Saturday", "link": "https://example.com/hack",
	})
	require.Equal(t, http.StatusCreated, status)
	id := body["update"].(map[string]any)["id"].(string)

	status, raw := s.do(t, http.MethodGet, "/api/updates", "", nil, "")
	require.Equal(t, http.StatusOK, status)
	var updates []map[string]any
	require.NoError(t, json.Unmarshal(raw, &updates))
	assert.Len(t, updates, 1)

	status, _ = s.json(t, http.MethodDelete, "/api/updates/"+id, token, nil)
	assert.Equal(t, http.StatusOK, status)
	status, body = s.json(t, http.MethodDelete, "/api/updates/"+id, token, nil)
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = s.json(t, http.MethodDelete, "/api/updates/not-a-uuid", token, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = s.json(t, http.MethodPost, "/api/trends/create", token, map[string]string{
		"title": "Rust", "description": "Everyone is learning it", "tag": "lang",
	})
	require.Equal(t, http.StatusCreated, status)
	status, raw = s.do(t, http.MethodGet, "/api/trends?limit=5", "", nil, "")
	require.Equal(t, http.StatusOK, status)
	var trends []map[string]any
	require.NoError(t, json.Unmarshal(raw, &trends))
	assert.Len(t, trends, 1)
}

func TestPayments(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.signup(t, "Asha Rao", "asha@example.com")

	status, body := s.json(t, http.MethodGet, "/api/payment/status", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "unpaid", body["status"])

	status, body = s.json(t, http.MethodPost, "/api/payment/create-order", token, map[string]any{"amount": 499})
	require.Equal(t, http.StatusOK, status)
	order := body["order"].(map[string]any)
	assert.EqualValues(t, 49900, order["amount"])
	assert.Equal(t, "INR", order["currency"])

	status, body = s.json(t, http.MethodGet, "/api/payment/status", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "created", body["status"])

	status, _ = s.json(t, http.MethodPost, "/api/payment/create-order", token, map[string]any{"amount": 0})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = s.json(t, http.MethodPost, "/api/payment/verify", token, nil)
	assert.Equal(t, http.StatusNotImplemented, status)
	assert.NotEmpty(t, body["error"])

	status, _ = s.json(t, http.MethodGet, "/api/payment/status", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestAdminRetention(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.signup(t, "Asha Rao", "asha@example.com")

	status, _ := s.json(t, http.MethodPost, "/api/admin/retention/run", token, nil)
	assert.Equal(t, http.StatusForbidden, status)

	require.NoError(t, s.db.Model(&models.User{}).Where("email = ?", "asha@example.com").Update("role", models.RoleAdmin).Error)
	status, body := s.json(t, http.MethodPost, "/api/admin/retention/run", token, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 0, body["updates"])
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, func(cfg *config.Config) { cfg.RateLimitPerMinute = 2 })

	for i := 0; i < 2; i++ {
		status, _ := s.json(t, http.MethodGet, "/api/health", "", nil)
		require.Equal(t, http.StatusOK, status)
	}
	status, body := s.json(t, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.NotEmpty(t, body["error"])
}

func TestMetricsAndUnknownRoute(t *testing.T) {
	s := newTestServer(t, nil)

	status, body := s.json(t, http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.NotEmpty(t, body["error"])

	status, raw := s.do(t, http.MethodGet, "/metrics", "", nil, "")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(raw), "campusconnect_http_requests_total")
}
