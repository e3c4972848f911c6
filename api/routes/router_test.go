package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"

	"github.com/noorvia/noorvia-backend/internal/auth"
	cartsvc "github.com/noorvia/noorvia-backend/internal/cart"
	"github.com/noorvia/noorvia-backend/internal/orders"
	pkgAuth "github.com/noorvia/noorvia-backend/pkg/auth"
	"github.com/noorvia/noorvia-backend/pkg/config"
	"github.com/noorvia/noorvia-backend/pkg/enums"
	"github.com/noorvia/noorvia-backend/pkg/logger"
	"github.com/noorvia/noorvia-backend/pkg/metrics"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type stubSessions struct{}

func (stubSessions) HasSession(context.Context, string) (bool, error) { return true, nil }

type fakeRedis struct {
	mu     sync.Mutex
	counts map[string]int64
	values map[string]string
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{counts: map[string]int64{}, values: map[string]string{}}
}

func (f *fakeRedis) FixedWindowAllow(_ context.Context, scope string, limit int64, _ time.Duration) (bool, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts[scope]++
	return f.counts[scope] <= limit, f.counts[scope], nil
}

func (f *fakeRedis) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v, ok := f.values[key]; ok {
		return v, nil
	}
	return "", goredis.Nil
}

func (f *fakeRedis) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.values[key]; ok {
		return false, nil
	}
	f.values[key] = value.(string)
	return true, nil
}

func (f *fakeRedis) IdempotencyKey(scope, id string) string { return "idem:" + scope + ":" + id }

func (f *fakeRedis) Ping(context.Context) error { return nil }

// Embedded interfaces leave methods the tests never reach unimplemented.
type stubAuthService struct{ auth.Service }

func (stubAuthService) Login(context.Context, auth.LoginRequest) (*auth.AuthResponse, error) {
	return &auth.AuthResponse{AccessToken: "a", RefreshToken: "r"}, nil
}

type stubCartService struct{ cartsvc.Service }

func (stubCartService) GetCart(_ context.Context, userID uuid.UUID) (*cartsvc.CartDTO, error) {
	return &cartsvc.CartDTO{UserID: userID, Items: []cartsvc.CartItemDTO{}}, nil
}

type stubOrdersService struct{ orders.Service }

func (stubOrdersService) UpdateStatus(_ context.Context, id uuid.UUID, input orders.UpdateStatusInput, _ orders.Requester) (*orders.OrderDTO, error) {
	return &orders.OrderDTO{ID: id, Status: enums.OrderStatus(input.Status)}, nil
}

func (stubOrdersService) PlaceOrder(_ context.Context, userID uuid.UUID, _ orders.PlaceOrderInput) (*orders.OrderDTO, error) {
	return &orders.OrderDTO{ID: uuid.New(), UserID: userID, Status: enums.OrderStatusProcessing}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:                 "secret",
			Issuer:                 "issuer",
			ExpirationMinutes:      60,
			RefreshTokenTTLMinutes: 120,
		},
		AuthRateLimit: config.AuthRateLimitConfig{
			LoginWindow:  time.Minute,
			LoginIPLimit: 2,
		},
	}
}

func newTestRouter(cfg *config.Config, redisStore RedisStore, reg *prometheus.Registry) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Format: "json", Output: io.Discard})
	return NewRouter(Dependencies{
		Config:   cfg,
		Logger:   logg,
		DB:       stubPinger{},
		Redis:    redisStore,
		Sessions: stubSessions{},
		Gatherer: reg,
		HTTP:     metrics.NewHTTPMetrics(reg),
		Auth:     stubAuthService{},
		Cart:     stubCartService{},
		Orders:   stubOrdersService{},
	})
}

func TestPublicHealth(t *testing.T) {
	router := newTestRouter(testConfig(), newFakeRedis(), prometheus.NewRegistry())
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), "NoorVia API is running") {
		t.Fatalf("unexpected health response %d %s", resp.Code, resp.Body.String())
	}
}

func TestUserRoutesRejectMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig(), newFakeRedis(), prometheus.NewRegistry())
	for _, path := range []string{"/api/cart", "/api/orders/myorders", "/api/wishlist", "/api/auth/me"} {
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, path, nil))
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401 got %d", path, resp.Code)
		}
	}
}

func TestCartSucceedsWithJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg, newFakeRedis(), prometheus.NewRegistry())
	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleCustomer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestOrderStatusRequiresAdminRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg, newFakeRedis(), prometheus.NewRegistry())
	path := "/api/orders/" + uuid.NewString() + "/status"

	customer := httptest.NewRequest(http.MethodPut, path, strings.NewReader(`{"status":"Shipped"}`))
	customer.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleCustomer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, customer)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for customer got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodPut, path, strings.NewReader(`{"status":"Shipped"}`))
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestPlaceOrderReplaysIdempotentRequest(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg, newFakeRedis(), prometheus.NewRegistry())
	token := buildToken(t, cfg, enums.UserRoleCustomer)

	var bodies []string
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(`{"items":[]}`))
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Idempotency-Key", "order-1")
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusCreated {
			t.Fatalf("attempt %d: expected 201 got %d", i, resp.Code)
		}
		if i == 1 && resp.Header().Get("Idempotent-Replayed") != "true" {
			t.Fatalf("expected replay header on second attempt")
		}
		bodies = append(bodies, resp.Body.String())
	}
	if bodies[0] != bodies[1] {
		t.Fatalf("expected identical replayed body")
	}
}

func TestLoginIsRateLimited(t *testing.T) {
	router := newTestRouter(testConfig(), newFakeRedis(), prometheus.NewRegistry())
	var last int
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"a@b.com","password":"pw"}`))
		req.RemoteAddr = "10.0.0.1:5555"
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		last = resp.Code
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("expected 429 on third login got %d", last)
	}
}

func TestMetricsEndpointExposesRequests(t *testing.T) {
	reg := prometheus.NewRegistry()
	router := newTestRouter(testConfig(), newFakeRedis(), reg)
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/health", nil))

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "/api/health") {
		t.Fatalf("expected health route in metrics output")
	}
}

func buildToken(t *testing.T, cfg *config.Config, role enums.UserRole) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   role,
		JTI:    uuid.NewString(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}
