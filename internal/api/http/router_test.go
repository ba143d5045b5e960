package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/nuvix-market/nuvix-suite/internal/api/http/handlers"
	"github.com/nuvix-market/nuvix-suite/internal/auth"
	"github.com/nuvix-market/nuvix-suite/internal/config"
	"github.com/nuvix-market/nuvix-suite/internal/domain"
	"github.com/nuvix-market/nuvix-suite/internal/observability"
	"github.com/nuvix-market/nuvix-suite/internal/repository"
	"github.com/nuvix-market/nuvix-suite/internal/service"
)

const apiKey = "let-me-in"

type testServer struct {
	app     *fiber.App
	tokens  *auth.TokenManager
	tickets *service.TicketService
	stats   *service.StatsService
	metrics *observability.Metrics
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store, err := repository.NewFileStore(t.TempDir(), nil)
	require.NoError(t, err)

	hash, err := auth.HashPassword(apiKey, bcrypt.MinCost)
	require.NoError(t, err)
	authService := service.NewAuthService(config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 5,
		APIKeyHash:            hash,
		APIKeyTier:            "high_staff",
	}, "Nuvix Tickets")

	stats := service.NewStatsService(store.Stats(), nil)
	tickets := service.NewTicketService(service.TicketDependencies{
		Tickets:   store.Tickets(),
		Blacklist: store.Blacklist(),
		Stats:     stats,
	})
	reviews := service.NewReviewService(service.ReviewDependencies{Reviews: store.Reviews()})
	blacklist := service.NewBlacklistService(service.BlacklistDependencies{Blacklist: store.Blacklist()})
	metrics := observability.NewMetrics()

	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), metrics, time.Second)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("Nuvix Tickets", "test", time.Now(), map[string]handlers.Pinger{"store": store}),
		Auth:           handlers.NewAuthHandler(authService),
		Staff:          handlers.NewStaffHandler(stats),
		Tickets:        handlers.NewTicketsHandler(tickets, reviews, blacklist),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager()),
		Metrics:        metrics,
	})
	return &testServer{app: app, tokens: authService.TokenManager(), tickets: tickets, stats: stats, metrics: metrics}
}

func (s *testServer) do(t *testing.T, method, path, token, body string) (int, map[string]any, string) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var decoded map[string]any
	_ = json.Unmarshal(raw, &decoded)
	return resp.StatusCode, decoded, string(raw)
}

func (s *testServer) token(t *testing.T, tier domain.Tier) string {
	t.Helper()
	token, _, err := s.tokens.GenerateToken("tester", tier)
	require.NoError(t, err)
	return token
}

func errorCode(body map[string]any) string {
	errBody, _ := body["error"].(map[string]any)
	code, _ := errBody["code"].(string)
	return code
}

func TestHealthRoutes(t *testing.T) {
	srv := newTestServer(t)

	status, _, raw := srv.do(t, "GET", "/health", "", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.True(t, strings.HasPrefix(raw, "Nuvix Tickets connected | alive "), raw)

	status, _, raw = srv.do(t, "GET", "/", "", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, raw, "connected")

	status, body, _ := srv.do(t, "GET", "/health/ready", "", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "ready", body["status"])

	status, body, _ = srv.do(t, "GET", "/health/live", "", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "alive", body["status"])

	status, _, raw = srv.do(t, "GET", "/metrics", "", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, raw, "nuvix_http_requests_total")
}

func TestUnknownRoute(t *testing.T) {
	srv := newTestServer(t)
	status, body, _ := srv.do(t, "GET", "/nope", "", "")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errorCode(body))
}

func TestTokenExchange(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{name: "wrong key", body: `{"key":"guess"}`, status: fiber.StatusUnauthorized, code: "UNAUTHORIZED"},
		{name: "missing key", body: `{}`, status: fiber.StatusBadRequest, code: "VALIDATION_FAILED"},
		{name: "malformed body", body: `{`, status: fiber.StatusBadRequest, code: "VALIDATION_FAILED"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			status, body, _ := srv.do(t, "POST", "/api/auth/token", "", tc.body)
			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.code, errorCode(body))
		})
	}

	t.Run("valid key", func(t *testing.T) {
		status, body, _ := srv.do(t, "POST", "/api/auth/token", "", `{"key":"`+apiKey+`","subject":"dashboard"}`)
		require.Equal(t, fiber.StatusOK, status)
		data := body["data"].(map[string]any)
		token := data["token"].(string)

		claims, err := srv.tokens.ParseToken(token)
		require.NoError(t, err)
		assert.Equal(t, "dashboard", claims.Subject)

		status, _, _ = srv.do(t, "GET", "/api/reviews", token, "")
		assert.Equal(t, fiber.StatusOK, status)
	})
}

func TestProtectedRoutes(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()
	_, err := srv.tickets.Open(ctx, service.OpenTicketInput{ChannelID: 100, OpenerID: 42, Category: domain.CategorySupport})
	require.NoError(t, err)
	_, err = srv.tickets.Assign(ctx, 100, 7)
	require.NoError(t, err)

	trial := srv.token(t, domain.TierTrialSupport)
	high := srv.token(t, domain.TierHighStaff)

	t.Run("missing token", func(t *testing.T) {
		status, body, _ := srv.do(t, "GET", "/api/tickets", "", "")
		assert.Equal(t, fiber.StatusUnauthorized, status)
		assert.Equal(t, "UNAUTHORIZED", errorCode(body))
	})

	t.Run("tickets for trial support", func(t *testing.T) {
		status, body, _ := srv.do(t, "GET", "/api/tickets", trial, "")
		require.Equal(t, fiber.StatusOK, status)
		assert.Equal(t, float64(1), body["count"])
		ticket := body["data"].([]any)[0].(map[string]any)
		assert.Equal(t, "100", ticket["channel_id"])
		assert.Equal(t, "7", ticket["assigned_to"])
	})

	t.Run("leaderboard needs high staff", func(t *testing.T) {
		status, body, _ := srv.do(t, "GET", "/api/leaderboard", trial, "")
		assert.Equal(t, fiber.StatusForbidden, status)
		assert.Equal(t, "PERMISSION_DENIED", errorCode(body))

		status, body, _ = srv.do(t, "GET", "/api/leaderboard?top=5", high, "")
		require.Equal(t, fiber.StatusOK, status)
		entries := body["data"].([]any)
		require.Len(t, entries, 1)
		entry := entries[0].(map[string]any)
		assert.Equal(t, float64(1), entry["rank"])
		assert.Equal(t, "7", entry["staff_id"])
		assert.Equal(t, float64(1), entry["claims"])
	})

	t.Run("leaderboard rejects bad top", func(t *testing.T) {
		status, body, _ := srv.do(t, "GET", "/api/leaderboard?top=0", high, "")
		assert.Equal(t, fiber.StatusBadRequest, status)
		assert.Equal(t, "VALIDATION_FAILED", errorCode(body))
	})

	t.Run("staff stats", func(t *testing.T) {
		status, body, _ := srv.do(t, "GET", "/api/staff/7/stats", trial, "")
		require.Equal(t, fiber.StatusOK, status)
		assert.Equal(t, float64(1), body["data"].(map[string]any)["claims"])

		status, _, _ = srv.do(t, "GET", "/api/staff/abc/stats", trial, "")
		assert.Equal(t, fiber.StatusBadRequest, status)
	})

	t.Run("blacklist", func(t *testing.T) {
		status, body, _ := srv.do(t, "GET", "/api/blacklist", trial, "")
		require.Equal(t, fiber.StatusOK, status)
		assert.Equal(t, float64(0), body["count"])
	})

	t.Run("reviews need high staff", func(t *testing.T) {
		status, _, _ := srv.do(t, "GET", "/api/reviews", trial, "")
		assert.Equal(t, fiber.StatusForbidden, status)
	})
}
