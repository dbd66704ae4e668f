package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	httpHandlers "github.com/taskmaster/scheduler/internal/adapters/http"
	"github.com/taskmaster/scheduler/internal/domain/entities"
	"github.com/taskmaster/scheduler/internal/infrastructure/logger"
	"github.com/taskmaster/scheduler/internal/ports"
)

type stubValidator struct{}

func (stubValidator) ValidateToken(token string) (*ports.Claims, error) {
	if token != "good" {
		return nil, entities.ErrUnauthorized
	}
	return &ports.Claims{UserID: "u-1", Email: "ada@example.com", Role: entities.UserRoleAdmin}, nil
}

func newAuthedEcho() *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = customErrorHandler(logger.NewNop())
	e.GET("/private", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"user": c.Get(httpHandlers.ContextUserKey),
			"role": c.Get(httpHandlers.ContextRoleKey),
		})
	}, authMiddleware(stubValidator{}, logger.NewNop()))
	return e
}

func TestAuthMiddleware(t *testing.T) {
	tests := []struct {
		name   string
		header string
		code   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"empty token", "Bearer ", http.StatusUnauthorized},
		{"invalid token", "Bearer bad", http.StatusUnauthorized},
		{"valid token", "Bearer good", http.StatusOK},
	}

	e := newAuthedEcho()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			if tt.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			assert.Equal(t, tt.code, rec.Code)
		})
	}
}

func TestAuthMiddleware_SetsClaims(t *testing.T) {
	e := newAuthedEcho()
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer good")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "u-1", body["user"])
	assert.Equal(t, "admin", body["role"])
}

func TestCustomErrorHandler(t *testing.T) {
	e := echo.New()
	e.HTTPErrorHandler = customErrorHandler(logger.NewNop())
	e.GET("/missing", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "task not found")
	})
	e.GET("/boom", func(c echo.Context) error {
		return errors.New("boom")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"message":"task not found"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"message":"Internal Server Error"}`, rec.Body.String())
}

func TestSplitOrigins(t *testing.T) {
	assert.Equal(t, []string{"http://localhost:8080", "http://localhost:3000"},
		splitOrigins("http://localhost:8080, http://localhost:3000,"))
	assert.Equal(t, []string{"*"}, splitOrigins(""))
}

func TestRequestRate(t *testing.T) {
	assert.Equal(t, rate.Limit(2), requestRate(120, time.Minute))
	assert.Equal(t, rate.Limit(10), requestRate(10, 0))
}

type fakeEvictor struct {
	calls atomic.Int32
	open  int
}

func (f *fakeEvictor) EvictIdle(time.Time) int {
	f.calls.Add(1)
	return 1
}

func (f *fakeEvictor) ActiveViews() int { return f.open }

func TestJanitor_Tick(t *testing.T) {
	views := &fakeEvictor{}
	j := NewJanitor(time.Minute, views, logger.NewNop())

	assert.Equal(t, 1, j.Tick())
	assert.Equal(t, int32(1), views.calls.Load())
}

func TestJanitor_RunStopsOnCancel(t *testing.T) {
	views := &fakeEvictor{}
	j := NewJanitor(5*time.Millisecond, views, logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		j.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return views.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}

func TestJanitor_Disabled(t *testing.T) {
	views := &fakeEvictor{}
	j := NewJanitor(0, views, logger.NewNop())

	j.Run(context.Background())
	assert.Zero(t, views.calls.Load())
}
