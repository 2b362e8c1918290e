package stream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"messenger-service/internal/middleware"
)

const testSecret = "test-secret"

func signToken(t *testing.T, userID string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &middleware.Claims{UserID: userID})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func setupSSERouter(registry *Registry) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewSSEHandler(registry, time.Minute, testSecret)
	r := gin.New()
	r.GET("/:userId", handler.Handle)
	return r
}

func TestSSEChannelFrameFormat(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	ch := &sseChannel{w: c.Writer}

	require.NoError(t, ch.comment("connected"))
	require.NoError(t, ch.Send([]byte(`{"text":"hello"}`)))

	assert.Equal(t, ": connected\n\ndata: {\"text\":\"hello\"}\n\n", rec.Body.String())
}

func TestSSESubscribeWithoutToken(t *testing.T) {
	router := setupSSERouter(NewRegistry())

	req := httptest.NewRequest(http.MethodGet, "/alice", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSSESubscribeWithMismatchedToken(t *testing.T) {
	router := setupSSERouter(NewRegistry())

	req := httptest.NewRequest(http.MethodGet, "/alice?token="+signToken(t, "bob"), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSSESubscribeRegistersAndUnregisters(t *testing.T) {
	registry := NewRegistry()
	router := setupSSERouter(registry)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req := httptest.NewRequest(http.MethodGet, "/alice?token="+signToken(t, "alice"), nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), ": connected\n\n"))
	assert.False(t, registry.Connected("alice"))
}
