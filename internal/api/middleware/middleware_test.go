package middleware_test

import (
	"attorneyhub/backend/internal/api/middleware"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const secret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

type admins map[string]bool

func (a admins) IsAdmin(_ context.Context, userID string) bool { return a[userID] }

func whoami(c *gin.Context) {
	c.String(http.StatusOK, middleware.UserID(c))
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSessionToken_RoundTrip(t *testing.T) {
	token, err := middleware.IssueSessionToken(secret, "u1", time.Hour)
	require.NoError(t, err)

	userID, err := middleware.ParseSessionToken(secret, token)
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)

	_, err = middleware.ParseSessionToken("other-secret", token)
	assert.ErrorIs(t, err, middleware.ErrInvalidSession)
}

func TestParseSessionToken_Rejects(t *testing.T) {
	expired, err := middleware.IssueSessionToken(secret, "u1", -time.Minute)
	require.NoError(t, err)
	_, err = middleware.ParseSessionToken(secret, expired)
	assert.ErrorIs(t, err, middleware.ErrInvalidSession)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "u1"}).SignedString([]byte(secret))
	require.NoError(t, err)
	_, err = middleware.ParseSessionToken(secret, noExpiry)
	assert.ErrorIs(t, err, middleware.ErrInvalidSession)

	noSubject, err := middleware.IssueSessionToken(secret, "", time.Hour)
	require.NoError(t, err)
	_, err = middleware.ParseSessionToken(secret, noSubject)
	assert.ErrorIs(t, err, middleware.ErrInvalidSession)
}

func TestSessionAuth(t *testing.T) {
	r := gin.New()
	r.Use(middleware.SessionAuth(secret, zap.NewNop()))
	r.GET("/who", whoami)

	token, err := middleware.IssueSessionToken(secret, "u1", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/who", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	assert.Equal(t, "u1", serve(r, req).Body.String())

	req = httptest.NewRequest(http.MethodGet, "/who", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: token})
	assert.Equal(t, "u1", serve(r, req).Body.String())

	req = httptest.NewRequest(http.MethodGet, "/who", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w := serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestRequireUser(t *testing.T) {
	r := gin.New()
	r.Use(middleware.SessionAuth(secret, zap.NewNop()), middleware.RequireUser())
	r.GET("/who", whoami)

	w := serve(r, httptest.NewRequest(http.MethodGet, "/who", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAdmin(t *testing.T) {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if id := c.GetHeader("X-Test-User"); id != "" {
			middleware.SetUserID(c, id)
		}
	})
	r.Use(middleware.RequireAdmin(admins{"boss": true}, zap.NewNop()))
	r.GET("/admin", whoami)

	tests := []struct {
		name string
		user string
		want int
	}{
		{"anonymous", "", http.StatusUnauthorized},
		{"member", "u1", http.StatusForbidden},
		{"admin", "boss", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			req.Header.Set("X-Test-User", tt.user)
			assert.Equal(t, tt.want, serve(r, req).Code)
		})
	}
}

func TestRateLimiter(t *testing.T) {
	r := gin.New()
	r.Use(middleware.NewRateLimiter(2).Middleware(zap.NewNop()))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := func(ip string) int {
		rq := httptest.NewRequest(http.MethodGet, "/", nil)
		rq.RemoteAddr = ip + ":1234"
		return serve(r, rq).Code
	}
	assert.Equal(t, http.StatusOK, req("10.0.0.1"))
	assert.Equal(t, http.StatusOK, req("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, req("10.0.0.1"))
	assert.Equal(t, http.StatusOK, req("10.0.0.2"))
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(middleware.Recovery(zap.NewNop()))
	r.GET("/boom", func(*gin.Context) { panic("boom") })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Internal Server Error")
}
