// Package middleware holds the gin middleware shared by every route group.
package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	jwt "github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const (
	userIDKey = "userID"

	// SessionCookie carries the host-issued session token for browser requests.
	SessionCookie = "attorney_hub_session"

	sessionIssuer = "attorney-hub"
)

var ErrInvalidSession = errors.New("invalid session token")

// AdminChecker reports whether a user is an administrator.
type AdminChecker interface {
	IsAdmin(ctx context.Context, userID string) bool
}

// IssueSessionToken signs a session token for userID. The host identity
// service issues the real tokens; this is used by the admin CLI and tests.
func IssueSessionToken(secret, userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    sessionIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseSessionToken verifies token and returns the user ID in its subject.
func ParseSessionToken(secret, token string) (string, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: no subject", ErrInvalidSession)
	}
	return claims.Subject, nil
}

func sessionToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil {
		return cookie
	}
	return ""
}

// SessionAuth identifies the caller from a bearer token or the session
// cookie. Anonymous requests pass through; handlers decide what they need.
func SessionAuth(secret string, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sessionToken(c)
		if token != "" && secret != "" {
			userID, err := ParseSessionToken(secret, token)
			if err != nil {
				log.Debug("rejected session token", zap.String("ip", c.ClientIP()), zap.Error(err))
			} else {
				c.Set(userIDKey, userID)
			}
		}
		c.Next()
	}
}

// UserID returns the authenticated user, or "" for anonymous requests.
func UserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// SetUserID marks the request as authenticated. Used by tests.
func SetUserID(c *gin.Context, userID string) {
	c.Set(userIDKey, userID)
}

// RequireUser rejects anonymous requests with 401.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if UserID(c) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Next()
	}
}

// RequireAdmin rejects everyone but administrators.
func RequireAdmin(admins AdminChecker, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := UserID(c)
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		if !admins.IsAdmin(c.Request.Context(), userID) {
			log.Warn("non-admin hit admin route",
				zap.String("event_type", "unauthorized_admin_access"),
				zap.String("user_id", userID),
				zap.String("path", c.FullPath()),
				zap.String("ip", c.ClientIP()))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "administrator access required"})
			return
		}
		c.Next()
	}
}
