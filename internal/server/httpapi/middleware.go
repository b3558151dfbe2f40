package httpapi

import (
	"context"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/finmetrics/portfolio-api/internal/logging"
)

const (
	ctxKeyUsername = "username"
	ctxKeyLogger   = "logger"
)

// TokenVerifier resolves a presented access token to its subject.
type TokenVerifier interface {
	VerifyToken(token string) (string, error)
}

// RoleSource reports the role names held by a user.
type RoleSource interface {
	Roles(ctx context.Context, username string) ([]string, error)
}

// RequestLogger tags every request with an id and logs it on completion.
func RequestLogger(log logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.NewString()
		c.Header("X-Request-Id", requestID)
		c.Set(ctxKeyLogger, log.With("id", requestID))

		start := time.Now()
		c.Next()

		log.Info(c.Request.Context(), "request",
			"id", requestID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start).String(),
		)
	}
}

// Authenticate guards a route group with Bearer token auth. Missing,
// malformed, and invalid tokens all produce the same 401 body; the
// distinction is only visible in debug logs.
func Authenticate(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			rejectToken(c, "missing authorization header")
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			rejectToken(c, "malformed authorization header")
			return
		}

		username, err := verifier.VerifyToken(parts[1])
		if err != nil {
			rejectToken(c, "token verification failed")
			return
		}

		c.Set(ctxKeyUsername, username)
		c.Next()
	}
}

func rejectToken(c *gin.Context, reason string) {
	if log := requestLog(c); log != nil {
		log.Debug(c.Request.Context(), "rejecting request", "reason", reason, "path", c.Request.URL.Path)
	}
	respondError(c, http.StatusUnauthorized, "invalid or expired token")
	c.Abort()
}

// requestLog returns the request-scoped logger placed by RequestLogger,
// or nil when the middleware is not installed.
func requestLog(c *gin.Context) logging.Logger {
	if v, ok := c.Get(ctxKeyLogger); ok {
		if log, ok := v.(logging.Logger); ok {
			return log
		}
	}
	return nil
}

// RequireRole allows the request through only when the authenticated user
// holds at least one of the given roles.
func RequireRole(roles RoleSource, allowed ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		username := CurrentUser(c)
		if username == "" {
			respondError(c, http.StatusUnauthorized, "invalid or expired token")
			c.Abort()
			return
		}

		held, err := roles.Roles(c.Request.Context(), username)
		if err != nil {
			respondServiceError(c, err)
			c.Abort()
			return
		}

		for _, role := range held {
			if slices.Contains(allowed, role) {
				c.Next()
				return
			}
		}

		respondError(c, http.StatusForbidden, "insufficient permissions")
		c.Abort()
	}
}

// CurrentUser returns the authenticated username, or "" outside an
// authenticated group.
func CurrentUser(c *gin.Context) string {
	return c.GetString(ctxKeyUsername)
}
