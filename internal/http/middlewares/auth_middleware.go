package middlewares

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/geocoder89/expensetracker/internal/actorctx"
	"github.com/geocoder89/expensetracker/internal/domain/user"
	"github.com/gin-gonic/gin"
)

// Keep these small interfaces so tests can fake them easily.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

type UserResolver interface {
	GetByID(ctx context.Context, id string) (user.User, error)
}

type FailureRecorder interface {
	AuthFailure(reason string)
}

type AuthMiddleware struct {
	tokens  TokenVerifier
	users   UserResolver
	metrics FailureRecorder
	log     *slog.Logger
}

// NewAuthMiddleware wires the gate. metrics and log may be nil.
func NewAuthMiddleware(tokens TokenVerifier, users UserResolver, metrics FailureRecorder, log *slog.Logger) *AuthMiddleware {
	if log == nil {
		log = slog.Default()
	}
	return &AuthMiddleware{tokens: tokens, users: users, metrics: metrics, log: log}
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			m.fail(c, "missing_token", http.StatusUnauthorized, "Not authorized, no token")
			return
		}

		userID, err := m.tokens.Verify(raw)
		if err != nil {
			m.fail(c, "invalid_token", http.StatusUnauthorized, "Not authorized, token failed")
			return
		}

		reqCtx := c.Request.Context()

		u, err := m.users.GetByID(reqCtx, userID)
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				m.fail(c, "unknown_user", http.StatusUnauthorized, "Not authorized, user not found")
				return
			}

			m.log.ErrorContext(reqCtx, "auth user lookup failed", "err", err, "user_id", userID)
			m.fail(c, "lookup_error", http.StatusInternalServerError, "Could not authenticate request")
			return
		}

		u.PasswordHash = ""

		// Stash the identity on both the gin and the request context
		c.Set(CtxUserID, u.ID)
		c.Set(CtxUser, u)
		c.Request = c.Request.WithContext(actorctx.WithUserID(reqCtx, u.ID))

		c.Next()
	}
}

func (m *AuthMiddleware) fail(c *gin.Context, reason string, status int, message string) {
	if m.metrics != nil {
		m.metrics.AuthFailure(reason)
	}
	abortJSON(c, status, message)
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}

	return token, true
}

// Optional helpers so handlers don't need to know the magic keys.

func UserIDFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(CtxUserID)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}

func UserFromContext(c *gin.Context) (user.User, bool) {
	v, ok := c.Get(CtxUser)
	if !ok {
		return user.User{}, false
	}
	u, ok := v.(user.User)
	return u, ok
}
