package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/geocoder89/expensetracker/internal/domain/user"
	"github.com/geocoder89/expensetracker/internal/http/middlewares"
	"github.com/geocoder89/expensetracker/internal/service"
	"github.com/gin-gonic/gin"
)

type Accounts interface {
	Register(ctx context.Context, name, email, password string) (service.Session, error)
	Login(ctx context.Context, email, password string) (service.Session, error)
}

type AuthHandler struct {
	accounts Accounts
	log      *slog.Logger
}

func NewAuthHandler(accounts Accounts, log *slog.Logger) *AuthHandler {
	if log == nil {
		log = slog.Default()
	}
	return &AuthHandler{accounts: accounts, log: log}
}

type sessionResponse struct {
	User  user.Profile `json:"user"`
	Token string       `json:"token"`
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req user.RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	s, err := h.accounts.Register(ctx.Request.Context(), strings.TrimSpace(req.Name), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			RespondBadRequest(ctx, "Email already registered", nil)
			return
		}

		h.log.ErrorContext(ctx.Request.Context(), "register failed", "err", err)
		RespondInternal(ctx, "Could not register user")
		return
	}

	RespondData(ctx, http.StatusCreated, sessionResponse{User: s.User.Profile(), Token: s.Token})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req user.LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	s, err := h.accounts.Login(ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			RespondUnauthorized(ctx, "Invalid credentials")
			return
		}

		h.log.ErrorContext(ctx.Request.Context(), "login failed", "err", err)
		RespondInternal(ctx, "Could not log in")
		return
	}

	RespondData(ctx, http.StatusOK, sessionResponse{User: s.User.Profile(), Token: s.Token})
}

// Me returns the profile the auth gate resolved for this request.
func (h *AuthHandler) Me(ctx *gin.Context) {
	u, ok := middlewares.UserFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "Not authorized")
		return
	}

	RespondData(ctx, http.StatusOK, u.Profile())
}
