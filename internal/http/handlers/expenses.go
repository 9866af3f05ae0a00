package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/geocoder89/expensetracker/internal/domain/expense"
	"github.com/geocoder89/expensetracker/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

const msgExpenseNotFound = "Expense not found or unauthorized"

type ExpenseService interface {
	List(ctx context.Context, userID string, filter expense.ListFilter) ([]expense.Expense, error)
	Create(ctx context.Context, userID string, fields expense.Fields) (expense.Expense, error)
	Update(ctx context.Context, userID, id string, patch expense.Patch) (expense.Expense, error)
	Delete(ctx context.Context, userID, id string) error
}

type ExpensesHandler struct {
	svc ExpenseService
	log *slog.Logger
}

func NewExpensesHandler(svc ExpenseService, log *slog.Logger) *ExpensesHandler {
	if log == nil {
		log = slog.Default()
	}
	return &ExpensesHandler{svc: svc, log: log}
}

func (h *ExpensesHandler) ListExpenses(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	var filter expense.ListFilter
	if raw := strings.TrimSpace(ctx.Query("category")); raw != "" {
		c := expense.Category(raw)
		filter.Category = &c
	}

	items, err := h.svc.List(ctx.Request.Context(), userID, filter)
	if err != nil {
		h.log.ErrorContext(ctx.Request.Context(), "list expenses failed", "err", err)
		RespondInternal(ctx, "Could not list expenses")
		return
	}

	RespondList(ctx, items, len(items))
}

func (h *ExpensesHandler) CreateExpense(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	var req expense.CreateExpenseRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// owner always comes from the token, never the body
	e, err := h.svc.Create(ctx.Request.Context(), userID, req.Fields())
	if err != nil {
		h.respondWriteError(ctx, err, "Could not create expense")
		return
	}

	RespondData(ctx, http.StatusCreated, e)
}

func (h *ExpensesHandler) UpdateExpense(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	var req expense.UpdateExpenseRequest

	if !BindJSON(ctx, &req) {
		return
	}

	e, err := h.svc.Update(ctx.Request.Context(), userID, ctx.Param("id"), req.Patch())
	if err != nil {
		h.respondWriteError(ctx, err, "Could not update expense")
		return
	}

	RespondData(ctx, http.StatusOK, e)
}

func (h *ExpensesHandler) DeleteExpense(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	err := h.svc.Delete(ctx.Request.Context(), userID, ctx.Param("id"))
	if err != nil {
		h.respondWriteError(ctx, err, "Could not delete expense")
		return
	}

	RespondData(ctx, http.StatusOK, gin.H{})
}

func (h *ExpensesHandler) respondWriteError(ctx *gin.Context, err error, fallback string) {
	var verr *expense.ValidationError

	switch {
	case errors.As(err, &verr):
		RespondBadRequest(ctx, verr.Error(), gin.H{"fields": verr.Fields})
	case errors.Is(err, expense.ErrNotFound):
		RespondNotFound(ctx, msgExpenseNotFound)
	default:
		h.log.ErrorContext(ctx.Request.Context(), "expense write failed", "err", err)
		RespondInternal(ctx, fallback)
	}
}

func requireUserID(ctx *gin.Context) (string, bool) {
	userID, ok := middlewares.UserIDFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "Not authorized")
		return "", false
	}
	return userID, true
}
