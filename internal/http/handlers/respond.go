package handlers

import (
	"net/http"

	"github.com/geocoder89/expensetracker/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

// Envelope is the shape of every API response body.
type Envelope struct {
	Success   bool        `json:"success"`
	Count     *int        `json:"count,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Details   interface{} `json:"details,omitempty"`
	RequestID string      `json:"requestId,omitempty"`
}

func requestIDFrom(ctx *gin.Context) string {
	v, ok := ctx.Get(middlewares.CtxRequestID)

	if ok {
		s, ok := v.(string)
		if ok && s != "" {
			return s
		}
	}

	// fallback header
	return ctx.GetHeader("X-Request-Id")
}

func RespondData(ctx *gin.Context, status int, data interface{}) {
	ctx.JSON(status, Envelope{Success: true, Data: data})
}

func RespondList(ctx *gin.Context, data interface{}, count int) {
	RespondJSONWithETag(ctx, http.StatusOK, Envelope{Success: true, Count: &count, Data: data})
}

func RespondError(ctx *gin.Context, status int, message string, details interface{}) {
	ctx.JSON(status, Envelope{
		Success:   false,
		Error:     message,
		Details:   details,
		RequestID: requestIDFrom(ctx),
	})
}

func RespondBadRequest(ctx *gin.Context, message string, details interface{}) {
	RespondError(ctx, http.StatusBadRequest, message, details)
}

func RespondUnauthorized(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusUnauthorized, message, nil)
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusNotFound, message, nil)
}

func RespondInternal(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusInternalServerError, message, nil)
}
