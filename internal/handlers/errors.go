package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/SscSPs/statutory_ledger/internal/apperrors"
	"github.com/SscSPs/statutory_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// errorResponse is the body of every failed request.
type errorResponse struct {
	Error   string         `json:"error"`
	Code    string         `json:"code"`
	Details map[string]any `json:"details,omitempty"`
}

// respondError maps a service error to a status code and writes it. Rejections
// carry the numbers involved so the caller can correct the request.
func respondError(c *gin.Context, err error, action string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var (
		verr      *apperrors.ValidationError
		imbalance *apperrors.ImbalanceError
		unknown   *apperrors.UnknownAccountError
		capLimit  *apperrors.CapitalLimitExceededError
		ceiling   *apperrors.OwnershipCeilingExceededError
	)
	status := http.StatusInternalServerError
	body := errorResponse{Error: "Failed to " + action, Code: "internal"}

	switch {
	case errors.Is(err, apperrors.ErrInternal):
		// The cause only goes to the log.
	case errors.As(err, &verr):
		status = http.StatusBadRequest
		details := make(map[string]any, len(verr.Fields))
		for k, v := range verr.Fields {
			details[k] = v
		}
		body = errorResponse{Error: err.Error(), Code: "validation", Details: details}
	case errors.As(err, &imbalance):
		status = http.StatusUnprocessableEntity
		body = errorResponse{Error: err.Error(), Code: "imbalance", Details: map[string]any{
			"debits":  imbalance.Debits,
			"credits": imbalance.Credits,
		}}
	case errors.As(err, &unknown):
		status = http.StatusUnprocessableEntity
		body = errorResponse{Error: err.Error(), Code: "unknown_account", Details: map[string]any{"accountCode": unknown.Code}}
	case errors.As(err, &capLimit):
		status = http.StatusConflict
		body = errorResponse{Error: err.Error(), Code: "capital_limit_exceeded", Details: map[string]any{
			"issued":     capLimit.Issued,
			"requested":  capLimit.Requested,
			"authorized": capLimit.Authorized,
		}}
	case errors.As(err, &ceiling):
		status = http.StatusConflict
		body = errorResponse{Error: err.Error(), Code: "ownership_ceiling_exceeded", Details: map[string]any{
			"current":   ceiling.Current,
			"requested": ceiling.Requested,
		}}
	case errors.Is(err, apperrors.ErrValidation):
		status = http.StatusBadRequest
		body = errorResponse{Error: err.Error(), Code: "validation"}
	case errors.Is(err, apperrors.ErrNotFound):
		status = http.StatusNotFound
		body = errorResponse{Error: err.Error(), Code: "not_found"}
	case errors.Is(err, apperrors.ErrConflict), errors.Is(err, apperrors.ErrDuplicate):
		status = http.StatusConflict
		body = errorResponse{Error: err.Error(), Code: "conflict"}
	case errors.Is(err, apperrors.ErrForbidden):
		status = http.StatusForbidden
		body = errorResponse{Error: "You do not have permission to " + action, Code: "forbidden"}
	case errors.Is(err, apperrors.ErrUnauthorized):
		status = http.StatusUnauthorized
		body = errorResponse{Error: "Unauthorized", Code: "unauthorized"}
	}

	if status >= http.StatusInternalServerError {
		logger.Error("Failed to "+action, slog.String("error", err.Error()))
	} else {
		logger.Warn("Request rejected", slog.String("action", action), slog.Int("status", status), slog.String("error", err.Error()))
	}
	c.AbortWithStatusJSON(status, body)
}

// respondBindError reports a request that gin could not bind or validate.
func respondBindError(c *gin.Context, err error) {
	middleware.GetLoggerFromCtx(c.Request.Context()).Warn("Failed to bind request", slog.String("error", err.Error()))

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make(map[string]any, len(verrs))
		for _, fe := range verrs {
			field := fe.Namespace()
			if i := strings.Index(field, "."); i >= 0 {
				field = field[i+1:]
			}
			details[field] = "failed on the '" + fe.Tag() + "' rule"
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: "Invalid request", Code: "validation", Details: details})
		return
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: "Invalid request format: " + err.Error(), Code: "validation"})
}

// requireUserID reads the authenticated user or writes a 401.
func requireUserID(c *gin.Context) (string, bool) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		middleware.GetLoggerFromCtx(c.Request.Context()).Error("User ID not found in context")
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Error: "Unauthorized", Code: "unauthorized"})
		return "", false
	}
	return userID, true
}
