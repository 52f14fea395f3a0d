package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/autoflow/autoflow/internal/billing"
	"github.com/autoflow/autoflow/internal/catalog"
	"github.com/autoflow/autoflow/internal/quota"
	"github.com/autoflow/autoflow/internal/service"
)

// respondError maps a service error to its status and code. Anything
// unrecognised is logged and hidden behind a 500.
func respondError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, quota.ErrQuotaExceeded):
		writeError(w, http.StatusForbidden, "QUOTA_EXCEEDED", quotaMessage(err))
	case errors.Is(err, service.ErrConversionForbidden):
		writeError(w, http.StatusForbidden, "UPGRADE_REQUIRED", service.ErrConversionForbidden.Error())
	case errors.Is(err, service.ErrSamePlatform):
		writeError(w, http.StatusForbidden, "SAME_PLATFORM", service.ErrSamePlatform.Error())
	case errors.Is(err, service.ErrAutomationNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", service.ErrAutomationNotFound.Error())
	case errors.Is(err, catalog.ErrTemplateNotFound):
		writeError(w, http.StatusNotFound, "TEMPLATE_NOT_FOUND", catalog.ErrTemplateNotFound.Error())
	case errors.Is(err, service.ErrEmailExists):
		writeError(w, http.StatusConflict, "EMAIL_EXISTS", service.ErrEmailExists.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", service.ErrInvalidCredentials.Error())
	case errors.Is(err, service.ErrModelUnavailable):
		writeError(w, http.StatusServiceUnavailable, "MODEL_UNAVAILABLE", service.ErrModelUnavailable.Error())
	case errors.Is(err, service.ErrUpstream):
		logger.Warn("upstream failure", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusBadGateway, "UPSTREAM_ERROR", service.ErrUpstream.Error())
	case errors.Is(err, billing.ErrNotConfigured):
		writeError(w, http.StatusServiceUnavailable, "BILLING_UNAVAILABLE", billing.ErrNotConfigured.Error())
	case errors.Is(err, billing.ErrInvalidTier):
		writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", billing.ErrInvalidTier.Error())
	case errors.Is(err, billing.ErrInvalidSignature):
		writeError(w, http.StatusBadRequest, "INVALID_SIGNATURE", billing.ErrInvalidSignature.Error())
	case errors.Is(err, billing.ErrInvalidEvent):
		writeError(w, http.StatusBadRequest, "INVALID_EVENT", billing.ErrInvalidEvent.Error())
	default:
		logger.Error("request failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

func quotaMessage(err error) string {
	var exceeded *quota.ExceededError
	if errors.As(err, &exceeded) {
		return exceeded.Error()
	}
	return quota.ErrQuotaExceeded.Error()
}
