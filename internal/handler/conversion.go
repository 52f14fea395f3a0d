package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/autoflow/autoflow/internal/auth"
	"github.com/autoflow/autoflow/internal/handler/dto"
	"github.com/autoflow/autoflow/internal/model"
	"github.com/autoflow/autoflow/internal/service"
)

// Converter translates blueprints between platforms.
type Converter interface {
	Convert(ctx context.Context, in service.ConvertInput) (*model.Conversion, error)
	ListForUser(ctx context.Context, userID string) ([]*model.Conversion, error)
}

// ConversionHandler serves the blueprint converter.
type ConversionHandler struct {
	converter Converter
	logger    *slog.Logger
}

// NewConversionHandler creates a new ConversionHandler.
func NewConversionHandler(converter Converter, logger *slog.Logger) *ConversionHandler {
	return &ConversionHandler{
		converter: converter,
		logger:    loggerOrDiscard(logger).With("component", "conversion_handler"),
	}
}

// Convert handles POST /convert-blueprint
func (h *ConversionHandler) Convert(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		return
	}

	var req dto.ConvertRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	conversion, err := h.converter.Convert(r.Context(), service.ConvertInput{
		User:          user,
		BlueprintJSON: req.BlueprintJSON,
		Source:        req.SourcePlatform,
		Target:        req.TargetPlatform,
		AIModel:       req.AIModel,
	})
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, conversion)
}

// List handles GET /my-conversions
func (h *ConversionHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		return
	}

	conversions, err := h.converter.ListForUser(r.Context(), userID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if conversions == nil {
		conversions = []*model.Conversion{}
	}
	writeJSON(w, http.StatusOK, conversions)
}
