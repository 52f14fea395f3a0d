package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/autoflow/autoflow/internal/auth"
	"github.com/autoflow/autoflow/internal/handler/dto"
	"github.com/autoflow/autoflow/internal/model"
	"github.com/autoflow/autoflow/internal/service"
)

// Generator produces and looks up automations.
type Generator interface {
	Generate(ctx context.Context, in service.GenerateInput) (*model.Automation, error)
	ListForUser(ctx context.Context, userID string) ([]*model.Automation, error)
	Get(ctx context.Context, userID, id string) (*model.Automation, error)
}

// AutomationHandler serves the generation endpoints.
type AutomationHandler struct {
	generator Generator
	logger    *slog.Logger
}

// NewAutomationHandler creates a new AutomationHandler.
func NewAutomationHandler(generator Generator, logger *slog.Logger) *AutomationHandler {
	return &AutomationHandler{
		generator: generator,
		logger:    loggerOrDiscard(logger).With("component", "automation_handler"),
	}
}

// GenerateGuest handles POST /generate-automation-guest
func (h *AutomationHandler) GenerateGuest(w http.ResponseWriter, r *http.Request) {
	var req dto.GenerateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	h.generate(w, r, service.GenerateInput{
		TaskDescription: req.TaskDescription,
		Platform:        req.Platform,
		AIModel:         req.AIModel,
		GuestEmail:      req.UserEmail,
	})
}

// Generate handles POST /generate-automation
func (h *AutomationHandler) Generate(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		return
	}

	var req dto.GenerateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	h.generate(w, r, service.GenerateInput{
		TaskDescription: req.TaskDescription,
		Platform:        req.Platform,
		AIModel:         req.AIModel,
		User:            user,
	})
}

func (h *AutomationHandler) generate(w http.ResponseWriter, r *http.Request, in service.GenerateInput) {
	automation, err := h.generator.Generate(r.Context(), in)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, automation)
}

// List handles GET /my-automations
func (h *AutomationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		return
	}

	automations, err := h.generator.ListForUser(r.Context(), userID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if automations == nil {
		automations = []*model.Automation{}
	}
	writeJSON(w, http.StatusOK, automations)
}

// Get handles GET /my-automations/{id}
func (h *AutomationHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		return
	}

	automation, err := h.generator.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, automation)
}
