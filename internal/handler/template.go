package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/autoflow/autoflow/internal/catalog"
	"github.com/autoflow/autoflow/internal/handler/dto"
	"github.com/autoflow/autoflow/internal/model"
)

// TemplateCatalog exposes the pre-authored templates.
type TemplateCatalog interface {
	List() []catalog.Summary
	Get(name string) (*model.Template, error)
}

// TemplatePreviewer renders a template as an automation without persisting it.
type TemplatePreviewer interface {
	TemplatePreview(name, platform string) (*model.Automation, error)
}

// TemplateHandler serves the template catalog.
type TemplateHandler struct {
	catalog  TemplateCatalog
	previews TemplatePreviewer
	logger   *slog.Logger
}

// NewTemplateHandler creates a new TemplateHandler.
func NewTemplateHandler(c TemplateCatalog, previews TemplatePreviewer, logger *slog.Logger) *TemplateHandler {
	return &TemplateHandler{
		catalog:  c,
		previews: previews,
		logger:   loggerOrDiscard(logger).With("component", "template_handler"),
	}
}

// List handles GET /templates
func (h *TemplateHandler) List(w http.ResponseWriter, r *http.Request) {
	summaries := h.catalog.List()
	if summaries == nil {
		summaries = []catalog.Summary{}
	}
	writeJSON(w, http.StatusOK, dto.TemplateListResponse{Templates: summaries})
}

// Get handles GET /templates/{name}
func (h *TemplateHandler) Get(w http.ResponseWriter, r *http.Request) {
	tpl, err := h.catalog.Get(chi.URLParam(r, "name"))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, tpl)
}

// Preview handles GET /templates/{name}/preview?platform=
// An omitted platform previews the Make.com blueprint.
func (h *TemplateHandler) Preview(w http.ResponseWriter, r *http.Request) {
	platform := r.URL.Query().Get("platform")
	if platform == "" {
		platform = string(model.PlatformMake)
	}

	automation, err := h.previews.TemplatePreview(chi.URLParam(r, "name"), platform)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, automation)
}
