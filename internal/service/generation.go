package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/autoflow/autoflow/internal/blueprint"
	"github.com/autoflow/autoflow/internal/catalog"
	"github.com/autoflow/autoflow/internal/llm"
	"github.com/autoflow/autoflow/internal/metrics"
	"github.com/autoflow/autoflow/internal/model"
	"github.com/autoflow/autoflow/internal/quota"
	"github.com/autoflow/autoflow/internal/repository"
)

const (
	generationMaxTokens   = 2500
	generationTemperature = 0.5
)

// Generation failure reasons reported to metrics.
const (
	failureUpstream  = "upstream"
	failureParse     = "parse"
	failureSchema    = "schema"
	failureModules   = "modules"
	failurePersist   = "persist"
	failureModelDown = "model_unavailable"
)

// AutomationStore persists automations and guest leads.
type AutomationStore interface {
	CreateAutomation(ctx context.Context, a *model.Automation) error
	CreateAutomationWithUsage(ctx context.Context, a *model.Automation, limit int) error
	ListAutomationsByUser(ctx context.Context, userID string) ([]*model.Automation, error)
	GetAutomationForUser(ctx context.Context, userID, id string) (*model.Automation, error)
	CreateLead(ctx context.Context, lead *model.Lead) error
}

// ModelRouter sends a completion to the named model.
type ModelRouter interface {
	Complete(ctx context.Context, m model.AIModel, req llm.Request) (string, error)
	Available(m model.AIModel) bool
}

// GenerationService turns task descriptions into automations.
type GenerationService struct {
	store     AutomationStore
	catalog   *catalog.Catalog
	router    ModelRouter
	validator *blueprint.Validator
	policy    *quota.Policy
	logger    *slog.Logger
	metrics   metrics.Recorder
	now       func() time.Time
}

// NewGenerationService creates a new GenerationService.
func NewGenerationService(
	store AutomationStore,
	cat *catalog.Catalog,
	router ModelRouter,
	validator *blueprint.Validator,
	policy *quota.Policy,
	logger *slog.Logger,
	recorder metrics.Recorder,
) *GenerationService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &GenerationService{
		store:     store,
		catalog:   cat,
		router:    router,
		validator: validator,
		policy:    policy,
		logger:    logger.With("component", "generation"),
		metrics:   recorder,
		now:       time.Now,
	}
}

// GenerateInput defines input for a generation. A nil User is a guest request.
type GenerateInput struct {
	TaskDescription string
	Platform        string
	AIModel         string
	User            *model.User
	GuestEmail      string
}

type generateRequest struct {
	task       string
	platform   model.Platform
	model      model.AIModel
	user       *model.User
	guestEmail string
}

func (r *generateRequest) userID() *string {
	if r.user == nil {
		return nil
	}
	id := r.user.ID
	return &id
}

func validateGenerateInput(in GenerateInput) (*generateRequest, error) {
	task := strings.TrimSpace(in.TaskDescription)
	if task == "" {
		return nil, validationError("task_description is required")
	}
	platform, err := model.ParsePlatform(in.Platform)
	if err != nil {
		return nil, validationError("platform must be one of Make.com, n8n")
	}
	aiModel, err := model.ParseAIModel(in.AIModel)
	if err != nil {
		return nil, validationError("unsupported ai_model %q", in.AIModel)
	}

	req := &generateRequest{task: task, platform: platform, model: aiModel, user: in.User}
	if in.User == nil {
		email, ok := normalizeEmail(in.GuestEmail)
		if !ok {
			return nil, validationError("a valid email is required")
		}
		req.guestEmail = email
	}
	return req, nil
}

// Generate validates the request, then serves a template or asks the model for a new automation.
func (s *GenerationService) Generate(ctx context.Context, in GenerateInput) (*model.Automation, error) {
	req, err := validateGenerateInput(in)
	if err != nil {
		return nil, err
	}

	if req.user == nil {
		s.captureLead(ctx, req)
	}

	if tpl, ok := s.catalog.Match(req.task); ok {
		return s.fromTemplate(ctx, req, tpl)
	}

	var limit int
	if req.user != nil {
		decision := s.policy.Check(req.user.Tier, req.user.AutomationsUsed)
		if !decision.Allowed {
			s.metrics.IncQuotaRejected()
			return nil, s.policy.Exceeded(req.user.Tier)
		}
		limit = decision.Limit
	}

	if !s.router.Available(req.model) {
		s.metrics.IncGenerationFailed(failureModelDown)
		return nil, fmt.Errorf("%w: %s", ErrModelUnavailable, req.model)
	}

	gen, err := s.generate(ctx, req)
	if err != nil {
		return nil, err
	}

	a := &model.Automation{
		ID:                newID(),
		UserID:            req.userID(),
		GuestEmail:        req.guestEmail,
		TaskDescription:   req.task,
		Platform:          req.platform,
		AIModel:           req.model,
		Summary:           gen.Summary,
		RequiredTools:     gen.RequiredTools,
		WorkflowSteps:     gen.WorkflowSteps,
		AutomationJSON:    gen.JSON,
		SetupInstructions: blueprint.EnhanceSetupInstructions(req.platform, gen.SetupInstructions),
		BonusContent:      optional(gen.BonusContent),
		CreatedAt:         storedTime(s.now()),
	}

	if req.user != nil {
		err = s.store.CreateAutomationWithUsage(ctx, a, limit)
		if errors.Is(err, repository.ErrUsageLimitReached) {
			s.metrics.IncQuotaRejected()
			return nil, s.policy.Exceeded(req.user.Tier)
		}
	} else {
		err = s.store.CreateAutomation(ctx, a)
	}
	if err != nil {
		s.metrics.IncGenerationFailed(failurePersist)
		return nil, fmt.Errorf("failed to save automation: %w", err)
	}

	if req.user != nil {
		req.user.AutomationsUsed++
	}
	s.metrics.IncGeneration(metrics.SourceAI)
	return a, nil
}

// generate calls the model and checks what came back. Nothing is persisted here.
func (s *GenerationService) generate(ctx context.Context, req *generateRequest) (*blueprint.Generation, error) {
	text, err := s.router.Complete(ctx, req.model, llm.Request{
		System:      blueprint.GenerationSystemPrompt,
		Prompt:      blueprint.GenerationPrompt(req.task, req.platform),
		MaxTokens:   generationMaxTokens,
		Temperature: generationTemperature,
	})
	if err != nil {
		s.metrics.IncGenerationFailed(failureUpstream)
		return nil, upstreamError(err)
	}

	gen, err := blueprint.ParseGeneration(text)
	if err != nil {
		s.metrics.IncGenerationFailed(failureParse)
		return nil, upstreamError(err)
	}
	if err := s.validator.Validate(req.platform, gen.JSON); err != nil {
		s.metrics.IncGenerationFailed(failureSchema)
		return nil, upstreamError(err)
	}
	unknown, err := s.validator.CheckModules(req.platform, gen.JSON)
	if err != nil {
		s.metrics.IncGenerationFailed(failureModules)
		return nil, upstreamError(err)
	}
	if len(unknown) > 0 {
		s.logger.Warn("blueprint uses unregistered modules",
			"platform", req.platform,
			"model", req.model,
			"modules", unknown,
		)
	}
	return gen, nil
}

func (s *GenerationService) fromTemplate(ctx context.Context, req *generateRequest, tpl *model.Template) (*model.Automation, error) {
	a := templateAutomation(tpl, req.platform)
	a.ID = newID()
	a.UserID = req.userID()
	a.GuestEmail = req.guestEmail
	a.TaskDescription = req.task
	a.AIModel = req.model
	a.CreatedAt = storedTime(s.now())

	if err := s.store.CreateAutomation(ctx, a); err != nil {
		s.metrics.IncGenerationFailed(failurePersist)
		return nil, fmt.Errorf("failed to save template automation: %w", err)
	}
	s.metrics.IncGeneration(metrics.SourceTemplate)
	return a, nil
}

// captureLead records the guest's email. Failures are logged and never reach the caller.
func (s *GenerationService) captureLead(ctx context.Context, req *generateRequest) {
	lead := &model.Lead{
		ID:              newID(),
		Email:           req.guestEmail,
		TaskDescription: req.task,
		Platform:        req.platform,
		AIModel:         req.model,
		Source:          model.LeadSourceGuestAutomation,
		CreatedAt:       storedTime(s.now()),
	}
	if err := s.store.CreateLead(ctx, lead); err != nil {
		s.metrics.IncLead("dropped")
		s.logger.Warn("failed to capture lead", "error", err)
		return
	}
	s.metrics.IncLead("captured")
}

// ListForUser returns the user's automations, newest first.
func (s *GenerationService) ListForUser(ctx context.Context, userID string) ([]*model.Automation, error) {
	list, err := s.store.ListAutomationsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list automations: %w", err)
	}
	return list, nil
}

// Get returns one automation owned by userID.
func (s *GenerationService) Get(ctx context.Context, userID, id string) (*model.Automation, error) {
	a, err := s.store.GetAutomationForUser(ctx, userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrAutomationNotFound) {
			return nil, ErrAutomationNotFound
		}
		return nil, fmt.Errorf("failed to get automation: %w", err)
	}
	return a, nil
}

// TemplatePreview renders a template for a platform without saving it.
func (s *GenerationService) TemplatePreview(name, platform string) (*model.Automation, error) {
	tpl, err := s.catalog.Get(name)
	if err != nil {
		return nil, err
	}
	p, err := model.ParsePlatform(platform)
	if err != nil {
		return nil, validationError("platform must be one of Make.com, n8n")
	}
	a := templateAutomation(tpl, p)
	a.TaskDescription = "Use template: " + tpl.Name
	a.AIModel = model.DefaultAIModel
	a.CreatedAt = storedTime(s.now())
	return a, nil
}

func templateAutomation(tpl *model.Template, p model.Platform) *model.Automation {
	templateID := tpl.ID
	return &model.Automation{
		Platform:          p,
		Summary:           tpl.Summary,
		RequiredTools:     append([]string(nil), tpl.RequiredTools...),
		WorkflowSteps:     append([]string(nil), tpl.WorkflowSteps...),
		AutomationJSON:    catalog.BlueprintFor(tpl, p),
		SetupInstructions: blueprint.EnhanceSetupInstructions(p, tpl.SetupInstructions),
		BonusContent:      optional(tpl.BonusContent),
		IsTemplate:        true,
		TemplateID:        &templateID,
	}
}

func optional(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
