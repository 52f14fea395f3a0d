package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/autoflow/autoflow/internal/blueprint"
	"github.com/autoflow/autoflow/internal/llm"
	"github.com/autoflow/autoflow/internal/metrics"
	"github.com/autoflow/autoflow/internal/model"
	"github.com/autoflow/autoflow/internal/quota"
)

const (
	conversionMaxTokens   = 3000
	conversionTemperature = 0.3
)

// ConversionStore persists converted blueprints.
type ConversionStore interface {
	CreateConversion(ctx context.Context, c *model.Conversion) error
	ListConversionsByUser(ctx context.Context, userID string) ([]*model.Conversion, error)
}

// ConversionService translates blueprints between platforms.
type ConversionService struct {
	store     ConversionStore
	router    ModelRouter
	validator *blueprint.Validator
	policy    *quota.Policy
	logger    *slog.Logger
	metrics   metrics.Recorder
	now       func() time.Time
}

// NewConversionService creates a new ConversionService.
func NewConversionService(
	store ConversionStore,
	router ModelRouter,
	validator *blueprint.Validator,
	policy *quota.Policy,
	logger *slog.Logger,
	recorder metrics.Recorder,
) *ConversionService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ConversionService{
		store:     store,
		router:    router,
		validator: validator,
		policy:    policy,
		logger:    logger.With("component", "conversion"),
		metrics:   recorder,
		now:       time.Now,
	}
}

// ConvertInput defines input for a conversion.
type ConvertInput struct {
	User          *model.User
	BlueprintJSON string
	Source        string
	Target        string
	AIModel       string
}

// Convert checks the request, asks the model to translate the blueprint and stores the result.
// Every check runs before the model is called.
func (s *ConversionService) Convert(ctx context.Context, in ConvertInput) (*model.Conversion, error) {
	if in.User == nil || !s.policy.CanConvert(in.User.Tier) {
		return nil, ErrConversionForbidden
	}

	source, err := model.ParsePlatform(in.Source)
	if err != nil {
		return nil, validationError("source_platform must be one of Make.com, n8n")
	}
	target, err := model.ParsePlatform(in.Target)
	if err != nil {
		return nil, validationError("target_platform must be one of Make.com, n8n")
	}
	if source == target {
		return nil, ErrSamePlatform
	}

	trimmed := strings.TrimSpace(in.BlueprintJSON)
	if trimmed == "" || !json.Valid([]byte(trimmed)) {
		return nil, validationError("blueprint_json must be valid JSON")
	}

	aiModel, err := model.ParseAIModel(in.AIModel)
	if err != nil {
		return nil, validationError("unsupported ai_model %q", in.AIModel)
	}
	if !s.router.Available(aiModel) {
		return nil, fmt.Errorf("%w: %s", ErrModelUnavailable, aiModel)
	}

	text, err := s.router.Complete(ctx, aiModel, llm.Request{
		System:      blueprint.ConversionSystemPrompt,
		Prompt:      blueprint.ConversionPrompt(trimmed, source, target),
		MaxTokens:   conversionMaxTokens,
		Temperature: conversionTemperature,
	})
	if err != nil {
		s.metrics.IncConversion("failed")
		return nil, upstreamError(err)
	}

	out, err := blueprint.ParseConversion(text)
	if err != nil {
		s.metrics.IncConversion("failed")
		return nil, upstreamError(err)
	}
	if err := s.validator.Validate(target, out.JSON); err != nil {
		s.metrics.IncConversion("failed")
		return nil, upstreamError(err)
	}
	if unknown, err := s.validator.CheckModules(target, out.JSON); err != nil {
		s.metrics.IncConversion("failed")
		return nil, upstreamError(err)
	} else if len(unknown) > 0 {
		s.logger.Warn("converted blueprint uses unregistered modules", "target", target, "modules", unknown)
	}

	conv := &model.Conversion{
		ID:              newID(),
		UserID:          in.User.ID,
		SourcePlatform:  source,
		TargetPlatform:  target,
		AIModel:         aiModel,
		OriginalJSON:    in.BlueprintJSON,
		ConvertedJSON:   out.JSON,
		ConversionNotes: out.Notes,
		CreatedAt:       storedTime(s.now()),
	}
	if err := s.store.CreateConversion(ctx, conv); err != nil {
		s.metrics.IncConversion("failed")
		return nil, fmt.Errorf("failed to save conversion: %w", err)
	}

	s.metrics.IncConversion("success")
	return conv, nil
}

// ListForUser returns the user's conversions, newest first.
func (s *ConversionService) ListForUser(ctx context.Context, userID string) ([]*model.Conversion, error) {
	list, err := s.store.ListConversionsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversions: %w", err)
	}
	return list, nil
}
