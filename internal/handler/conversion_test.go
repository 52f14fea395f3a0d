package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/autoflow/autoflow/internal/model"
	"github.com/autoflow/autoflow/internal/service"
)

func TestConversionHandler_Convert(t *testing.T) {
	t.Parallel()

	body := `{"blueprint_json":"{\"flow\":[]}","source_platform":"Make.com","target_platform":"n8n","ai_model":"gemini-1.5-pro"}`

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"success", nil, http.StatusOK, ""},
		{"free tier", service.ErrConversionForbidden, http.StatusForbidden, "UPGRADE_REQUIRED"},
		{"same platform", service.ErrSamePlatform, http.StatusForbidden, "SAME_PLATFORM"},
		{"bad blueprint", service.ErrValidation, http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"provider down", service.ErrUpstream, http.StatusBadGateway, "UPSTREAM_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			conv := &fakeConverter{
				conversion: &model.Conversion{ID: "c1", SourcePlatform: model.PlatformMake, TargetPlatform: model.PlatformN8n},
				err:        tt.err,
			}
			h := NewConversionHandler(conv, nil)

			req := withUser(httptest.NewRequest(http.MethodPost, "/convert-blueprint", strings.NewReader(body)), testUser(model.TierPro))
			rec := httptest.NewRecorder()

			h.Convert(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if conv.input.Source != "Make.com" || conv.input.Target != "n8n" || conv.input.BlueprintJSON != `{"flow":[]}` {
				t.Errorf("unexpected input: %+v", conv.input)
			}
			if tt.wantCode != "" {
				if resp := decodeError(t, rec); resp.Code != tt.wantCode {
					t.Errorf("code = %q, want %q", resp.Code, tt.wantCode)
				}
			}
		})
	}
}

func TestConversionHandler_List(t *testing.T) {
	t.Parallel()

	h := NewConversionHandler(&fakeConverter{}, nil)
	req := withUser(httptest.NewRequest(http.MethodGet, "/my-conversions", nil), testUser(model.TierCreator))
	rec := httptest.NewRecorder()

	h.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Errorf("expected empty array, got %s", got)
	}
}
