package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/autoflow/autoflow/internal/model"
	"github.com/autoflow/autoflow/internal/quota"
	"github.com/autoflow/autoflow/internal/service"
)

func sampleAutomation() *model.Automation {
	userID := "user-1"
	return &model.Automation{
		ID:              "01J0000000000000000000AUTO",
		UserID:          &userID,
		TaskDescription: "Send Slack alerts for new Stripe payments",
		Platform:        model.PlatformMake,
		AIModel:         model.ModelGPT4,
		Summary:         "Posts payments to Slack",
		RequiredTools:   []string{"Stripe", "Slack"},
		WorkflowSteps:   []string{"1. Watch", "2. Post"},
		AutomationJSON:  `{"flow":[]}`,
	}
}

func TestAutomationHandler_GenerateGuest(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{automation: sampleAutomation()}
	h := NewAutomationHandler(gen, nil)

	body := `{"task_description":"Send Slack alerts","platform":"n8n","ai_model":"gpt-4","user_email":"lead@example.com"}`
	req := httptest.NewRequest(http.MethodPost, "/generate-automation-guest", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.GenerateGuest(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if gen.input.User != nil {
		t.Error("guest generation must not carry a user")
	}
	if gen.input.GuestEmail != "lead@example.com" || gen.input.Platform != "n8n" {
		t.Errorf("unexpected input: %+v", gen.input)
	}

	var resp map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	for _, key := range []string{"automation_summary", "required_tools", "workflow_steps", "automation_json", "is_template"} {
		if _, ok := resp[key]; !ok {
			t.Errorf("response missing %q", key)
		}
	}
	if _, ok := resp["GuestEmail"]; ok {
		t.Error("guest email must not be serialized")
	}
}

func TestAutomationHandler_Generate(t *testing.T) {
	t.Parallel()

	t.Run("forwards user and ignores body email", func(t *testing.T) {
		t.Parallel()
		gen := &fakeGenerator{automation: sampleAutomation()}
		h := NewAutomationHandler(gen, nil)

		body := `{"task_description":"Sync contacts","user_email":"other@example.com"}`
		req := withUser(httptest.NewRequest(http.MethodPost, "/generate-automation", strings.NewReader(body)), testUser(model.TierPro))
		rec := httptest.NewRecorder()

		h.Generate(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		if gen.input.User == nil || gen.input.User.ID != "user-1" {
			t.Errorf("user not forwarded: %+v", gen.input.User)
		}
		if gen.input.GuestEmail != "" {
			t.Errorf("authenticated request must not set guest email, got %q", gen.input.GuestEmail)
		}
	})

	t.Run("quota exceeded", func(t *testing.T) {
		t.Parallel()
		gen := &fakeGenerator{err: quota.NewPolicy(nil).Exceeded(model.TierFree)}
		h := NewAutomationHandler(gen, nil)

		req := withUser(httptest.NewRequest(http.MethodPost, "/generate-automation", strings.NewReader(`{"task_description":"x"}`)), testUser(model.TierFree))
		rec := httptest.NewRecorder()

		h.Generate(rec, req)

		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected status 403, got %d", rec.Code)
		}
		if resp := decodeError(t, rec); resp.Code != "QUOTA_EXCEEDED" {
			t.Errorf("unexpected code: %s", resp.Code)
		}
	})

	t.Run("anonymous", func(t *testing.T) {
		t.Parallel()
		h := NewAutomationHandler(&fakeGenerator{}, nil)
		rec := httptest.NewRecorder()
		h.Generate(rec, httptest.NewRequest(http.MethodPost, "/generate-automation", strings.NewReader(`{}`)))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected status 401, got %d", rec.Code)
		}
	})
}

func TestAutomationHandler_List_EmptyIsArray(t *testing.T) {
	t.Parallel()

	h := NewAutomationHandler(&fakeGenerator{}, nil)
	req := withUser(httptest.NewRequest(http.MethodGet, "/my-automations", nil), testUser(model.TierFree))
	rec := httptest.NewRecorder()

	h.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Errorf("expected empty array, got %s", got)
	}
}

func TestAutomationHandler_Get(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		gen        *fakeGenerator
		wantStatus int
	}{
		{"found", &fakeGenerator{automation: sampleAutomation()}, http.StatusOK},
		{"not owned", &fakeGenerator{err: service.ErrAutomationNotFound}, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := NewAutomationHandler(tt.gen, nil)
			r := chi.NewRouter()
			r.Get("/my-automations/{id}", h.Get)

			req := withUser(httptest.NewRequest(http.MethodGet, "/my-automations/abc", nil), testUser(model.TierFree))
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.gen.id != "abc" || tt.gen.userID != "user-1" {
				t.Errorf("lookup = (%q, %q), want (user-1, abc)", tt.gen.userID, tt.gen.id)
			}
		})
	}
}
