package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/autoflow/autoflow/internal/auth"
	"github.com/autoflow/autoflow/internal/handler/dto"
	"github.com/autoflow/autoflow/internal/model"
	"github.com/autoflow/autoflow/internal/service"
)

type fakeAccounts struct {
	session *service.Session
	err     error

	email    string
	password string
}

func (f *fakeAccounts) Register(_ context.Context, email, password string) (*service.Session, error) {
	f.email, f.password = email, password
	return f.session, f.err
}

func (f *fakeAccounts) Login(_ context.Context, email, password string) (*service.Session, error) {
	f.email, f.password = email, password
	return f.session, f.err
}

type fixedLimits map[model.Tier]int

func (l fixedLimits) Limit(tier model.Tier) int { return l[tier] }

type fakeGenerator struct {
	automation  *model.Automation
	automations []*model.Automation
	err         error

	input  service.GenerateInput
	userID string
	id     string
}

func (f *fakeGenerator) Generate(_ context.Context, in service.GenerateInput) (*model.Automation, error) {
	f.input = in
	return f.automation, f.err
}

func (f *fakeGenerator) ListForUser(_ context.Context, userID string) ([]*model.Automation, error) {
	f.userID = userID
	return f.automations, f.err
}

func (f *fakeGenerator) Get(_ context.Context, userID, id string) (*model.Automation, error) {
	f.userID, f.id = userID, id
	return f.automation, f.err
}

type fakeConverter struct {
	conversion  *model.Conversion
	conversions []*model.Conversion
	err         error

	input service.ConvertInput
}

func (f *fakeConverter) Convert(_ context.Context, in service.ConvertInput) (*model.Conversion, error) {
	f.input = in
	return f.conversion, f.err
}

func (f *fakeConverter) ListForUser(context.Context, string) ([]*model.Conversion, error) {
	return f.conversions, f.err
}

type fakeBilling struct {
	enabled bool
	url     string
	err     error

	tier      string
	payload   []byte
	signature string
}

func (f *fakeBilling) Enabled() bool { return f.enabled }

func (f *fakeBilling) CreateSession(_ context.Context, _ *model.User, tier string) (string, error) {
	f.tier = tier
	return f.url, f.err
}

func (f *fakeBilling) HandleWebhook(_ context.Context, payload []byte, signature string) error {
	f.payload, f.signature = payload, signature
	return f.err
}

func testUser(tier model.Tier) *model.User {
	return &model.User{ID: "user-1", Email: "owner@example.com", Tier: tier, AutomationsUsed: 1}
}

func withUser(req *http.Request, user *model.User) *http.Request {
	return req.WithContext(auth.ContextWithUser(req.Context(), user))
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var resp dto.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return resp
}
