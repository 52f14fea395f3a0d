package service

import (
	"context"
	"errors"
	"sync"

	"github.com/autoflow/autoflow/internal/llm"
	"github.com/autoflow/autoflow/internal/model"
	"github.com/autoflow/autoflow/internal/repository"
)

var errStoreDown = errors.New("store down")

type fakeStore struct {
	mu          sync.Mutex
	automations []*model.Automation
	leads       []*model.Lead
	conversions []*model.Conversion
	used        map[string]int
	leadErr     error
	createErr   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{used: make(map[string]int)}
}

func (f *fakeStore) CreateAutomation(_ context.Context, a *model.Automation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.automations = append(f.automations, a)
	return nil
}

func (f *fakeStore) CreateAutomationWithUsage(_ context.Context, a *model.Automation, limit int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if f.used[*a.UserID] >= limit {
		return repository.ErrUsageLimitReached
	}
	f.used[*a.UserID]++
	f.automations = append(f.automations, a)
	return nil
}

func (f *fakeStore) ListAutomationsByUser(_ context.Context, userID string) ([]*model.Automation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Automation
	for i := len(f.automations) - 1; i >= 0; i-- {
		a := f.automations[i]
		if a.UserID != nil && *a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeStore) GetAutomationForUser(_ context.Context, userID, id string) (*model.Automation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.automations {
		if a.ID == id && a.UserID != nil && *a.UserID == userID {
			return a, nil
		}
	}
	return nil, repository.ErrAutomationNotFound
}

func (f *fakeStore) CreateLead(_ context.Context, lead *model.Lead) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.leadErr != nil {
		return f.leadErr
	}
	f.leads = append(f.leads, lead)
	return nil
}

func (f *fakeStore) CreateConversion(_ context.Context, c *model.Conversion) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.conversions = append(f.conversions, c)
	return nil
}

func (f *fakeStore) ListConversionsByUser(_ context.Context, userID string) ([]*model.Conversion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Conversion
	for _, c := range f.conversions {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

// fakeRouter answers every completion with reply and counts calls.
type fakeRouter struct {
	mu          sync.Mutex
	reply       string
	err         error
	unavailable bool
	calls       int
	last        llm.Request
}

func (f *fakeRouter) Complete(_ context.Context, _ model.AIModel, req llm.Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.last = req
	return f.reply, f.err
}

func (f *fakeRouter) Available(model.AIModel) bool {
	return !f.unavailable
}

func (f *fakeRouter) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

const makeBlueprint = `{"name":"Form to Sheet","flow":[{"id":1,"module":"webhook:CustomWebHook"},{"id":2,"module":"google-sheets:AddRow"}],"metadata":{"instant":true}}`

const n8nBlueprint = `{"name":"Form to Sheet","nodes":[{"name":"Webhook","type":"n8n-nodes-base.webhook"},{"name":"Add Row","type":"n8n-nodes-base.googleSheets"}],"connections":{"Webhook":{"main":[[{"node":"Add Row","type":"main","index":0}]]}}}`

func generationReply(blueprintJSON string) string {
	return "🚀 Automation Summary: Saves form leads to a sheet\n\n" +
		"📦 Required Apps:\n- Webhook\n- Google Sheets\n\n" +
		"📊 Automation Workflow Steps:\n1. Receive the form\n2. Append a row\n\n" +
		"🧠 JSON Automation Template:\n```json\n" + blueprintJSON + "\n```\n\n" +
		"📋 Beginner Setup Instructions:\nConnect your Google account.\n\n" +
		"🎁 Bonus Assets:\nAdd a header row first.\n"
}

func conversionReply(blueprintJSON string) string {
	return "```json\n" + blueprintJSON + "\n```\n\nCONVERSION NOTES:\nWebhook mapped one to one.\n"
}

type fakeUsers struct {
	mu      sync.Mutex
	byID    map[string]*model.User
	byEmail map[string]*model.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: make(map[string]*model.User), byEmail: make(map[string]*model.User)}
}

func (f *fakeUsers) CreateUser(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byEmail[u.Email]; ok {
		return repository.ErrEmailExists
	}
	f.byID[u.ID] = u
	f.byEmail[u.Email] = u
	return nil
}

func (f *fakeUsers) GetUserByID(_ context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, repository.ErrUserNotFound
}

func (f *fakeUsers) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, repository.ErrUserNotFound
}
