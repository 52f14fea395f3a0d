package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/autoflow/autoflow/internal/billing"
	"github.com/autoflow/autoflow/internal/handler/dto"
	"github.com/autoflow/autoflow/internal/model"
)

func TestBillingHandler_CreateCheckoutSession(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		b := &fakeBilling{enabled: true, url: "https://checkout.stripe.com/c/pay/cs_test"}
		h := NewBillingHandler(b, nil)

		req := withUser(httptest.NewRequest(http.MethodPost, "/create-checkout-session", strings.NewReader(`{"tier":"pro"}`)), testUser(model.TierFree))
		rec := httptest.NewRecorder()

		h.CreateCheckoutSession(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		var resp dto.CheckoutResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.CheckoutURL != b.url || b.tier != "pro" {
			t.Errorf("unexpected checkout: %+v tier=%q", resp, b.tier)
		}
	})

	tests := []struct {
		name       string
		billing    *fakeBilling
		wantStatus int
		wantCode   string
	}{
		{"not configured", &fakeBilling{}, http.StatusServiceUnavailable, "BILLING_UNAVAILABLE"},
		{"invalid tier", &fakeBilling{enabled: true, err: billing.ErrInvalidTier}, http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := NewBillingHandler(tt.billing, nil)
			req := withUser(httptest.NewRequest(http.MethodPost, "/create-checkout-session", strings.NewReader(`{"tier":"enterprise"}`)), testUser(model.TierFree))
			rec := httptest.NewRecorder()

			h.CreateCheckoutSession(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if resp := decodeError(t, rec); resp.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", resp.Code, tt.wantCode)
			}
		})
	}
}

func TestBillingHandler_Webhook(t *testing.T) {
	t.Parallel()

	t.Run("forwards payload and signature", func(t *testing.T) {
		t.Parallel()
		b := &fakeBilling{enabled: true}
		h := NewBillingHandler(b, nil)

		req := httptest.NewRequest(http.MethodPost, "/stripe/webhook", strings.NewReader(`{"type":"ping"}`))
		req.Header.Set("Stripe-Signature", "t=1,v1=abc")
		rec := httptest.NewRecorder()

		h.Webhook(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		if string(b.payload) != `{"type":"ping"}` || b.signature != "t=1,v1=abc" {
			t.Errorf("unexpected forward: %q %q", b.payload, b.signature)
		}
		var resp dto.StatusResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil || resp.Status != "ok" {
			t.Errorf("unexpected body: %+v, %v", resp, err)
		}
	})

	t.Run("bad signature", func(t *testing.T) {
		t.Parallel()
		h := NewBillingHandler(&fakeBilling{enabled: true, err: billing.ErrInvalidSignature}, nil)

		rec := httptest.NewRecorder()
		h.Webhook(rec, httptest.NewRequest(http.MethodPost, "/stripe/webhook", strings.NewReader(`{}`)))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rec.Code)
		}
	})
}
