package dto

// CheckoutRequest is the body of POST /create-checkout-session.
type CheckoutRequest struct {
	Tier string `json:"tier"`
}

// CheckoutResponse carries the hosted checkout page.
type CheckoutResponse struct {
	CheckoutURL string `json:"checkout_url"`
}

// StatusResponse acknowledges a request with no other payload.
type StatusResponse struct {
	Status string `json:"status"`
}
