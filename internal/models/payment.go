package models

import "time"

// ── Payment Types ────────────────────────────────────────

type PaymentStatus string

const (
	PaymentPending             PaymentStatus = "pending"
	PaymentSuccessful          PaymentStatus = "successful"
	PaymentFailed              PaymentStatus = "failed"
	PaymentExpired             PaymentStatus = "expired"
	PaymentPendingVerification PaymentStatus = "pending_verification"
	PaymentVerified            PaymentStatus = "verified"
	PaymentRejected            PaymentStatus = "rejected"
)

// Payment is one subscription payment record. ChargeID is the gateway's
// charge identifier for card payments, or a generated "promptpay_<ref>"
// value for the manual bank-transfer flow.
type Payment struct {
	ID            int64         `json:"id"`
	UserID        int64         `json:"user_id"`
	ChargeID      string        `json:"charge_id"`
	AmountSatang  int64         `json:"amount_satang"`
	Currency      string        `json:"currency"`
	Status        PaymentStatus `json:"status"`
	Description   string        `json:"description"`
	PremiumMonths int           `json:"premium_months"`
	SlipURL       *string       `json:"slip_url,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// ── Request Types ────────────────────────────────────────

type PremiumCheckoutRequest struct {
	Token       string `json:"token"` // card token from the gateway's client SDK
	AmountSatang int64 `json:"amount_satang"`
	Months      int    `json:"months"`
	Description string `json:"description,omitempty"`
}

type ManualCheckoutRequest struct {
	AmountSatang  int64  `json:"amount_satang"`
	Months        int    `json:"months"`
	PaymentMethod string `json:"payment_method"`
}

type UpdatePaymentStatusRequest struct {
	PaymentID int64         `json:"payment_id"`
	Status    PaymentStatus `json:"status"`
	SlipURL   string        `json:"slip_url,omitempty"`
}

type VerifyPaymentRequest struct {
	PaymentID int64 `json:"payment_id"`
	Approve   bool  `json:"approve"`
}

type SetPremiumRequest struct {
	UserID int64 `json:"user_id"`
	Months int   `json:"months"` // 0 revokes premium
}

// ── Response Types ───────────────────────────────────────

type PremiumCheckoutResponse struct {
	PaymentID int64         `json:"payment_id"`
	ChargeID  string        `json:"charge_id"`
	Status    PaymentStatus `json:"status"`
	Premium   bool          `json:"premium"`
}

type ManualCheckoutResponse struct {
	PaymentID     int64    `json:"payment_id"`
	Reference     string   `json:"reference"`
	AmountSatang  int64    `json:"amount_satang"`
	PaymentMethod string   `json:"payment_method"`
	Instructions  []string `json:"instructions"`
}

type PremiumStatusResponse struct {
	Premium   bool       `json:"premium"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

type PaymentListResponse struct {
	Payments []Payment `json:"payments"`
	Total    int       `json:"total"`
}

// ── Webhook Types ────────────────────────────────────────

// WebhookEvent is the subset of the gateway's event envelope this app reads.
// The gateway's full payload shape is an external contract; anything beyond
// these fields is ignored.
type WebhookEvent struct {
	Key  string        `json:"key"`
	Data WebhookCharge `json:"data"`
}

type WebhookCharge struct {
	ID       string            `json:"id"`
	Status   PaymentStatus     `json:"status"`
	Metadata map[string]string `json:"metadata,omitempty"`
}
