package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/ninesib/backend/internal/models"
)

// validMonths are the premium subscription lengths on offer.
var validMonths = map[int]bool{1: true, 3: true, 12: true}

type Service struct {
	store         *Store
	gateway       Gateway
	webhookSecret []byte
}

func NewService(store *Store, gateway Gateway, webhookSecret string) *Service {
	return &Service{store: store, gateway: gateway, webhookSecret: []byte(webhookSecret)}
}

// ── Card Checkout ────────────────────────────────────────

func (s *Service) PremiumCheckout(ctx context.Context, userID int64, req models.PremiumCheckoutRequest) (*models.PremiumCheckoutResponse, error) {
	if req.Token == "" || req.AmountSatang <= 0 {
		return nil, fmt.Errorf("token and amount are required")
	}
	if !validMonths[req.Months] {
		return nil, fmt.Errorf("months must be 1, 3, or 12")
	}

	description := req.Description
	if description == "" {
		description = fmt.Sprintf("Premium subscription - %d months", req.Months)
	}

	charge, err := s.gateway.CreateCharge(ctx, ChargeRequest{
		AmountSatang: req.AmountSatang,
		Currency:     "thb",
		CardToken:    req.Token,
		Description:  description,
		Metadata: map[string]string{
			"user_id":        strconv.FormatInt(userID, 10),
			"premium_months": strconv.Itoa(req.Months),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create charge: %w", err)
	}

	payment := &models.Payment{
		UserID:        userID,
		ChargeID:      charge.ID,
		AmountSatang:  req.AmountSatang,
		Currency:      "thb",
		Status:        charge.Status,
		Description:   description,
		PremiumMonths: req.Months,
	}
	if err := s.store.CreatePayment(payment); err != nil {
		return nil, err
	}

	// A synchronously successful charge activates premium right away; the
	// webhook confirms (or corrects) later.
	premium := false
	if charge.Status == models.PaymentSuccessful {
		if err := s.store.ActivatePremium(userID, req.Months); err != nil {
			log.Printf("[payments] failed to activate premium for user %d: %v", userID, err)
		} else {
			premium = true
		}
	}

	return &models.PremiumCheckoutResponse{
		PaymentID: payment.ID,
		ChargeID:  charge.ID,
		Status:    charge.Status,
		Premium:   premium,
	}, nil
}

// ── Manual (PromptPay) Checkout ──────────────────────────

// GenerateReference produces a short transfer reference the user quotes
// when paying by bank transfer.
func GenerateReference(userID int64) string {
	return fmt.Sprintf("NS%d-%s", userID, strings.ToUpper(uuid.NewString()[:8]))
}

func (s *Service) ManualCheckout(userID int64, req models.ManualCheckoutRequest) (*models.ManualCheckoutResponse, error) {
	if req.PaymentMethod != "promptpay" {
		return nil, fmt.Errorf("payment method %q not supported", req.PaymentMethod)
	}
	if req.AmountSatang <= 0 {
		return nil, fmt.Errorf("amount is required")
	}
	if !validMonths[req.Months] {
		return nil, fmt.Errorf("months must be 1, 3, or 12")
	}

	reference := GenerateReference(userID)
	payment := &models.Payment{
		UserID:        userID,
		ChargeID:      "promptpay_" + reference,
		AmountSatang:  req.AmountSatang,
		Currency:      "thb",
		Status:        models.PaymentPendingVerification,
		Description:   fmt.Sprintf("Premium subscription via PromptPay - Ref: %s", reference),
		PremiumMonths: req.Months,
	}
	if err := s.store.CreatePayment(payment); err != nil {
		return nil, err
	}

	baht := float64(req.AmountSatang) / 100
	return &models.ManualCheckoutResponse{
		PaymentID:     payment.ID,
		Reference:     reference,
		AmountSatang:  req.AmountSatang,
		PaymentMethod: "promptpay",
		Instructions: []string{
			"Scan the QR code or transfer via PromptPay",
			fmt.Sprintf("Transfer %.2f THB", baht),
			fmt.Sprintf("Quote reference: %s", reference),
			"Upload your transfer slip, then wait 1-24 hours for approval",
		},
	}, nil
}

// UpdateStatus lets a user attach a slip and move their own manual payment
// between client-driven states. Ownership is enforced; terminal admin
// states are not reachable from here.
func (s *Service) UpdateStatus(userID int64, req models.UpdatePaymentStatusRequest) error {
	payment, err := s.store.GetByID(req.PaymentID)
	if err != nil {
		return err
	}
	if payment.UserID != userID {
		return fmt.Errorf("payment %d does not belong to user %d", req.PaymentID, userID)
	}
	switch req.Status {
	case models.PaymentPendingVerification, models.PaymentExpired:
	default:
		return fmt.Errorf("status %q cannot be set by the payer", req.Status)
	}

	var slip *string
	if req.SlipURL != "" {
		slip = &req.SlipURL
	}
	return s.store.UpdateStatus(req.PaymentID, req.Status, slip)
}

// ── Webhook Reconciliation ───────────────────────────────

// VerifySignature checks the gateway's HMAC-SHA256 hex signature over the
// raw body.
func VerifySignature(payload []byte, signature string, secret []byte) bool {
	if len(secret) == 0 {
		return false
	}
	mac := hmac.New(sha256.New, secret)
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// HandleWebhook reconciles a gateway event against the local payment
// record: the payment's status follows the charge, and a successful charge
// activates premium for the months recorded at checkout (the event metadata
// wins if present).
func (s *Service) HandleWebhook(payload []byte, signature string) error {
	if !VerifySignature(payload, signature, s.webhookSecret) {
		return fmt.Errorf("invalid webhook signature")
	}

	var event models.WebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("decode webhook event: %w", err)
	}
	log.Printf("[payments] webhook event: %s charge=%s status=%s", event.Key, event.Data.ID, event.Data.Status)

	if event.Key != "charge.complete" {
		// Other event types are acknowledged and ignored.
		return nil
	}

	payment, err := s.store.GetByChargeID(event.Data.ID)
	if err != nil {
		return fmt.Errorf("charge %s: %w", event.Data.ID, err)
	}

	if err := s.store.UpdateStatus(payment.ID, event.Data.Status, nil); err != nil {
		return err
	}

	if event.Data.Status == models.PaymentSuccessful {
		months := payment.PremiumMonths
		if m, err := strconv.Atoi(event.Data.Metadata["premium_months"]); err == nil && m > 0 {
			months = m
		}
		if months <= 0 {
			months = 1
		}
		if err := s.store.ActivatePremium(payment.UserID, months); err != nil {
			return err
		}
	}

	return nil
}

// ── Admin Operations ─────────────────────────────────────

// VerifyManualPayment approves or rejects a pending bank-transfer payment.
// Approval activates premium for the months recorded at checkout.
func (s *Service) VerifyManualPayment(req models.VerifyPaymentRequest) error {
	payment, err := s.store.GetByID(req.PaymentID)
	if err != nil {
		return err
	}
	if payment.Status != models.PaymentPendingVerification {
		return fmt.Errorf("payment %d is not awaiting verification", req.PaymentID)
	}

	if !req.Approve {
		return s.store.UpdateStatus(payment.ID, models.PaymentRejected, nil)
	}

	if err := s.store.UpdateStatus(payment.ID, models.PaymentVerified, nil); err != nil {
		return err
	}
	months := payment.PremiumMonths
	if months <= 0 {
		months = 1
	}
	return s.store.ActivatePremium(payment.UserID, months)
}

// SetPremium grants (months > 0) or revokes (months == 0) premium directly.
func (s *Service) SetPremium(req models.SetPremiumRequest) error {
	if req.Months <= 0 {
		return s.store.RevokePremium(req.UserID)
	}
	return s.store.ActivatePremium(req.UserID, req.Months)
}
