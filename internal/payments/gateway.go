package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/ninesib/backend/internal/models"
)

// Gateway is the card-payment processor boundary. The processor's protocol
// is an external contract; this app only needs to create a charge and read
// back its id and status.
type Gateway interface {
	CreateCharge(ctx context.Context, req ChargeRequest) (*Charge, error)
}

type ChargeRequest struct {
	AmountSatang int64
	Currency     string
	CardToken    string
	Description  string
	Metadata     map[string]string
}

type Charge struct {
	ID     string
	Status models.PaymentStatus
}

// NewGateway picks the gateway implementation from the environment, the
// same way the generator picks its client.
func NewGateway() Gateway {
	if os.Getenv("MOCK_GATEWAY") == "true" || os.Getenv("PAYMENT_GATEWAY_URL") == "" {
		log.Println("Payments using mock gateway")
		return NewMockGateway()
	}
	return NewHTTPGateway(os.Getenv("PAYMENT_GATEWAY_URL"), os.Getenv("PAYMENT_GATEWAY_SECRET"))
}

// ── HTTP Gateway ─────────────────────────────────────────

type HTTPGateway struct {
	baseURL   string
	secretKey string
	client    *http.Client
}

func NewHTTPGateway(baseURL, secretKey string) *HTTPGateway {
	return &HTTPGateway{
		baseURL:   baseURL,
		secretKey: secretKey,
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (g *HTTPGateway) CreateCharge(ctx context.Context, req ChargeRequest) (*Charge, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"amount":      req.AmountSatang,
		"currency":    req.Currency,
		"card":        req.CardToken,
		"description": req.Description,
		"metadata":    req.Metadata,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal charge request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", g.baseURL+"/charges", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build charge request: %w", err)
	}
	httpReq.SetBasicAuth(g.secretKey, "")
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("create charge: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("gateway returned %d", resp.StatusCode)
	}

	var body struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode charge response: %w", err)
	}

	return &Charge{ID: body.ID, Status: models.PaymentStatus(body.Status)}, nil
}

// ── Mock Gateway ─────────────────────────────────────────

// MockGateway approves every charge immediately. Used in tests and local
// development.
type MockGateway struct{}

func NewMockGateway() *MockGateway {
	return &MockGateway{}
}

func (g *MockGateway) CreateCharge(_ context.Context, req ChargeRequest) (*Charge, error) {
	if req.CardToken == "" {
		return nil, fmt.Errorf("card token is required")
	}
	return &Charge{
		ID:     "chrg_mock_" + uuid.NewString()[:8],
		Status: models.PaymentSuccessful,
	}, nil
}
