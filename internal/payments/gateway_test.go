package payments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ninesib/backend/internal/models"
)

func TestMockGateway_ApprovesCharge(t *testing.T) {
	g := NewMockGateway()

	charge, err := g.CreateCharge(context.Background(), ChargeRequest{
		AmountSatang: 19900,
		Currency:     "thb",
		CardToken:    "tok_test",
	})
	if err != nil {
		t.Fatalf("CreateCharge: %v", err)
	}
	if charge.Status != models.PaymentSuccessful {
		t.Errorf("status = %q, want successful", charge.Status)
	}
	if !strings.HasPrefix(charge.ID, "chrg_mock_") {
		t.Errorf("charge id = %q, want chrg_mock_ prefix", charge.ID)
	}
}

func TestMockGateway_RequiresToken(t *testing.T) {
	g := NewMockGateway()
	if _, err := g.CreateCharge(context.Background(), ChargeRequest{AmountSatang: 100}); err == nil {
		t.Error("expected error for missing card token")
	}
}

func TestHTTPGateway_CreateCharge(t *testing.T) {
	var gotPath, gotUser string
	var gotBody map[string]interface{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUser, _, _ = r.BasicAuth()
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]string{"id": "chrg_live_1", "status": "pending"})
	}))
	defer srv.Close()

	g := NewHTTPGateway(srv.URL, "sk_test")
	charge, err := g.CreateCharge(context.Background(), ChargeRequest{
		AmountSatang: 19900,
		Currency:     "thb",
		CardToken:    "tok_abc",
		Description:  "Premium subscription - 1 months",
	})
	if err != nil {
		t.Fatalf("CreateCharge: %v", err)
	}

	if gotPath != "/charges" {
		t.Errorf("path = %q, want /charges", gotPath)
	}
	if gotUser != "sk_test" {
		t.Errorf("basic auth user = %q, want sk_test", gotUser)
	}
	if gotBody["card"] != "tok_abc" {
		t.Errorf("card = %v, want tok_abc", gotBody["card"])
	}
	if charge.ID != "chrg_live_1" || charge.Status != models.PaymentPending {
		t.Errorf("charge = %+v, want chrg_live_1/pending", charge)
	}
}

func TestHTTPGateway_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	g := NewHTTPGateway(srv.URL, "sk_bad")
	if _, err := g.CreateCharge(context.Background(), ChargeRequest{CardToken: "tok"}); err == nil {
		t.Error("expected error for 401 from gateway")
	}
}
