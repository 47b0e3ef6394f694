package payments

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/ninesib/backend/internal/models"
)

type Handler struct {
	service *Service
	store   *Store
}

func NewHandler(service *Service, store *Store) *Handler {
	return &Handler{service: service, store: store}
}

// RegisterRoutes registers checkout and premium endpoints on the protected
// subrouter. The webhook endpoint must be registered on the public router
// (RegisterWebhook) — the gateway does not hold a user token.
func (h *Handler) RegisterRoutes(protected *mux.Router) {
	protected.HandleFunc("/checkout/premium", h.PremiumCheckout).Methods("POST")
	protected.HandleFunc("/checkout/manual", h.ManualCheckout).Methods("POST")
	protected.HandleFunc("/payments", h.ListMyPayments).Methods("GET")
	protected.HandleFunc("/payments/status", h.UpdateStatus).Methods("POST")
	protected.HandleFunc("/premium/status", h.PremiumStatus).Methods("GET")

	protected.HandleFunc("/admin/payments/pending", h.ListPendingPayments).Methods("GET")
	protected.HandleFunc("/admin/payments/verify", h.VerifyPayment).Methods("POST")
	protected.HandleFunc("/admin/premium", h.SetPremium).Methods("POST")
}

func (h *Handler) RegisterWebhook(public *mux.Router) {
	public.HandleFunc("/webhooks/payment", h.Webhook).Methods("POST")
}

func getUserID(r *http.Request) (int64, bool) {
	uid, ok := r.Context().Value("user_id").(int64)
	return uid, ok
}

func (h *Handler) requireAdmin(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return 0, false
	}
	admin, err := h.store.IsAdmin(userID)
	if err != nil || !admin {
		writeJSON(w, http.StatusForbidden, models.ErrorResponse{Error: "Admin access required"})
		return 0, false
	}
	return userID, true
}

func (h *Handler) PremiumCheckout(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	var req models.PremiumCheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	resp, err := h.service.PremiumCheckout(r.Context(), userID, req)
	if err != nil {
		log.Printf("[payments] checkout failed for user %d: %v", userID, err)
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Checkout failed: " + err.Error()})
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) ManualCheckout(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	var req models.ManualCheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	resp, err := h.service.ManualCheckout(userID, req)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) ListMyPayments(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	payments, err := h.store.ListByUser(userID)
	if err != nil {
		log.Printf("[payments] ListMyPayments error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list payments"})
		return
	}

	writeJSON(w, http.StatusOK, models.PaymentListResponse{Payments: payments, Total: len(payments)})
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	var req models.UpdatePaymentStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if err := h.service.UpdateStatus(userID, req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) PremiumStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	resp, err := h.store.PremiumStatus(userID)
	if err != nil {
		log.Printf("[payments] PremiumStatus error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to get premium status"})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Webhook receives gateway events. Signature failures are 401; a missing
// payment record is 404 so the gateway retries after the checkout record
// lands.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Failed to read body"})
		return
	}

	signature := r.Header.Get("X-Payment-Signature")
	if signature == "" {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Missing signature"})
		return
	}

	if err := h.service.HandleWebhook(body, signature); err != nil {
		log.Printf("[payments] webhook error: %v", err)
		switch {
		case errors.Is(err, ErrNotFound):
			writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Payment not found"})
		case err.Error() == "invalid webhook signature":
			writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Invalid signature"})
		default:
			writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Webhook processing failed"})
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}

func (h *Handler) ListPendingPayments(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireAdmin(w, r); !ok {
		return
	}

	payments, err := h.store.ListPendingVerification()
	if err != nil {
		log.Printf("[payments] ListPendingPayments error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list payments"})
		return
	}

	writeJSON(w, http.StatusOK, models.PaymentListResponse{Payments: payments, Total: len(payments)})
}

func (h *Handler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireAdmin(w, r); !ok {
		return
	}

	var req models.VerifyPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if err := h.service.VerifyManualPayment(req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) SetPremium(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireAdmin(w, r); !ok {
		return
	}

	var req models.SetPremiumRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if err := h.service.SetPremium(req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
