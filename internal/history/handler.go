package history

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/ninesib/backend/internal/models"
)

// QuestionSource supplies the authoritative question set for a set key.
type QuestionSource interface {
	GetSet(setKey string) (*models.QuestionSet, error)
}

// PremiumChecker reports whether a user currently holds premium access.
type PremiumChecker interface {
	PremiumActive(userID int64) (bool, error)
}

type Handler struct {
	service   *Service
	questions QuestionSource
	premium   PremiumChecker
}

func NewHandler(service *Service, questions QuestionSource, premium PremiumChecker) *Handler {
	return &Handler{service: service, questions: questions, premium: premium}
}

// RegisterRoutes registers attempt, badge, and dashboard endpoints on the
// protected subrouter.
func (h *Handler) RegisterRoutes(protected *mux.Router) {
	protected.HandleFunc("/attempts", h.SubmitAttempt).Methods("POST")
	protected.HandleFunc("/attempts", h.ListAttempts).Methods("GET")
	protected.HandleFunc("/attempts/review-deck", h.GetReviewDeck).Methods("GET")
	protected.HandleFunc("/attempts/{attemptID}", h.GetAttempt).Methods("GET")

	protected.HandleFunc("/badges", h.GetBadges).Methods("GET")
	protected.HandleFunc("/dashboard/topics", h.GetTopicDashboard).Methods("GET")
}

func getUserID(r *http.Request) (int64, bool) {
	uid, ok := r.Context().Value("user_id").(int64)
	return uid, ok
}

func (h *Handler) SubmitAttempt(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	var req models.SubmitAttemptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if req.SetKey == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "set_key is required"})
		return
	}

	set, err := h.questions.GetSet(req.SetKey)
	if err != nil {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Question set not found"})
		return
	}

	resp := h.service.Submit(userID, BuildParams{
		SetKey:    req.SetKey,
		Title:     set.Title,
		Subject:   set.Subject,
		StartedAt: req.StartedAt,
		EndedAt:   req.EndedAt,
		Questions: set.Questions,
		Answers:   req.Answers,
	})

	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) ListAttempts(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	premium, err := h.premium.PremiumActive(userID)
	if err != nil {
		log.Printf("[history] premium check failed for user %d: %v", userID, err)
		premium = false
	}

	resp, err := h.service.List(userID, premium)
	if err != nil {
		log.Printf("[history] ListAttempts error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list attempts"})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetAttempt(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	attempt, err := h.service.GetByID(userID, mux.Vars(r)["attemptID"])
	if err != nil {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Attempt not found"})
		return
	}

	writeJSON(w, http.StatusOK, attempt)
}

func (h *Handler) GetReviewDeck(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	setKey := r.URL.Query().Get("set_key")
	if setKey == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "set_key is required"})
		return
	}

	set, err := h.questions.GetSet(setKey)
	if err != nil {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Question set not found"})
		return
	}

	deck := h.service.LatestWrongDeck(userID, setKey, set.Questions)
	served := make([]models.ServedQuestion, 0, len(deck))
	for i := range deck {
		served = append(served, deck[i].ToServed())
	}

	writeJSON(w, http.StatusOK, models.ReviewDeckResponse{
		SetKey:    setKey,
		Questions: served,
		Total:     len(served),
	})
}

func (h *Handler) GetBadges(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	writeJSON(w, http.StatusOK, h.service.Badges(userID))
}

func (h *Handler) GetTopicDashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	premium, err := h.premium.PremiumActive(userID)
	if err != nil {
		log.Printf("[history] premium check failed for user %d: %v", userID, err)
		premium = false
	}
	if !premium {
		writeJSON(w, http.StatusForbidden, models.ErrorResponse{Error: "Topic dashboard requires premium"})
		return
	}

	writeJSON(w, http.StatusOK, h.service.Dashboard(userID))
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
