package questions

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/ninesib/backend/internal/models"
)

// AdminChecker reports whether a user may use admin endpoints.
type AdminChecker interface {
	IsAdmin(userID int64) (bool, error)
}

type Handler struct {
	service *Service
	admin   AdminChecker
}

func NewHandler(service *Service, admin AdminChecker) *Handler {
	return &Handler{service: service, admin: admin}
}

// RegisterRoutes registers question-set endpoints. Serving endpoints go on
// the protected subrouter; the import endpoint is additionally admin-gated.
func (h *Handler) RegisterRoutes(protected *mux.Router) {
	protected.HandleFunc("/sets", h.ListSets).Methods("GET")
	protected.HandleFunc("/sets/{setKey}", h.GetSet).Methods("GET")
	protected.HandleFunc("/admin/sets/import", h.ImportSet).Methods("POST")
}

func getUserID(r *http.Request) (int64, bool) {
	uid, ok := r.Context().Value("user_id").(int64)
	return uid, ok
}

func (h *Handler) ListSets(w http.ResponseWriter, r *http.Request) {
	subject := r.URL.Query().Get("subject")
	if subject != "" {
		if _, ok := Subjects[subject]; !ok {
			writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Unknown subject"})
			return
		}
	}

	resp, err := h.service.ListSets(subject)
	if err != nil {
		log.Printf("[questions] ListSets error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list sets"})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetSet(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.ServeSet(mux.Vars(r)["setKey"])
	if err != nil {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Question set not found"})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) ImportSet(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	admin, err := h.admin.IsAdmin(userID)
	if err != nil || !admin {
		writeJSON(w, http.StatusForbidden, models.ErrorResponse{Error: "Admin access required"})
		return
	}

	var env models.ImportEnvelope
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	result, err := h.service.Import(env)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Import failed: " + err.Error()})
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
