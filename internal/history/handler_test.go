package history

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/ninesib/backend/internal/models"
)

type fakeQuestions struct{ set *models.QuestionSet }

func (f fakeQuestions) GetSet(setKey string) (*models.QuestionSet, error) {
	if f.set == nil || f.set.SetKey != setKey {
		return nil, fmt.Errorf("set %s not found", setKey)
	}
	return f.set, nil
}

type fakePremium struct{ premium bool }

func (f fakePremium) PremiumActive(int64) (bool, error) { return f.premium, nil }

func newTestRouter(premium bool) (*mux.Router, *Service) {
	svc := NewService(NewMemoryStore())
	set := &models.QuestionSet{
		SetKey:    "gen-2565",
		Subject:   "general",
		Title:     "General Knowledge 2565",
		Questions: sampleQuestions(),
	}
	h := NewHandler(svc, fakeQuestions{set: set}, fakePremium{premium: premium})

	r := mux.NewRouter()
	h.RegisterRoutes(r)
	return r, svc
}

func asUser(r *http.Request, userID int64) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), "user_id", userID))
}

func TestSubmitAttempt_EndToEnd(t *testing.T) {
	router, _ := newTestRouter(false)

	body, _ := json.Marshal(models.SubmitAttemptRequest{
		SetKey:    "gen-2565",
		StartedAt: 1700000000000,
		EndedAt:   1700000090000,
		Answers: map[string]models.ChoiceKey{
			"q1": models.ChoiceA,
			"q2": models.ChoiceD,
		},
	})

	req := asUser(httptest.NewRequest("POST", "/attempts", bytes.NewReader(body)), 1)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	var resp models.SubmitAttemptResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Persisted {
		t.Error("expected persisted=true")
	}
	if resp.Attempt.Result.Summary.Attempted != 2 {
		t.Errorf("attempted = %d, want 2", resp.Attempt.Result.Summary.Attempted)
	}
}

func TestSubmitAttempt_UnknownSet(t *testing.T) {
	router, _ := newTestRouter(false)

	body, _ := json.Marshal(models.SubmitAttemptRequest{SetKey: "missing"})
	req := asUser(httptest.NewRequest("POST", "/attempts", bytes.NewReader(body)), 1)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestSubmitAttempt_RequiresAuth(t *testing.T) {
	router, _ := newTestRouter(false)

	body, _ := json.Marshal(models.SubmitAttemptRequest{SetKey: "gen-2565"})
	req := httptest.NewRequest("POST", "/attempts", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestGetTopicDashboard_PremiumGate(t *testing.T) {
	freeRouter, _ := newTestRouter(false)
	req := asUser(httptest.NewRequest("GET", "/dashboard/topics", nil), 1)
	rec := httptest.NewRecorder()
	freeRouter.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("free tier status = %d, want 403", rec.Code)
	}

	premiumRouter, svc := newTestRouter(true)
	svc.Submit(1, sampleParams(map[string]models.ChoiceKey{"q1": models.ChoiceA}))

	req = asUser(httptest.NewRequest("GET", "/dashboard/topics", nil), 1)
	rec = httptest.NewRecorder()
	premiumRouter.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("premium status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var dash models.TopicDashboardResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &dash); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if dash.Attempts != 1 {
		t.Errorf("attempts = %d, want 1", dash.Attempts)
	}
}

func TestGetReviewDeck_FiltersWrongAnswers(t *testing.T) {
	router, svc := newTestRouter(false)
	svc.Submit(1, sampleParams(map[string]models.ChoiceKey{
		"q1": models.ChoiceA, // correct
		"q2": models.ChoiceD, // wrong
	}))

	req := asUser(httptest.NewRequest("GET", "/attempts/review-deck?set_key=gen-2565", nil), 1)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var deck models.ReviewDeckResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &deck); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if deck.Total != 1 || deck.Questions[0].ID != "q2" {
		t.Errorf("deck = %+v, want only q2", deck)
	}
}

func TestListAttempts_FreeTierTruncatedFlag(t *testing.T) {
	router, svc := newTestRouter(false)
	for i := 0; i < FreeTierAttempts+1; i++ {
		svc.Submit(1, sampleParams(map[string]models.ChoiceKey{"q1": models.ChoiceA}))
	}

	req := asUser(httptest.NewRequest("GET", "/attempts", nil), 1)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var resp models.AttemptListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Truncated || len(resp.Attempts) != FreeTierAttempts {
		t.Errorf("got %d attempts truncated=%v, want %d/true", len(resp.Attempts), resp.Truncated, FreeTierAttempts)
	}
}
