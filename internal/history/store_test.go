package history

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/ninesib/backend/internal/models"
)

func record(id string, createdAt int64) models.AttemptRecord {
	return models.AttemptRecord{
		ID:        id,
		SetKey:    "gen-2565",
		Title:     "General Knowledge 2565",
		CreatedAt: createdAt,
		Answers:   map[string]models.ChoiceKey{"q1": models.ChoiceA},
	}
}

func TestMemoryStore_NewestFirst(t *testing.T) {
	store := NewMemoryStore()
	for i := 0; i < 5; i++ {
		if err := store.Save(1, record(fmt.Sprintf("a%d", i), int64(i))); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}

	all, err := store.GetAll(1)
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("expected 5 attempts, got %d", len(all))
	}
	if all[0].ID != "a4" {
		t.Errorf("0th entry = %s, want a4 (most recently saved)", all[0].ID)
	}
	if all[4].ID != "a0" {
		t.Errorf("last entry = %s, want a0 (oldest)", all[4].ID)
	}
}

func TestMemoryStore_CapsAtMaxAttempts(t *testing.T) {
	store := NewMemoryStore()
	for i := 0; i < MaxAttempts+50; i++ {
		store.Save(1, record(fmt.Sprintf("a%d", i), int64(i)))
	}

	all, _ := store.GetAll(1)
	if len(all) != MaxAttempts {
		t.Errorf("history length = %d, want %d", len(all), MaxAttempts)
	}
	// Newest survives, oldest were dropped.
	if all[0].ID != fmt.Sprintf("a%d", MaxAttempts+49) {
		t.Errorf("0th entry = %s, want the last saved record", all[0].ID)
	}
}

func TestMemoryStore_GetByIDRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	saved := record("abc-123", 1700000000000)
	saved.DurationMs = 90000
	saved.Result = models.AnalysisResult{
		Summary:          models.AnalysisSummary{Total: 1, Attempted: 1, Correct: 1, Accuracy: 100, Level: models.MasteryVeryStrong},
		ByTopic:          []models.TopicStat{{Topic: "Percentages", Total: 1, Correct: 1, Accuracy: 100, Level: models.MasteryVeryStrong}},
		WrongQuestionIDs: []string{},
	}

	if err := store.Save(7, saved); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.GetByID(7, "abc-123")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !reflect.DeepEqual(got, saved) {
		t.Errorf("round trip mismatch:\ngot:  %+v\nwant: %+v", got, saved)
	}
}

func TestMemoryStore_GetByIDNotFound(t *testing.T) {
	store := NewMemoryStore()
	if _, err := store.GetByID(1, "missing"); err != ErrNotFound {
		t.Errorf("GetByID(missing) error = %v, want ErrNotFound", err)
	}
}

func TestMemoryStore_UsersAreIsolated(t *testing.T) {
	store := NewMemoryStore()
	store.Save(1, record("mine", 1))

	other, _ := store.GetAll(2)
	if len(other) != 0 {
		t.Errorf("user 2 sees user 1's attempts: %v", other)
	}
	if _, err := store.GetByID(2, "mine"); err != ErrNotFound {
		t.Errorf("cross-user GetByID error = %v, want ErrNotFound", err)
	}
}
