package history

import (
	"log"

	"github.com/google/uuid"
	"github.com/ninesib/backend/internal/analysis"
	"github.com/ninesib/backend/internal/badges"
	"github.com/ninesib/backend/internal/models"
	"github.com/ninesib/backend/internal/topics"
)

// FreeTierAttempts is how much history a non-premium user can page through.
const FreeTierAttempts = 5

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// BuildParams carries everything needed to turn a quiz submission into an
// AttemptRecord.
type BuildParams struct {
	SetKey    string
	Title     string
	Subject   string
	StartedAt int64 // ms since epoch
	EndedAt   int64 // ms since epoch
	Questions []models.Question
	Answers   map[string]models.ChoiceKey
}

// BuildAttempt runs the tagger and the analytics engine over one submission
// and packages the result as an immutable record. It does not persist.
func BuildAttempt(p BuildParams) models.AttemptRecord {
	tagged := topics.EnsureTopics(p.Questions)

	answers := make([]models.UserAnswer, 0, len(tagged))
	for _, q := range tagged {
		ua := models.UserAnswer{QuestionID: q.ID}
		if key, ok := p.Answers[q.ID]; ok && key != "" {
			k := key
			ua.SelectedKey = &k
		}
		answers = append(answers, ua)
	}

	duration := p.EndedAt - p.StartedAt
	if duration < 0 {
		duration = 0
	}

	return models.AttemptRecord{
		ID:         uuid.NewString(),
		SetKey:     p.SetKey,
		Title:      p.Title,
		Subject:    p.Subject,
		CreatedAt:  p.EndedAt,
		DurationMs: duration,
		Answers:    p.Answers,
		Result:     analysis.Analyze(tagged, answers),
	}
}

// Submit builds, persists, and reports which badges the attempt unlocked.
// Persistence is best effort: a failed save is logged and the freshly built
// record is still returned so the session's result can be shown.
func (s *Service) Submit(userID int64, p BuildParams) models.SubmitAttemptResponse {
	before, err := s.store.GetAll(userID)
	if err != nil {
		before = []models.AttemptRecord{}
	}
	had := map[string]bool{}
	for _, b := range badges.Compute(before) {
		had[b.Code] = true
	}

	record := BuildAttempt(p)

	persisted := true
	if err := s.store.Save(userID, record); err != nil {
		log.Printf("[history] save failed for user %d: %v", userID, err)
		persisted = false
	}

	// Badges are only awarded against history that actually stuck; a lost
	// record would otherwise announce badges the next fetch can't justify.
	newBadges := []models.Badge{}
	if persisted {
		after := append([]models.AttemptRecord{record}, before...)
		for _, b := range badges.Compute(after) {
			if !had[b.Code] {
				newBadges = append(newBadges, b)
			}
		}
	}

	return models.SubmitAttemptResponse{
		Attempt:   record,
		Persisted: persisted,
		NewBadges: newBadges,
	}
}

// List returns the user's history newest-first. Free-tier users only see
// the most recent FreeTierAttempts records.
func (s *Service) List(userID int64, premium bool) (models.AttemptListResponse, error) {
	attempts, err := s.store.GetAll(userID)
	if err != nil {
		return models.AttemptListResponse{}, err
	}

	truncated := false
	if !premium && len(attempts) > FreeTierAttempts {
		attempts = attempts[:FreeTierAttempts]
		truncated = true
	}

	return models.AttemptListResponse{
		Attempts:  attempts,
		Total:     len(attempts),
		Truncated: truncated,
	}, nil
}

func (s *Service) GetByID(userID int64, id string) (models.AttemptRecord, error) {
	return s.store.GetByID(userID, id)
}

// LatestWrongDeck filters the supplied question set down to the questions
// answered wrong in the user's most recent attempt on setKey. Empty when
// there is no matching attempt or it had no wrong answers.
func (s *Service) LatestWrongDeck(userID int64, setKey string, questions []models.Question) []models.Question {
	attempts, err := s.store.GetAll(userID)
	if err != nil {
		return []models.Question{}
	}

	var latest *models.AttemptRecord
	for i := range attempts {
		if attempts[i].SetKey == setKey {
			latest = &attempts[i]
			break
		}
	}
	if latest == nil || len(latest.Result.WrongQuestionIDs) == 0 {
		return []models.Question{}
	}

	wrong := make(map[string]bool, len(latest.Result.WrongQuestionIDs))
	for _, id := range latest.Result.WrongQuestionIDs {
		wrong[id] = true
	}

	deck := []models.Question{}
	for _, q := range questions {
		if wrong[q.ID] {
			deck = append(deck, q)
		}
	}
	return deck
}

// Badges computes the user's full badge set and current daily streak.
func (s *Service) Badges(userID int64) models.BadgeListResponse {
	attempts, err := s.store.GetAll(userID)
	if err != nil {
		attempts = []models.AttemptRecord{}
	}
	return models.BadgeListResponse{
		Badges: badges.Compute(attempts),
		Streak: badges.DailyStreak(attempts),
	}
}

// Dashboard aggregates per-topic stats across the user's entire history.
func (s *Service) Dashboard(userID int64) models.TopicDashboardResponse {
	attempts, err := s.store.GetAll(userID)
	if err != nil {
		attempts = []models.AttemptRecord{}
	}
	return models.TopicDashboardResponse{
		Topics:   analysis.AggregateTopics(attempts),
		Attempts: len(attempts),
	}
}
