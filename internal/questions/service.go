package questions

import (
	"fmt"

	"github.com/ninesib/backend/internal/models"
	"github.com/ninesib/backend/internal/topics"
)

// Subjects is the fixed catalogue of subject slugs the app serves.
var Subjects = map[string]string{
	"general":    "General Aptitude",
	"thai":       "Thai Language",
	"it":         "Computing",
	"social_law": "Society & Law",
	"english":    "English",
	"math":       "Mathematics",
}

type Service struct {
	store *Store
}

func NewService(store *Store) *Service {
	return &Service{store: store}
}

func (s *Service) GetSet(setKey string) (*models.QuestionSet, error) {
	return s.store.GetSet(setKey)
}

func (s *Service) ListSets(subject string) (models.SetListResponse, error) {
	sets, err := s.store.ListSets(subject)
	if err != nil {
		return models.SetListResponse{}, err
	}
	return models.SetListResponse{Sets: sets, Total: len(sets)}, nil
}

// ServeSet returns a set stripped of correct keys and explanations.
func (s *Service) ServeSet(setKey string) (*models.QuestionSetResponse, error) {
	set, err := s.store.GetSet(setKey)
	if err != nil {
		return nil, err
	}
	served := make([]models.ServedQuestion, 0, len(set.Questions))
	for i := range set.Questions {
		served = append(served, set.Questions[i].ToServed())
	}
	return &models.QuestionSetResponse{
		SetKey:    set.SetKey,
		Subject:   set.Subject,
		Title:     set.Title,
		Year:      set.Year,
		Questions: served,
		Total:     len(served),
	}, nil
}

// Import validates an uploaded set, backfills topics on untagged questions,
// and replaces the stored set. Questions failing validation are skipped and
// reported rather than aborting the whole import.
func (s *Service) Import(env models.ImportEnvelope) (models.ImportResult, error) {
	result := models.ImportResult{TotalInPayload: len(env.Questions)}

	if env.SetKey == "" || env.Subject == "" {
		return result, fmt.Errorf("set_key and subject are required")
	}
	if _, ok := Subjects[env.Subject]; !ok {
		return result, fmt.Errorf("unknown subject %q", env.Subject)
	}
	if len(env.Questions) == 0 {
		return result, fmt.Errorf("no questions in payload")
	}

	set := &models.QuestionSet{
		SetKey:  env.SetKey,
		Subject: env.Subject,
		Title:   env.Title,
		Year:    env.Year,
	}

	seen := map[string]bool{}
	for i := range env.Questions {
		q := env.Questions[i]
		if err := q.Validate(); err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, err.Error())
			continue
		}
		if seen[q.ID] {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("duplicate question id %s", q.ID))
			continue
		}
		seen[q.ID] = true

		if len(q.Topics) == 0 {
			q.Topics = topics.InferTopicsBatch(&q)
			result.Tagged++
		}
		set.Questions = append(set.Questions, q)
	}

	if len(set.Questions) == 0 {
		return result, fmt.Errorf("no valid questions in payload")
	}

	if err := s.store.ReplaceSet(set); err != nil {
		return result, fmt.Errorf("store set %s: %w", env.SetKey, err)
	}

	result.Imported = len(set.Questions)
	return result, nil
}
