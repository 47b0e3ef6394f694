package analysis

import (
	"math"
	"sort"

	"github.com/ninesib/backend/internal/models"
	"github.com/ninesib/backend/internal/topics"
)

// LevelFromAccuracy maps an accuracy percentage to one of the five mastery
// tiers. Boundaries are inclusive: exactly 90 is very_strong, exactly 40 is
// weak.
func LevelFromAccuracy(acc float64) models.MasteryLevel {
	switch {
	case acc >= 90:
		return models.MasteryVeryStrong
	case acc >= 75:
		return models.MasteryStrong
	case acc >= 60:
		return models.MasteryAverage
	case acc >= 40:
		return models.MasteryWeak
	default:
		return models.MasteryVeryWeak
	}
}

// round1 rounds to one decimal place, half away from zero.
func round1(n float64) float64 {
	return math.Round(n*10) / 10
}

type topicBucket struct {
	total   int
	correct int
	wrong   int
}

// Analyze scores one quiz run: the authoritative question set against the
// user's answers. It is a pure function of its inputs.
//
// Every question contributes to the total of each of its topics — a question
// tagged with two topics counts toward both, since it exercises both skills.
// Answers for unknown question ids, and answers with no selection, are
// skipped as "not attempted". Questions with no topics fall back to the
// catch-all, though callers are expected to have run topics.EnsureTopics
// first.
func Analyze(questions []models.Question, answers []models.UserAnswer) models.AnalysisResult {
	byID := make(map[string]*models.Question, len(questions))
	for i := range questions {
		byID[questions[i].ID] = &questions[i]
	}

	counter := make(map[string]*topicBucket)
	var topicOrder []string
	bucketFor := func(topic string) *topicBucket {
		b, ok := counter[topic]
		if !ok {
			b = &topicBucket{}
			counter[topic] = b
			topicOrder = append(topicOrder, topic)
		}
		return b
	}

	for i := range questions {
		for _, t := range topicsOf(&questions[i]) {
			bucketFor(t).total++
		}
	}

	attempted, correct := 0, 0
	wrongIDs := []string{}

	for _, a := range answers {
		q, ok := byID[a.QuestionID]
		if !ok {
			continue
		}
		if a.SelectedKey == nil {
			continue
		}
		attempted++

		right := *a.SelectedKey == q.CorrectKey
		if right {
			correct++
		} else {
			wrongIDs = append(wrongIDs, q.ID)
		}

		for _, t := range topicsOf(q) {
			b := bucketFor(t)
			if right {
				b.correct++
			} else {
				b.wrong++
			}
		}
	}

	wrong := attempted - correct
	acc := 0.0
	if attempted > 0 {
		acc = float64(correct) / float64(attempted) * 100
	}

	summary := models.AnalysisSummary{
		Total:     len(questions),
		Attempted: attempted,
		Correct:   correct,
		Wrong:     wrong,
		Accuracy:  round1(acc),
		Level:     LevelFromAccuracy(acc),
	}

	totalWrong := 0
	for _, b := range counter {
		totalWrong += b.wrong
	}

	byTopic := make([]models.TopicStat, 0, len(topicOrder))
	for _, topic := range topicOrder {
		b := counter[topic]
		byTopic = append(byTopic, topicStat(topic, b, totalWrong))
	}

	// Stable keeps input iteration order for equal focus values.
	sort.SliceStable(byTopic, func(i, j int) bool {
		return byTopic[i].FocusPercent > byTopic[j].FocusPercent
	})

	return models.AnalysisResult{
		Summary:          summary,
		ByTopic:          byTopic,
		WrongQuestionIDs: wrongIDs,
	}
}

func topicStat(topic string, b *topicBucket, totalWrong int) models.TopicStat {
	acc := 0.0
	if b.total > 0 {
		acc = float64(b.correct) / float64(b.total) * 100
	}
	errShare := 0.0
	if totalWrong > 0 {
		errShare = float64(b.wrong) / float64(totalWrong) * 100
	}
	// Focus is currently the error share unchanged. A future refinement may
	// boost low-accuracy topics.
	focus := errShare

	return models.TopicStat{
		Topic:        topic,
		Total:        b.total,
		Correct:      b.correct,
		Wrong:        b.wrong,
		Accuracy:     round1(acc),
		Level:        LevelFromAccuracy(acc),
		ErrorShare:   round1(errShare),
		FocusPercent: round1(focus),
	}
}

func topicsOf(q *models.Question) []string {
	if len(q.Topics) > 0 {
		return q.Topics
	}
	return []string{topics.CatchAll}
}
