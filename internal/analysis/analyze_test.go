package analysis

import (
	"fmt"
	"math"
	"testing"

	"github.com/ninesib/backend/internal/models"
)

func question(id, topic string, correct models.ChoiceKey) models.Question {
	return models.Question{
		ID:     id,
		Text:   "question " + id,
		Topics: []string{topic},
		Choices: []models.Choice{
			{Key: models.ChoiceA, Label: "a"},
			{Key: models.ChoiceB, Label: "b"},
			{Key: models.ChoiceC, Label: "c"},
			{Key: models.ChoiceD, Label: "d"},
		},
		CorrectKey: correct,
	}
}

func answer(id string, key models.ChoiceKey) models.UserAnswer {
	return models.UserAnswer{QuestionID: id, SelectedKey: &key}
}

func unanswered(id string) models.UserAnswer {
	return models.UserAnswer{QuestionID: id}
}

func TestAnalyze_FourQuestionScenario(t *testing.T) {
	questions := []models.Question{
		question("q1", "T1", models.ChoiceA),
		question("q2", "T2", models.ChoiceB),
		question("q3", "T3", models.ChoiceC),
		question("q4", "T4", models.ChoiceD),
	}
	answers := []models.UserAnswer{
		answer("q1", models.ChoiceA), // correct
		answer("q2", models.ChoiceA), // wrong
		unanswered("q3"),
		answer("q4", models.ChoiceD), // correct
	}

	res := Analyze(questions, answers)

	s := res.Summary
	if s.Total != 4 || s.Attempted != 3 || s.Correct != 2 || s.Wrong != 1 {
		t.Fatalf("summary = total %d attempted %d correct %d wrong %d, want 4/3/2/1",
			s.Total, s.Attempted, s.Correct, s.Wrong)
	}
	if s.Accuracy != 66.7 {
		t.Errorf("accuracy = %v, want 66.7", s.Accuracy)
	}
	if s.Level != models.MasteryAverage {
		t.Errorf("level = %q, want %q", s.Level, models.MasteryAverage)
	}

	if len(res.ByTopic) != 4 {
		t.Fatalf("expected 4 topic stats, got %d", len(res.ByTopic))
	}
	if res.ByTopic[0].Topic != "T2" {
		t.Errorf("top focus topic = %q, want T2", res.ByTopic[0].Topic)
	}
	for _, ts := range res.ByTopic {
		want := 0.0
		if ts.Topic == "T2" {
			want = 100.0
		}
		if ts.ErrorShare != want {
			t.Errorf("topic %s errorShare = %v, want %v", ts.Topic, ts.ErrorShare, want)
		}
	}

	if len(res.WrongQuestionIDs) != 1 || res.WrongQuestionIDs[0] != "q2" {
		t.Errorf("wrongQuestionIds = %v, want [q2]", res.WrongQuestionIDs)
	}
}

func TestAnalyze_CorrectPlusWrongEqualsAttempted(t *testing.T) {
	// Vary question counts and answer patterns; the identity must hold in
	// every case.
	for n := 0; n <= 10; n++ {
		questions := make([]models.Question, n)
		answers := make([]models.UserAnswer, 0, n)
		for i := 0; i < n; i++ {
			id := fmt.Sprintf("q%d", i)
			questions[i] = question(id, fmt.Sprintf("T%d", i%3), models.ChoiceA)
			switch i % 3 {
			case 0:
				answers = append(answers, answer(id, models.ChoiceA))
			case 1:
				answers = append(answers, answer(id, models.ChoiceB))
			default:
				answers = append(answers, unanswered(id))
			}
		}

		s := Analyze(questions, answers).Summary
		if s.Correct+s.Wrong != s.Attempted {
			t.Errorf("n=%d: correct %d + wrong %d != attempted %d", n, s.Correct, s.Wrong, s.Attempted)
		}
	}
}

func TestAnalyze_TopicCountsBoundedByTotal(t *testing.T) {
	questions := []models.Question{
		question("q1", "T1", models.ChoiceA),
		question("q2", "T1", models.ChoiceB),
		question("q3", "T2", models.ChoiceC),
	}
	// q2 unanswered: T1 has total 2 but only 1 attempted.
	answers := []models.UserAnswer{
		answer("q1", models.ChoiceA),
		unanswered("q2"),
		answer("q3", models.ChoiceD),
	}

	res := Analyze(questions, answers)
	for _, ts := range res.ByTopic {
		if ts.Correct+ts.Wrong > ts.Total {
			t.Errorf("topic %s: correct %d + wrong %d > total %d", ts.Topic, ts.Correct, ts.Wrong, ts.Total)
		}
	}
}

func TestAnalyze_ErrorShareSumsToHundred(t *testing.T) {
	questions := []models.Question{
		question("q1", "T1", models.ChoiceA),
		question("q2", "T2", models.ChoiceB),
		question("q3", "T3", models.ChoiceC),
	}
	answers := []models.UserAnswer{
		answer("q1", models.ChoiceB), // wrong
		answer("q2", models.ChoiceC), // wrong
		answer("q3", models.ChoiceC), // correct
	}

	res := Analyze(questions, answers)
	sum := 0.0
	for _, ts := range res.ByTopic {
		sum += ts.ErrorShare
	}
	if math.Abs(sum-100) > 0.2 {
		t.Errorf("errorShare sum = %v, want ~100", sum)
	}
}

func TestAnalyze_ErrorShareAllZeroWhenNoWrong(t *testing.T) {
	questions := []models.Question{
		question("q1", "T1", models.ChoiceA),
		question("q2", "T2", models.ChoiceB),
	}
	answers := []models.UserAnswer{
		answer("q1", models.ChoiceA),
		answer("q2", models.ChoiceB),
	}

	res := Analyze(questions, answers)
	for _, ts := range res.ByTopic {
		if ts.ErrorShare != 0 {
			t.Errorf("topic %s errorShare = %v, want 0", ts.Topic, ts.ErrorShare)
		}
		if ts.FocusPercent != 0 {
			t.Errorf("topic %s focusPercent = %v, want 0", ts.Topic, ts.FocusPercent)
		}
	}
}

func TestAnalyze_EmptyInputs(t *testing.T) {
	res := Analyze(nil, nil)

	s := res.Summary
	if s.Total != 0 || s.Attempted != 0 || s.Correct != 0 || s.Wrong != 0 {
		t.Errorf("summary should be all zero, got %+v", s)
	}
	if s.Accuracy != 0 {
		t.Errorf("accuracy = %v, want 0", s.Accuracy)
	}
	if s.Level != models.MasteryVeryWeak {
		t.Errorf("level = %q, want %q", s.Level, models.MasteryVeryWeak)
	}
	if len(res.ByTopic) != 0 {
		t.Errorf("byTopic = %v, want empty", res.ByTopic)
	}
}

func TestAnalyze_IgnoresUnknownQuestionIDs(t *testing.T) {
	questions := []models.Question{
		question("q1", "T1", models.ChoiceA),
	}
	answers := []models.UserAnswer{
		answer("q1", models.ChoiceA),
		answer("ghost", models.ChoiceB),
	}

	s := Analyze(questions, answers).Summary
	if s.Attempted != 1 || s.Correct != 1 || s.Wrong != 0 {
		t.Errorf("summary = attempted %d correct %d wrong %d, want 1/1/0", s.Attempted, s.Correct, s.Wrong)
	}
}

func TestAnalyze_MultiTopicQuestionCountsInBoth(t *testing.T) {
	q := question("q1", "T1", models.ChoiceA)
	q.Topics = []string{"T1", "T2"}

	res := Analyze([]models.Question{q}, []models.UserAnswer{answer("q1", models.ChoiceB)})

	if len(res.ByTopic) != 2 {
		t.Fatalf("expected 2 topic stats, got %d", len(res.ByTopic))
	}
	for _, ts := range res.ByTopic {
		if ts.Total != 1 || ts.Wrong != 1 {
			t.Errorf("topic %s: total %d wrong %d, want 1/1", ts.Topic, ts.Total, ts.Wrong)
		}
	}
}

func TestAnalyze_UntaggedFallsBackToCatchAll(t *testing.T) {
	q := question("q1", "", models.ChoiceA)
	q.Topics = nil

	res := Analyze([]models.Question{q}, []models.UserAnswer{answer("q1", models.ChoiceA)})
	if len(res.ByTopic) != 1 || res.ByTopic[0].Topic != "Other" {
		t.Errorf("byTopic = %+v, want single Other bucket", res.ByTopic)
	}
}

func TestLevelFromAccuracy(t *testing.T) {
	tests := []struct {
		acc  float64
		want models.MasteryLevel
	}{
		{100, models.MasteryVeryStrong},
		{90, models.MasteryVeryStrong},
		{89.9, models.MasteryStrong},
		{75, models.MasteryStrong},
		{74.9, models.MasteryAverage},
		{60, models.MasteryAverage},
		{59.9, models.MasteryWeak},
		{40, models.MasteryWeak},
		{39.9, models.MasteryVeryWeak},
		{0, models.MasteryVeryWeak},
	}
	for _, tt := range tests {
		if got := LevelFromAccuracy(tt.acc); got != tt.want {
			t.Errorf("LevelFromAccuracy(%v) = %q, want %q", tt.acc, got, tt.want)
		}
	}
}

func TestRound1(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{66.666666, 66.7},
		{33.333333, 33.3},
		{0, 0},
		{100, 100},
		{87.45, 87.5},
	}
	for _, tt := range tests {
		if got := round1(tt.in); got != tt.want {
			t.Errorf("round1(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
