package models

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func validQuestion() Question {
	return Question{
		ID:   "q1",
		Text: "What is 10% of 50?",
		Choices: []Choice{
			{Key: ChoiceA, Label: "5"},
			{Key: ChoiceB, Label: "10"},
			{Key: ChoiceC, Label: "15"},
			{Key: ChoiceD, Label: "50"},
		},
		CorrectKey: ChoiceA,
	}
}

func TestQuestionValidate_Valid(t *testing.T) {
	q := validQuestion()
	if err := q.Validate(); err != nil {
		t.Errorf("expected valid question, got: %v", err)
	}
}

func TestQuestionValidate_ImageOnly(t *testing.T) {
	// Questions and choices may carry an image instead of text; neither the
	// prompt text nor the choice label is required.
	q := Question{
		ID:       "q1",
		Image:    "diagrams/q1.png",
		ImageAlt: "triangle with marked angles",
		Choices: []Choice{
			{Key: ChoiceA, Image: "diagrams/q1a.png"},
			{Key: ChoiceB, Image: "diagrams/q1b.png"},
			{Key: ChoiceC, Image: "diagrams/q1c.png"},
			{Key: ChoiceD, Image: "diagrams/q1d.png"},
		},
		CorrectKey: ChoiceB,
	}
	if err := q.Validate(); err != nil {
		t.Errorf("image-only question should validate, got: %v", err)
	}
}

func TestQuestionValidate_MissingID(t *testing.T) {
	q := validQuestion()
	q.ID = ""
	if err := q.Validate(); err == nil {
		t.Error("expected error for missing id")
	}
}

func TestQuestionValidate_NoChoices(t *testing.T) {
	q := validQuestion()
	q.Choices = nil
	if err := q.Validate(); err == nil {
		t.Error("expected error for empty choices")
	}
}

func TestQuestionValidate_DuplicateChoiceKey(t *testing.T) {
	q := validQuestion()
	q.Choices[1].Key = ChoiceA
	err := q.Validate()
	if err == nil {
		t.Fatal("expected error for duplicate choice key")
	}
	if !strings.Contains(err.Error(), "duplicate") {
		t.Errorf("error = %v, want mention of duplicate", err)
	}
}

func TestQuestionValidate_InvalidChoiceKey(t *testing.T) {
	q := validQuestion()
	q.Choices[0].Key = "E"
	if err := q.Validate(); err == nil {
		t.Error("expected error for choice key outside A-D")
	}
}

func TestQuestionValidate_CorrectKeyNotAmongChoices(t *testing.T) {
	q := validQuestion()
	q.Choices = q.Choices[:2] // A, B only
	q.CorrectKey = ChoiceD
	err := q.Validate()
	if err == nil {
		t.Fatal("expected error for correct key not among choices")
	}
	if !strings.Contains(err.Error(), "correct key") {
		t.Errorf("error = %v, want mention of correct key", err)
	}
}

func TestExplanationUnmarshal_SingleString(t *testing.T) {
	var e Explanation
	if err := json.Unmarshal([]byte(`"one line"`), &e); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual([]string(e), []string{"one line"}) {
		t.Errorf("explanation = %v, want [one line]", e)
	}
}

func TestExplanationUnmarshal_Array(t *testing.T) {
	var e Explanation
	if err := json.Unmarshal([]byte(`["line 1", "line 2"]`), &e); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual([]string(e), []string{"line 1", "line 2"}) {
		t.Errorf("explanation = %v, want [line 1, line 2]", e)
	}
}

func TestExplanationUnmarshal_MultilineString(t *testing.T) {
	// A marker line buried in a multi-line string must come out as its
	// own entry so the topic scan can see it.
	var e Explanation
	if err := json.Unmarshal([]byte(`"work out 10% of 50\r\nTopic: Percentages"`), &e); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := []string{"work out 10% of 50", "Topic: Percentages"}
	if !reflect.DeepEqual([]string(e), want) {
		t.Errorf("explanation = %v, want %v", e, want)
	}
}

func TestExplanationUnmarshal_EmptyString(t *testing.T) {
	var e Explanation
	if err := json.Unmarshal([]byte(`""`), &e); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(e) != 0 {
		t.Errorf("explanation = %v, want empty", e)
	}
}

func TestExplanationUnmarshal_InvalidType(t *testing.T) {
	var e Explanation
	if err := json.Unmarshal([]byte(`42`), &e); err == nil {
		t.Error("expected error for numeric explanation")
	}
}

func TestToServed_StripsAnswerData(t *testing.T) {
	q := validQuestion()
	q.Explanation = Explanation{"10% of 50 is 5"}
	q.Topics = []string{"Percentages"}

	served := q.ToServed()

	data, err := json.Marshal(served)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	payload := string(data)
	if strings.Contains(payload, "correctKey") || strings.Contains(payload, "explanation") {
		t.Errorf("served payload leaks answer data: %s", payload)
	}
	if served.ID != q.ID || len(served.Choices) != len(q.Choices) {
		t.Errorf("served = %+v, want same id and choice count", served)
	}
}
