package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

type ChoiceKey string

const (
	ChoiceA ChoiceKey = "A"
	ChoiceB ChoiceKey = "B"
	ChoiceC ChoiceKey = "C"
	ChoiceD ChoiceKey = "D"
)

var ValidChoiceKeys = map[ChoiceKey]bool{
	ChoiceA: true,
	ChoiceB: true,
	ChoiceC: true,
	ChoiceD: true,
}

type MasteryLevel string

const (
	MasteryVeryWeak   MasteryLevel = "very_weak"
	MasteryWeak       MasteryLevel = "weak"
	MasteryAverage    MasteryLevel = "average"
	MasteryStrong     MasteryLevel = "strong"
	MasteryVeryStrong MasteryLevel = "very_strong"
)

// ── Core Structs ───────────────────────────────────────

type Choice struct {
	Key      ChoiceKey `json:"key"`
	Label    string    `json:"label,omitempty"`
	Image    string    `json:"img,omitempty"`
	ImageAlt string    `json:"imgAlt,omitempty"`
}

// Explanation is an ordered list of lines. Source data may carry it as a
// single string or as an array of strings; both decode into the same shape.
// A string value is split on newlines so marker lines like "Topic: X"
// remain individually addressable.
type Explanation []string

func (e *Explanation) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if single == "" {
			*e = nil
		} else {
			single = strings.ReplaceAll(single, "\r\n", "\n")
			*e = Explanation(strings.Split(single, "\n"))
		}
		return nil
	}
	var lines []string
	if err := json.Unmarshal(data, &lines); err != nil {
		return err
	}
	*e = Explanation(lines)
	return nil
}

type Question struct {
	ID          string      `json:"id"`
	Text        string      `json:"text,omitempty"`
	Image       string      `json:"image,omitempty"`
	ImageAlt    string      `json:"imgAlt,omitempty"`
	Topics      []string    `json:"topics,omitempty"`
	Choices     []Choice    `json:"choices"`
	CorrectKey  ChoiceKey   `json:"correctKey"`
	Explanation Explanation `json:"explanation,omitempty"`
}

// Validate checks the structural invariants a question must satisfy before
// it can be stored: at least one choice, no duplicate choice keys, every key
// from the fixed alphabet, and a correct key that actually matches one of
// the choices. Scoring itself stays permissive — this runs at import time.
func (q *Question) Validate() error {
	if q.ID == "" {
		return fmt.Errorf("question has no id")
	}
	if len(q.Choices) == 0 {
		return fmt.Errorf("question %s has no choices", q.ID)
	}
	seen := make(map[ChoiceKey]bool, len(q.Choices))
	for _, c := range q.Choices {
		if !ValidChoiceKeys[c.Key] {
			return fmt.Errorf("question %s has invalid choice key %q", q.ID, c.Key)
		}
		if seen[c.Key] {
			return fmt.Errorf("question %s has duplicate choice key %q", q.ID, c.Key)
		}
		seen[c.Key] = true
	}
	if !seen[q.CorrectKey] {
		return fmt.Errorf("question %s correct key %q not among its choices", q.ID, q.CorrectKey)
	}
	return nil
}

// UserAnswer pairs a question with the key the user picked.
// A nil SelectedKey means the question was left unanswered, which is
// distinct from answering incorrectly.
type UserAnswer struct {
	QuestionID  string     `json:"questionId"`
	SelectedKey *ChoiceKey `json:"selectedKey"`
}

// ── Analysis Types ─────────────────────────────────────

type TopicStat struct {
	Topic        string       `json:"topic"`
	Total        int          `json:"total"`
	Correct      int          `json:"correct"`
	Wrong        int          `json:"wrong"`
	Accuracy     float64      `json:"accuracy"`
	Level        MasteryLevel `json:"level"`
	ErrorShare   float64      `json:"errorShare"`
	FocusPercent float64      `json:"focusPercent"`
}

type AnalysisSummary struct {
	Total     int          `json:"total"`
	Attempted int          `json:"attempted"`
	Correct   int          `json:"correct"`
	Wrong     int          `json:"wrong"`
	Accuracy  float64      `json:"accuracy"`
	Level     MasteryLevel `json:"level"`
}

type AnalysisResult struct {
	Summary          AnalysisSummary `json:"summary"`
	ByTopic          []TopicStat     `json:"byTopic"`
	WrongQuestionIDs []string        `json:"wrongQuestionIds"`
}

// ── Serving Types (strip answers for the quiz UI) ──────

type ServedChoice struct {
	Key      ChoiceKey `json:"key"`
	Label    string    `json:"label,omitempty"`
	Image    string    `json:"img,omitempty"`
	ImageAlt string    `json:"imgAlt,omitempty"`
}

type ServedQuestion struct {
	ID       string         `json:"id"`
	Text     string         `json:"text,omitempty"`
	Image    string         `json:"image,omitempty"`
	ImageAlt string         `json:"imgAlt,omitempty"`
	Topics   []string       `json:"topics,omitempty"`
	Choices  []ServedChoice `json:"choices"`
}

func (q *Question) ToServed() ServedQuestion {
	choices := make([]ServedChoice, 0, len(q.Choices))
	for _, c := range q.Choices {
		choices = append(choices, ServedChoice{
			Key:      c.Key,
			Label:    c.Label,
			Image:    c.Image,
			ImageAlt: c.ImageAlt,
		})
	}
	return ServedQuestion{
		ID:       q.ID,
		Text:     q.Text,
		Image:    q.Image,
		ImageAlt: q.ImageAlt,
		Topics:   q.Topics,
		Choices:  choices,
	}
}

// ── Question Set Types ─────────────────────────────────

type QuestionSet struct {
	SetKey    string     `json:"set_key"`
	Subject   string     `json:"subject"`
	Title     string     `json:"title"`
	Year      int        `json:"year,omitempty"`
	Questions []Question `json:"questions"`
}

type QuestionSetResponse struct {
	SetKey    string           `json:"set_key"`
	Subject   string           `json:"subject"`
	Title     string           `json:"title"`
	Year      int              `json:"year,omitempty"`
	Questions []ServedQuestion `json:"questions"`
	Total     int              `json:"total"`
}

type SetListEntry struct {
	SetKey        string `json:"set_key"`
	Subject       string `json:"subject"`
	Title         string `json:"title"`
	Year          int    `json:"year,omitempty"`
	QuestionCount int    `json:"question_count"`
}

type SetListResponse struct {
	Sets  []SetListEntry `json:"sets"`
	Total int            `json:"total"`
}

// ── Import Types ───────────────────────────────────────

type ImportEnvelope struct {
	Version int    `json:"version"`
	Subject string `json:"subject"`
	SetKey  string `json:"set_key"`
	Title   string `json:"title"`
	Year    int    `json:"year,omitempty"`

	Questions []Question `json:"questions"`
}

type ImportResult struct {
	TotalInPayload int      `json:"total_in_payload"`
	Imported       int      `json:"imported"`
	Skipped        int      `json:"skipped"`
	Tagged         int      `json:"tagged"`
	Errors         []string `json:"errors,omitempty"`
}
