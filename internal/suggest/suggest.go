package suggest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ninesib/backend/internal/models"
	"github.com/ninesib/backend/internal/topics"
)

// Suggester asks an LLM to pick the best-fitting vocabulary topic for a
// question the keyword tagger could not place. The model is constrained to
// the fixed vocabulary; anything it says outside it collapses to the
// catch-all.
type Suggester struct {
	llm LLMClient
}

func NewSuggester(llm LLMClient) *Suggester {
	return &Suggester{llm: llm}
}

func systemPrompt() string {
	return fmt.Sprintf(
		"You classify exam questions into exactly one topic from a fixed list. "+
			"The topics are: %s. "+
			`Respond with JSON only: {"topic": "<one topic from the list>"}. `+
			"Pick %q when nothing fits.",
		strings.Join(topics.Vocabulary, ", "), topics.CatchAll,
	)
}

func userPrompt(q *models.Question) string {
	var b strings.Builder
	b.WriteString("Question: ")
	b.WriteString(q.Text)
	if len(q.Explanation) > 0 {
		b.WriteString("\nExplanation: ")
		b.WriteString(strings.Join(q.Explanation, "\n"))
	}
	return b.String()
}

// SuggestTopic returns one vocabulary topic for the question.
func (s *Suggester) SuggestTopic(ctx context.Context, q *models.Question) (string, error) {
	raw, err := s.llm.Generate(ctx, systemPrompt(), userPrompt(q))
	if err != nil {
		return "", fmt.Errorf("suggest topic for %s: %w", q.ID, err)
	}
	return ParseSuggestion(raw)
}

// ParseSuggestion extracts the topic label from a model response and
// validates it against the vocabulary. Off-vocabulary answers become the
// catch-all rather than an error — the model's formatting is untrusted,
// but the pipeline must still terminate with a usable label.
func ParseSuggestion(raw string) (string, error) {
	cleaned := stripCodeFences(raw)

	var resp struct {
		Topic string `json:"topic"`
	}
	if err := json.Unmarshal([]byte(cleaned), &resp); err != nil {
		return "", fmt.Errorf("parse suggestion %q: %w", raw, err)
	}

	label := strings.TrimSpace(resp.Topic)
	if !topics.Known(label) {
		return topics.CatchAll, nil
	}
	return label, nil
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimSpace(strings.TrimPrefix(s, "```json"))
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimSpace(strings.TrimPrefix(s, "```"))
	}
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSpace(strings.TrimSuffix(s, "```"))
	}
	return s
}
