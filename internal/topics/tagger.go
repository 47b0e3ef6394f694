// Package topics owns the controlled topic vocabulary and the keyword-based
// tagger that backfills topic labels on questions that arrive without them.
package topics

import (
	"regexp"
	"strings"

	"github.com/ninesib/backend/internal/models"
)

// CatchAll is the topic assigned when nothing in the vocabulary matches.
const CatchAll = "Other"

// Vocabulary is the fixed set of known topic labels, catch-all last.
var Vocabulary = []string{
	"Number Series",
	"Percentages",
	"Venn/Counting",
	"Ratio/Variation",
	"Algebra/Real Numbers",
	"Statistics/Averages",
	"GCD/Factors",
	"Time/Work/Rate",
	"Age/Word Equations",
	"Basic Geometry",
	CatchAll,
}

// topicMarker matches an explanation line that names its topic, e.g.
// "Topic: Percentages".
var topicMarker = regexp.MustCompile(`(?i)topic\s*[:：]\s*(.*)`)

var nonAlnum = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// Normalize strips punctuation, collapses whitespace, and case-folds so
// vocabulary containment checks are insensitive to formatting.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(nonAlnum.ReplaceAllString(s, " ")))
}

// InferTopics derives topic labels for a question from its explanation.
// Returns nil when nothing can be inferred. At most one topic is returned;
// the batch tagger (InferTopicsBatch) is the variant that allows two.
func InferTopics(q *models.Question) []string {
	if len(q.Explanation) == 0 {
		return nil
	}

	candidate := q.Explanation[0]
	for _, line := range q.Explanation {
		if topicMarker.MatchString(line) {
			candidate = line
			break
		}
	}

	if found := matchVocabulary(Normalize(candidate), 1); len(found) > 0 {
		return found
	}

	// Fallback: the text after the marker token may name the topic directly.
	if m := topicMarker.FindStringSubmatch(candidate); m != nil {
		if found := matchVocabulary(Normalize(m[1]), 1); len(found) > 0 {
			return found
		}
	}

	return nil
}

// InferTopicsBatch is the offline tagging variant: it allows up to two
// topics and, when the explanation yields nothing, also scans the question
// text itself.
func InferTopicsBatch(q *models.Question) []string {
	if len(q.Topics) > 0 {
		return q.Topics
	}

	var firstLine string
	if len(q.Explanation) > 0 {
		firstLine = q.Explanation[0]
	}
	if found := matchVocabulary(Normalize(firstLine), 2); len(found) > 0 {
		return found
	}

	if found := matchVocabulary(Normalize(q.Text), 2); len(found) > 0 {
		return found
	}

	return []string{CatchAll}
}

// EnsureTopics returns a copy of the question slice where every question has
// at least one topic label. Already-tagged questions pass through unchanged;
// untagged questions get an inferred topic or the catch-all. Pure: the input
// slice is not mutated.
func EnsureTopics(questions []models.Question) []models.Question {
	out := make([]models.Question, len(questions))
	copy(out, questions)
	for i := range out {
		if len(out[i].Topics) > 0 {
			continue
		}
		if inferred := InferTopics(&out[i]); len(inferred) > 0 {
			out[i].Topics = inferred
		} else {
			out[i].Topics = []string{CatchAll}
		}
	}
	return out
}

// Known reports whether the label is part of the vocabulary. Used at the
// import boundary to validate externally supplied tags.
func Known(label string) bool {
	for _, t := range Vocabulary {
		if t == label {
			return true
		}
	}
	return false
}

func matchVocabulary(normalized string, limit int) []string {
	if normalized == "" {
		return nil
	}
	var found []string
	for _, t := range Vocabulary {
		if t == CatchAll {
			continue
		}
		if strings.Contains(normalized, Normalize(t)) {
			found = append(found, t)
			if len(found) == limit {
				break
			}
		}
	}
	return found
}
