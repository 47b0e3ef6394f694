package models

// ── Attempt History Types ────────────────────────────────

// AttemptRecord is one completed quiz-taking session. Records are immutable
// once built; the store keeps them newest-first, capped at the most recent
// 200 per user.
type AttemptRecord struct {
	ID         string               `json:"id"`
	SetKey     string               `json:"setKey"`
	Title      string               `json:"title"`
	Subject    string               `json:"subject,omitempty"`
	CreatedAt  int64                `json:"createdAt"`  // ms since epoch
	DurationMs int64                `json:"durationMs"`
	Answers    map[string]ChoiceKey `json:"answers"` // absent id = unanswered
	Result     AnalysisResult       `json:"result"`
}

// ── Request Types ────────────────────────────────────────

type SubmitAttemptRequest struct {
	SetKey    string               `json:"set_key"`
	StartedAt int64                `json:"started_at"` // ms since epoch
	EndedAt   int64                `json:"ended_at"`   // ms since epoch
	Answers   map[string]ChoiceKey `json:"answers"`
}

// ── Response Types ───────────────────────────────────────

type SubmitAttemptResponse struct {
	Attempt   AttemptRecord `json:"attempt"`
	Persisted bool          `json:"persisted"`
	NewBadges []Badge       `json:"new_badges"`
}

type AttemptListResponse struct {
	Attempts []AttemptRecord `json:"attempts"`
	Total    int             `json:"total"`
	// Truncated is set when the caller is on the free tier and older
	// attempts were withheld.
	Truncated bool `json:"truncated"`
}

type ReviewDeckResponse struct {
	SetKey    string           `json:"set_key"`
	Questions []ServedQuestion `json:"questions"`
	Total     int              `json:"total"`
}

type TopicDashboardResponse struct {
	Topics   []TopicStat `json:"topics"`
	Attempts int         `json:"attempts"`
}

// ── Badge Types ──────────────────────────────────────────

type Badge struct {
	Code string `json:"code"`
	Name string `json:"name"`
	Desc string `json:"desc"`
}

type BadgeListResponse struct {
	Badges []Badge `json:"badges"`
	Streak int     `json:"streak"`
}
