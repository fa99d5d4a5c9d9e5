package audit

import "time"

// InteractionID identifier type
type InteractionID string

// Kind names the endpoint that produced an interaction.
type Kind string

const (
	KindAsk            Kind = "ask"
	KindSummary        Kind = "summary"
	KindClaim          Kind = "claim"
	KindRecommendation Kind = "recommendation"
	KindWellness       Kind = "wellness"
)

// Status enum
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Interaction records one provider call for auditing and retrieval.
type Interaction struct {
	ID          InteractionID `json:"id"`
	SessionID   string        `json:"session_id"`
	Kind        Kind          `json:"kind"`
	PromptChars int           `json:"prompt_chars"`
	Status      Status        `json:"status"`
	Response    string        `json:"response,omitempty"`
	Error       string        `json:"error,omitempty"`
	DurationMS  int64         `json:"duration_ms"`
	CreatedAt   time.Time     `json:"created_at"`
}
