package study

import (
	"time"

	"github.com/3star333/tradestudyagent/internal/types"
)

// Criterion is a named, weighted evaluation axis for a trade study.
// Weights are normalized: across all criteria of one study they sum to 1
// within rounding tolerance.
type Criterion struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Weight      float64 `json:"weight"`
}

// Alternative is a candidate solution under evaluation.
type Alternative struct {
	Name      string `json:"name"`
	Rationale string `json:"rationale"`
}

// ScoredAlternative extends Alternative with per-criterion scores (0-10)
// and a weighted total. WeightedTotal is always recomputed locally from
// scores and criterion weights; model-supplied totals are discarded.
type ScoredAlternative struct {
	Alternative
	Scores        map[string]float64 `json:"scores"`
	WeightedTotal float64            `json:"weightedTotal"`
}

// TradeStudy is the persisted decision record. Data is an opaque
// structured payload from the store's point of view; the agent core only
// relies on the keys it writes itself (criteria, alternatives, scored,
// winner, researchSources).
type TradeStudy struct {
	ID          types.ID          `json:"id"`
	OwnerID     string            `json:"owner_id"`
	Title       string            `json:"title"`
	Summary     string            `json:"summary,omitempty"`
	Status      types.StudyStatus `json:"status"`
	Data        map[string]any    `json:"data,omitempty"`
	Attachments []Attachment      `json:"attachments"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// Attachment links a published artifact back to its trade study. An
// attachment exists only for exports that actually succeeded.
type Attachment struct {
	ID           types.ID             `json:"id"`
	TradeStudyID types.ID             `json:"trade_study_id"`
	FileID       string               `json:"file_id"`
	Type         types.AttachmentType `json:"type"`
	Title        string               `json:"title,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
}
