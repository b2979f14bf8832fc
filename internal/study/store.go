package study

import (
	"context"

	"github.com/3star333/tradestudyagent/internal/types"
)

// CreateParams carries the fields for a new trade study. Status defaults
// to draft when unset; Data defaults to an empty payload.
type CreateParams struct {
	OwnerID string
	Title   string
	Summary string
	Status  types.StudyStatus
	Data    map[string]any
}

// UpdateParams is a partial update: nil fields are left untouched.
type UpdateParams struct {
	Title   *string
	Summary *string
	Status  *types.StudyStatus
	Data    map[string]any
}

// AttachParams carries the fields for a new attachment record.
type AttachParams struct {
	TradeStudyID types.ID
	FileID       string
	Type         types.AttachmentType
	Title        string
}

// Store is the persistence boundary for trade studies. The agent core
// issues no raw queries; these five operations are its whole contract
// with storage. GetByID and Update return (nil, nil) for a missing id so
// callers can distinguish not-found from a storage failure.
type Store interface {
	// GetByID loads a study with its attachments, or (nil, nil) if absent.
	GetByID(ctx context.Context, id types.ID) (*TradeStudy, error)

	// Create persists a new study and returns it.
	Create(ctx context.Context, params CreateParams) (*TradeStudy, error)

	// Update applies a partial update, returning the updated study or
	// (nil, nil) if the id does not exist.
	Update(ctx context.Context, id types.ID, params UpdateParams) (*TradeStudy, error)

	// AttachFile records an attachment for a study.
	AttachFile(ctx context.Context, params AttachParams) (*Attachment, error)

	// List returns studies, optionally filtered by owner, most recently
	// updated first.
	List(ctx context.Context, ownerID string) ([]*TradeStudy, error)
}
