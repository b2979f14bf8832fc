package study

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/3star333/tradestudyagent/internal/types"
)

// MemoryStore is an in-memory Store implementation. It backs tests and
// deployments without a configured database; it satisfies the same
// contract as the SQLite store and is selected explicitly at startup
// rather than acting as a hidden module-level fallback.
type MemoryStore struct {
	mu      sync.RWMutex
	studies map[types.ID]*TradeStudy
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		studies: make(map[types.ID]*TradeStudy),
	}
}

// GetByID loads a study, or (nil, nil) if absent.
func (s *MemoryStore) GetByID(_ context.Context, id types.ID) (*TradeStudy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.studies[id]
	if !ok {
		return nil, nil
	}
	return cloneStudy(stored), nil
}

// Create persists a new study and returns it.
func (s *MemoryStore) Create(_ context.Context, params CreateParams) (*TradeStudy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := params.Status
	if status == "" {
		status = types.StudyStatusDraft
	}

	data := params.Data
	if data == nil {
		data = make(map[string]any)
	}

	now := time.Now().UTC()
	record := &TradeStudy{
		ID:          types.NewID(),
		OwnerID:     params.OwnerID,
		Title:       params.Title,
		Summary:     params.Summary,
		Status:      status,
		Data:        data,
		Attachments: []Attachment{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	s.studies[record.ID] = record
	return cloneStudy(record), nil
}

// Update applies a partial update, or returns (nil, nil) for a missing id.
func (s *MemoryStore) Update(_ context.Context, id types.ID, params UpdateParams) (*TradeStudy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.studies[id]
	if !ok {
		return nil, nil
	}

	if params.Title != nil {
		stored.Title = *params.Title
	}
	if params.Summary != nil {
		stored.Summary = *params.Summary
	}
	if params.Status != nil {
		stored.Status = *params.Status
	}
	if params.Data != nil {
		stored.Data = params.Data
	}
	stored.UpdatedAt = time.Now().UTC()

	return cloneStudy(stored), nil
}

// AttachFile records an attachment for a study.
func (s *MemoryStore) AttachFile(_ context.Context, params AttachParams) (*Attachment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.studies[params.TradeStudyID]
	if !ok {
		return nil, types.NewError(types.STUDY_NOT_FOUND, "trade study "+params.TradeStudyID.String()+" not found")
	}

	attachment := Attachment{
		ID:           types.NewID(),
		TradeStudyID: params.TradeStudyID,
		FileID:       params.FileID,
		Type:         params.Type,
		Title:        params.Title,
		CreatedAt:    time.Now().UTC(),
	}

	stored.Attachments = append(stored.Attachments, attachment)
	stored.UpdatedAt = time.Now().UTC()

	return &attachment, nil
}

// List returns studies, most recently updated first.
func (s *MemoryStore) List(_ context.Context, ownerID string) ([]*TradeStudy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*TradeStudy
	for _, stored := range s.studies {
		if ownerID != "" && stored.OwnerID != ownerID {
			continue
		}
		result = append(result, cloneStudy(stored))
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].UpdatedAt.After(result[j].UpdatedAt)
	})

	return result, nil
}

// cloneStudy returns a copy so callers cannot mutate stored state through
// shared maps and slices.
func cloneStudy(stored *TradeStudy) *TradeStudy {
	clone := *stored
	clone.Attachments = append([]Attachment(nil), stored.Attachments...)
	if stored.Data != nil {
		clone.Data = make(map[string]any, len(stored.Data))
		for key, value := range stored.Data {
			clone.Data[key] = value
		}
	}
	return &clone
}
