package study

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3star333/tradestudyagent/internal/types"
)

// storeUnderTest runs the same contract tests against both implementations.
func storesUnderTest(t *testing.T) map[string]Store {
	t.Helper()

	sqlite, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": sqlite,
	}
}

func TestStore_CreateAndGet(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			created, err := store.Create(ctx, CreateParams{
				OwnerID: "user-1",
				Title:   "Vector database selection",
				Summary: "Compare candidates",
				Data:    map[string]any{"criteria": []any{"Latency"}},
			})
			require.NoError(t, err)
			require.NotNil(t, created)
			assert.False(t, created.ID.IsZero())
			assert.Equal(t, types.StudyStatusDraft, created.Status)

			loaded, err := store.GetByID(ctx, created.ID)
			require.NoError(t, err)
			require.NotNil(t, loaded)
			assert.Equal(t, "Vector database selection", loaded.Title)
			assert.NotNil(t, loaded.Data["criteria"])
			assert.Empty(t, loaded.Attachments)
		})
	}
}

func TestStore_GetMissingReturnsNilNil(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			loaded, err := store.GetByID(context.Background(), types.NewID())
			require.NoError(t, err)
			assert.Nil(t, loaded)
		})
	}
}

func TestStore_PartialUpdate(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			created, err := store.Create(ctx, CreateParams{OwnerID: "user-1", Title: "Original", Summary: "keep me"})
			require.NoError(t, err)

			newStatus := types.StudyStatusInReview
			updated, err := store.Update(ctx, created.ID, UpdateParams{Status: &newStatus})
			require.NoError(t, err)
			require.NotNil(t, updated)

			assert.Equal(t, "Original", updated.Title)
			assert.Equal(t, "keep me", updated.Summary)
			assert.Equal(t, types.StudyStatusInReview, updated.Status)
		})
	}
}

func TestStore_UpdateMissingReturnsNilNil(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			title := "nope"
			updated, err := store.Update(context.Background(), types.NewID(), UpdateParams{Title: &title})
			require.NoError(t, err)
			assert.Nil(t, updated)
		})
	}
}

func TestStore_AttachFile(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			created, err := store.Create(ctx, CreateParams{OwnerID: "user-1", Title: "With attachments"})
			require.NoError(t, err)

			attachment, err := store.AttachFile(ctx, AttachParams{
				TradeStudyID: created.ID,
				FileID:       "file-123",
				Type:         types.AttachmentTypeDoc,
				Title:        "Summary doc",
			})
			require.NoError(t, err)
			assert.Equal(t, created.ID, attachment.TradeStudyID)

			loaded, err := store.GetByID(ctx, created.ID)
			require.NoError(t, err)
			require.Len(t, loaded.Attachments, 1)
			assert.Equal(t, types.AttachmentTypeDoc, loaded.Attachments[0].Type)
			assert.Equal(t, "file-123", loaded.Attachments[0].FileID)
		})
	}
}

func TestStore_AttachFileToMissingStudyFails(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.AttachFile(context.Background(), AttachParams{
				TradeStudyID: types.NewID(),
				FileID:       "file-123",
				Type:         types.AttachmentTypeDoc,
			})
			require.Error(t, err)
			assert.Equal(t, types.STUDY_NOT_FOUND, types.CodeOf(err))
		})
	}
}

func TestStore_ListFiltersByOwner(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := store.Create(ctx, CreateParams{OwnerID: "alice", Title: "A"})
			require.NoError(t, err)
			_, err = store.Create(ctx, CreateParams{OwnerID: "bob", Title: "B"})
			require.NoError(t, err)

			all, err := store.List(ctx, "")
			require.NoError(t, err)
			assert.Len(t, all, 2)

			aliceOnly, err := store.List(ctx, "alice")
			require.NoError(t, err)
			require.Len(t, aliceOnly, 1)
			assert.Equal(t, "A", aliceOnly[0].Title)
		})
	}
}

func TestMemoryStore_ClonesProtectStoredState(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	created, err := store.Create(ctx, CreateParams{OwnerID: "user-1", Title: "Immutable", Data: map[string]any{"key": "value"}})
	require.NoError(t, err)

	created.Data["key"] = "mutated"
	created.Title = "mutated"

	loaded, err := store.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Immutable", loaded.Title)
	assert.Equal(t, "value", loaded.Data["key"])
}
