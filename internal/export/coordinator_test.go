package export

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3star333/tradestudyagent/internal/study"
	"github.com/3star333/tradestudyagent/internal/types"
)

// fakePublisher returns a scripted outcome per target and records the
// content it was handed.
type fakePublisher struct {
	outcomes map[Target]PublishResult
	sections []Section
	matrix   [][]string
	panics   map[Target]bool
}

func (f *fakePublisher) outcome(target Target) PublishResult {
	if f.panics[target] {
		panic("publisher exploded")
	}
	if result, ok := f.outcomes[target]; ok {
		return result
	}
	return PublishResult{Status: types.StepStatusOK, Message: "created", FileID: "file-" + target.String()}
}

func (f *fakePublisher) CreateDocument(_ context.Context, _ string, sections []Section, _ string) PublishResult {
	f.sections = sections
	return f.outcome(TargetDoc)
}

func (f *fakePublisher) CreateSpreadsheet(_ context.Context, _ string, matrix [][]string, _ string) PublishResult {
	f.matrix = matrix
	return f.outcome(TargetSheet)
}

func (f *fakePublisher) CreateSlideDeck(_ context.Context, _ string, _ string) PublishResult {
	return f.outcome(TargetSlide)
}

func (f *fakePublisher) UploadFile(_ context.Context, _ string, _ []byte, _ string) PublishResult {
	return f.outcome(TargetDrive)
}

func newTestStudy(t *testing.T, store study.Store) *study.TradeStudy {
	t.Helper()
	created, err := store.Create(context.Background(), study.CreateParams{
		OwnerID: "owner-1",
		Title:   "Vector database selection",
		Summary: "Comparing vector stores.",
		Data: map[string]any{
			"criteria": []any{
				map[string]any{"name": "Cost", "description": "Total cost", "weight": 0.5},
				map[string]any{"name": "Performance", "description": "Query latency", "weight": 0.5},
			},
			"scored": []any{
				map[string]any{
					"name": "Option A", "rationale": "managed",
					"scores": map[string]any{"Cost": 7.0, "Performance": 9.0}, "weightedTotal": 8.0,
				},
			},
			"winner": "Option A",
		},
	})
	require.NoError(t, err)
	return created
}

func TestExport_SheetFailureDoesNotBlockOthers(t *testing.T) {
	store := study.NewMemoryStore()
	created := newTestStudy(t, store)

	publisher := &fakePublisher{outcomes: map[Target]PublishResult{
		TargetSheet: {Status: types.StepStatusError, Message: "quota exceeded"},
	}}
	coordinator := NewCoordinator(publisher, store)

	results := coordinator.Export(context.Background(), Request{
		Study:   created,
		Targets: Targets{Doc: true, Sheet: true, Slide: true},
	})

	require.Len(t, results, 3)
	assert.Equal(t, TargetDoc, results[0].Target)
	assert.Equal(t, TargetSheet, results[1].Target)
	assert.Equal(t, TargetSlide, results[2].Target)

	var okCount, errCount int
	for _, result := range results {
		switch result.Status {
		case types.StepStatusOK:
			okCount++
		case types.StepStatusError:
			errCount++
		}
	}
	assert.Equal(t, 2, okCount)
	assert.Equal(t, 1, errCount)

	reloaded, err := store.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Attachments, 2)
	assert.Equal(t, types.AttachmentTypeDoc, reloaded.Attachments[0].Type)
	assert.Equal(t, types.AttachmentTypeSlide, reloaded.Attachments[1].Type)
}

func TestExport_SkippedTargetCreatesNoAttachment(t *testing.T) {
	store := study.NewMemoryStore()
	created := newTestStudy(t, store)

	coordinator := NewCoordinator(NewUnconfiguredPublisher(), store)
	results := coordinator.Export(context.Background(), Request{
		Study:   created,
		Targets: Targets{Doc: true, Sheet: true, Slide: true, Drive: true},
	})

	require.Len(t, results, 4)
	for _, result := range results {
		assert.Equal(t, types.StepStatusSkipped, result.Status)
		assert.Empty(t, result.FileID)
	}

	reloaded, err := store.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Empty(t, reloaded.Attachments)
}

func TestExport_PanicIsIsolatedToItsTarget(t *testing.T) {
	store := study.NewMemoryStore()
	created := newTestStudy(t, store)

	publisher := &fakePublisher{panics: map[Target]bool{TargetDoc: true}}
	coordinator := NewCoordinator(publisher, store)

	results := coordinator.Export(context.Background(), Request{
		Study:   created,
		Targets: Targets{Doc: true, Sheet: true},
	})

	require.Len(t, results, 2)
	assert.Equal(t, types.StepStatusError, results[0].Status)
	assert.Contains(t, results[0].Message, "publisher exploded")
	assert.Equal(t, types.StepStatusOK, results[1].Status)
}

func TestExport_NoTargetsYieldsNoResults(t *testing.T) {
	store := study.NewMemoryStore()
	created := newTestStudy(t, store)

	coordinator := NewCoordinator(&fakePublisher{}, store)
	results := coordinator.Export(context.Background(), Request{Study: created})
	assert.Empty(t, results)
	assert.False(t, Targets{}.Any())
}

func TestExport_HydratesContentFromStudyData(t *testing.T) {
	store := study.NewMemoryStore()
	created := newTestStudy(t, store)

	publisher := &fakePublisher{}
	coordinator := NewCoordinator(publisher, store)

	coordinator.Export(context.Background(), Request{
		Study:   created,
		Targets: Targets{Doc: true, Sheet: true},
	})

	// Document: overview, criteria, alternatives, recommendation.
	require.Len(t, publisher.sections, 4)
	assert.Equal(t, "Overview", publisher.sections[0].Heading)
	assert.Contains(t, publisher.sections[1].Body, "Cost")
	assert.Contains(t, publisher.sections[3].Body, "Option A")

	// Spreadsheet: header plus one row per scored alternative.
	require.Len(t, publisher.matrix, 2)
	assert.Equal(t, "Alternative", publisher.matrix[0][0])
	assert.Equal(t, "Weighted Total", publisher.matrix[0][3])
	assert.Equal(t, []string{"Option A", "7.0", "9.0", "8.000"}, publisher.matrix[1])
}
