package generate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3star333/tradestudyagent/internal/analysis"
	"github.com/3star333/tradestudyagent/internal/export"
	"github.com/3star333/tradestudyagent/internal/llm"
	"github.com/3star333/tradestudyagent/internal/research"
	"github.com/3star333/tradestudyagent/internal/study"
	"github.com/3star333/tradestudyagent/internal/types"
)

type fakeSearcher struct{}

func (f *fakeSearcher) Search(_ context.Context, query string, maxResults int, _ research.Depth) ([]research.SearchResult, error) {
	results := make([]research.SearchResult, 0, maxResults)
	for i := 0; i < maxResults; i++ {
		results = append(results, research.SearchResult{
			Title: query, URL: "https://example.com", Snippet: "snippet",
		})
	}
	return results, nil
}

type fakeFetcher struct{}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (*research.PageContent, error) {
	return &research.PageContent{Content: "Fetched " + url + ".", Title: url}, nil
}

// echoCompleter returns the same response for every call, including the
// corrective retries.
type echoCompleter struct {
	response string
}

func (e *echoCompleter) Name() string { return "echo" }

func (e *echoCompleter) Complete(_ context.Context, _ llm.CompletionRequest) (string, error) {
	return e.response, nil
}

// queuedCompleter returns responses in order.
type queuedCompleter struct {
	responses []string
}

func (q *queuedCompleter) Name() string { return "queued" }

func (q *queuedCompleter) Complete(_ context.Context, _ llm.CompletionRequest) (string, error) {
	if len(q.responses) == 0 {
		return "", types.NewError(types.LLM_REQUEST_FAILED, "no queued response")
	}
	resp := q.responses[0]
	q.responses = q.responses[1:]
	return resp, nil
}

// okPublisher reports success with a fixed file id per target.
type okPublisher struct{}

func (p *okPublisher) CreateDocument(_ context.Context, _ string, _ []export.Section, _ string) export.PublishResult {
	return export.PublishResult{Status: types.StepStatusOK, Message: "created", FileID: "doc-1"}
}

func (p *okPublisher) CreateSpreadsheet(_ context.Context, _ string, _ [][]string, _ string) export.PublishResult {
	return export.PublishResult{Status: types.StepStatusOK, Message: "created", FileID: "sheet-1"}
}

func (p *okPublisher) CreateSlideDeck(_ context.Context, _ string, _ string) export.PublishResult {
	return export.PublishResult{Status: types.StepStatusOK, Message: "created", FileID: "slide-1"}
}

func (p *okPublisher) UploadFile(_ context.Context, _ string, _ []byte, _ string) export.PublishResult {
	return export.PublishResult{Status: types.StepStatusOK, Message: "uploaded", FileID: "drive-1"}
}

func newGenerator(store study.Store, completer llm.Completer, publisher export.Publisher) *Generator {
	pipeline := research.NewPipeline(&fakeSearcher{}, &fakeFetcher{})
	return NewGenerator(completer, store, pipeline,
		analysis.NewAnalyzer(nil),
		export.NewCoordinator(publisher, store))
}

func boolPtr(v bool) *bool { return &v }

func assertWeightsSumToOne(t *testing.T, criteria []study.Criterion) {
	t.Helper()
	sum := 0.0
	for _, criterion := range criteria {
		sum += criterion.Weight
	}
	assert.InDelta(t, 1.0, sum, 1e-3)
}

func TestRun_FallbackEndToEnd(t *testing.T) {
	store := study.NewMemoryStore()
	generator := newGenerator(store, nil, nil)

	result, err := generator.Run(context.Background(), "owner-1", Input{
		Topic:             "Select a vector database for AI memory",
		Depth:             research.DepthQuick,
		GenerateArtifacts: boolPtr(false),
	})
	require.NoError(t, err)

	assert.False(t, result.StudyID.IsZero())
	assert.GreaterOrEqual(t, len(result.Criteria), 4)
	assert.LessOrEqual(t, len(result.Criteria), 10)
	assert.GreaterOrEqual(t, len(result.Alternatives), 3)
	assert.LessOrEqual(t, len(result.Alternatives), 8)
	assert.Len(t, result.Scored, len(result.Alternatives))
	assertWeightsSumToOne(t, result.Criteria)

	require.NotNil(t, result.Winner)
	for _, scored := range result.Scored {
		assert.LessOrEqual(t, scored.WeightedTotal, result.Winner.WeightedTotal)
	}

	// No artifacts requested.
	assert.Empty(t, result.ExportStatuses)
	assert.Empty(t, result.DocFileID)

	// Persisted record carries the generated payload.
	persisted, err := store.GetByID(context.Background(), result.StudyID)
	require.NoError(t, err)
	assert.Equal(t, "Select a vector database for AI memory", persisted.Title)
	assert.Equal(t, result.Winner.Name, persisted.Data["winner"])
	assert.Equal(t, "quick", persisted.Data["generationDepth"])
}

func TestRun_GarbageModelOutputStillCompletes(t *testing.T) {
	store := study.NewMemoryStore()
	generator := newGenerator(store, &echoCompleter{response: "I cannot answer that."}, nil)

	result, err := generator.Run(context.Background(), "owner-1", Input{
		Topic:             "Choose a message broker",
		GenerateArtifacts: boolPtr(false),
	})
	require.NoError(t, err)

	// Every model call fell back to the deterministic substitutes.
	require.Len(t, result.Criteria, 4)
	assert.Equal(t, "Cost", result.Criteria[0].Name)
	require.Len(t, result.Alternatives, 3)
	assert.Equal(t, "Option A", result.Alternatives[0].Name)
	assertWeightsSumToOne(t, result.Criteria)

	// Uniform fallback scores: every weighted total is 5.
	for _, scored := range result.Scored {
		assert.InDelta(t, 5.0, scored.WeightedTotal, 1e-9)
	}
}

func TestRun_TopicTooShort(t *testing.T) {
	generator := newGenerator(study.NewMemoryStore(), nil, nil)

	_, err := generator.Run(context.Background(), "owner-1", Input{Topic: "db"})
	require.Error(t, err)
	assert.Equal(t, types.TOOL_INVALID_INPUT, types.CodeOf(err))
}

func TestRun_ArtifactsExportedWithFileIDs(t *testing.T) {
	store := study.NewMemoryStore()
	generator := newGenerator(store, nil, &okPublisher{})

	result, err := generator.Run(context.Background(), "owner-1", Input{
		Topic: "Select an API gateway",
	})
	require.NoError(t, err)

	require.Len(t, result.ExportStatuses, 3)
	assert.Equal(t, export.TargetDoc, result.ExportStatuses[0].Target)
	assert.Equal(t, export.TargetSheet, result.ExportStatuses[1].Target)
	assert.Equal(t, export.TargetSlide, result.ExportStatuses[2].Target)
	assert.Equal(t, "doc-1", result.DocFileID)
	assert.Equal(t, "sheet-1", result.SheetFileID)
	assert.Equal(t, "slide-1", result.SlideFileID)

	persisted, err := store.GetByID(context.Background(), result.StudyID)
	require.NoError(t, err)
	assert.Len(t, persisted.Attachments, 3)
}

func TestGenerateCriteria_ModelWeightsRenormalized(t *testing.T) {
	completer := &queuedCompleter{responses: []string{
		`{"criteria": [
			{"name": "Latency", "description": "p99 latency", "weight": 0.4},
			{"name": "Cost", "description": "monthly spend", "weight": 0.4},
			{"name": "Durability", "description": "data safety", "weight": 0.4},
			{"name": "Operability", "description": "runbook burden", "weight": 0.4}
		]}`,
	}}
	generator := newGenerator(study.NewMemoryStore(), completer, nil)

	criteria := generator.GenerateCriteria(context.Background(), "storage engine")
	require.Len(t, criteria, 4)
	for _, criterion := range criteria {
		assert.InDelta(t, 0.25, criterion.Weight, 1e-9)
	}
	assertWeightsSumToOne(t, criteria)
}

func TestGenerateCriteria_OutOfRangeWeightFallsBack(t *testing.T) {
	// Weight above 1 fails validation twice (the retry returns the same
	// payload), so the fixed fallback set is used.
	bad := `{"criteria": [
		{"name": "A", "description": "a", "weight": 1.5},
		{"name": "B", "description": "b", "weight": 0.2},
		{"name": "C", "description": "c", "weight": 0.2},
		{"name": "D", "description": "d", "weight": 0.1}
	]}`
	generator := newGenerator(study.NewMemoryStore(), &echoCompleter{response: bad}, nil)

	criteria := generator.GenerateCriteria(context.Background(), "storage engine")
	require.Len(t, criteria, 4)
	assert.Equal(t, "Cost", criteria[0].Name)
	assert.InDelta(t, 0.25, criteria[0].Weight, 1e-9)
}

func TestGenerateCriteria_WrongArityFallsBack(t *testing.T) {
	bad := `{"criteria": [
		{"name": "Only", "description": "one", "weight": 1.0}
	]}`
	generator := newGenerator(study.NewMemoryStore(), &echoCompleter{response: bad}, nil)

	criteria := generator.GenerateCriteria(context.Background(), "storage engine")
	require.Len(t, criteria, 4)
	assert.Equal(t, "Performance", criteria[1].Name)
}

func TestScoreAlternatives_TotalsAlwaysRecomputed(t *testing.T) {
	criteria := []study.Criterion{
		{Name: "Cost", Weight: 0.6},
		{Name: "Speed", Weight: 0.4},
	}
	alternatives := []study.Alternative{
		{Name: "X", Rationale: "baseline"},
		{Name: "Y", Rationale: "challenger"},
	}

	// The model's own weightedTotal is bogus on purpose; Y is missing a
	// Speed score, which counts as zero.
	completer := &queuedCompleter{responses: []string{
		`{"scored": [
			{"name": "X", "rationale": "baseline", "scores": {"Cost": 8, "Speed": 5}, "weightedTotal": 999},
			{"name": "Y", "rationale": "challenger", "scores": {"Cost": 10}, "weightedTotal": 999}
		]}`,
	}}
	generator := newGenerator(study.NewMemoryStore(), completer, nil)

	scored := generator.ScoreAlternatives(context.Background(), "topic", criteria, alternatives, "")
	require.Len(t, scored, 2)
	assert.InDelta(t, 6.8, scored[0].WeightedTotal, 1e-9) // 8*0.6 + 5*0.4
	assert.InDelta(t, 6.0, scored[1].WeightedTotal, 1e-9) // 10*0.6 + 0
}

func TestSelectWinner_FirstMaxStableOnTies(t *testing.T) {
	scored := []study.ScoredAlternative{
		{Alternative: study.Alternative{Name: "First"}, WeightedTotal: 7.5},
		{Alternative: study.Alternative{Name: "Second"}, WeightedTotal: 7.5},
		{Alternative: study.Alternative{Name: "Third"}, WeightedTotal: 6.0},
	}

	for i := 0; i < 5; i++ {
		winner := selectWinner(scored)
		require.NotNil(t, winner)
		assert.Equal(t, "First", winner.Name)
	}

	assert.Nil(t, selectWinner(nil))
}

func TestNormalizeWeights_UnevenWeights(t *testing.T) {
	criteria := normalizeWeights([]study.Criterion{
		{Name: "A", Weight: 0.3},
		{Name: "B", Weight: 0.3},
		{Name: "C", Weight: 0.15},
		{Name: "D", Weight: 0.15},
		{Name: "E", Weight: 0.05},
	})
	assertWeightsSumToOne(t, criteria)

	criteria = normalizeWeights([]study.Criterion{
		{Name: "A", Weight: 0},
		{Name: "B", Weight: 0},
		{Name: "C", Weight: 0},
		{Name: "D", Weight: 0},
	})
	for _, criterion := range criteria {
		assert.Zero(t, criterion.Weight)
	}
}

func TestWeightedTotal_RecomputationIsIdempotent(t *testing.T) {
	criteria := []study.Criterion{
		{Name: "Cost", Weight: 0.5},
		{Name: "Speed", Weight: 0.5},
	}
	scores := map[string]float64{"Cost": 7, "Speed": 9}

	first := weightedTotal(scores, criteria)
	second := weightedTotal(scores, criteria)
	assert.Equal(t, first, second)
	assert.InDelta(t, 8.0, first, 1e-9)
}
