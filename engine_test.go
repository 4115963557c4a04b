package arxdialog

import (
	"context"
	"testing"

	"github.com/helikon/arxdialog/core"
	"github.com/helikon/arxdialog/dialog"
	"github.com/helikon/arxdialog/rag"
	"github.com/helikon/arxdialog/rag/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// passthroughClipper keeps text unchanged; engine tests exercise wiring,
// not token accounting.
type passthroughClipper struct{}

func (passthroughClipper) Clip(text string, maxTokens int) (string, bool, error) {
	return text, false, nil
}

func testEngine(t *testing.T, splitter *mock.MockSplitter) *Engine {
	t.Helper()

	engine, err := NewEngine(t.TempDir(), splitter,
		WithProvider(mock.NewMockProvider()),
		WithClipper(passthroughClipper{}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { engine.Close() })

	return engine
}

func paperFragments() []core.Fragment {
	return []core.Fragment{
		{
			Title:          "Attention Is All You Need",
			Abstract:       "We propose the Transformer.",
			DocumentKey:    "1706.03762",
			CurrentSection: "1 Introduction",
			SectionTree:    "1 Introduction > 2 Background",
			Content:        "attention mechanisms replace recurrence",
		},
		{
			Title:          "Attention Is All You Need",
			Abstract:       "We propose the Transformer.",
			DocumentKey:    "1706.03762",
			CurrentSection: "2 Background",
			SectionTree:    "1 Introduction > 2 Background",
			Content:        "multi-head attention details",
		},
	}
}

func TestNewEngine_SplitterRequired(t *testing.T) {
	_, err := NewEngine(t.TempDir(), nil)
	assert.Error(t, err)
}

func TestEngine_IndexFor(t *testing.T) {
	engine := testEngine(t, mock.NewMockSplitter())

	first, err := engine.IndexFor("2312.12345")
	require.NoError(t, err)

	// Same key returns the cached index, different keys are disjoint.
	again, err := engine.IndexFor("2312.12345")
	require.NoError(t, err)
	assert.Same(t, first, again)

	other, err := engine.IndexFor("2401.00001")
	require.NoError(t, err)
	assert.NotSame(t, first, other)
}

func TestEngine_IngestAndQuery(t *testing.T) {
	splitter := mock.NewMockSplitter(paperFragments()...)

	// A constant embedding makes every stored text retrievable for any
	// query, so the turn flow is deterministic.
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0, 0}, nil
	}
	provider := mock.NewMockProviderWithServices(embedder, mock.NewMockModelCaller("the model answer"))

	engine, err := NewEngine(t.TempDir(), splitter,
		WithProvider(provider),
		WithClipper(passthroughClipper{}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { engine.Close() })

	publisher := mock.NewMockPublisher()
	orchestrator, err := engine.NewOrchestrator(publisher)
	require.NoError(t, err)

	session := dialog.NewSession()
	ctx := context.Background()

	require.NoError(t, orchestrator.HandleTurn(ctx, session, "https://arxiv.org/abs/1706.03762"))
	require.Equal(t, "1706.03762", session.DocumentKey)
	assert.True(t, engine.Checkpoints().Exists("1706.03762"))

	require.NoError(t, orchestrator.HandleTurn(ctx, session, "attention mechanisms replace recurrence"))

	last := session.Transcript[len(session.Transcript)-1]
	assert.NotEmpty(t, last.Assistant)
	assert.Len(t, session.History, 2)
	assert.Equal(t, 2, publisher.CallCount())
}

func TestEngine_PipelineIdempotence(t *testing.T) {
	splitter := mock.NewMockSplitter(paperFragments()...)
	engine := testEngine(t, splitter)

	pipeline, err := engine.NewPipeline()
	require.NoError(t, err)
	defer pipeline.Release()

	ctx := context.Background()
	committed, err := pipeline.Ingest(ctx, "1706.03762")
	require.NoError(t, err)
	assert.Equal(t, 2, committed)

	committed, err = pipeline.Ingest(ctx, "1706.03762")
	require.NoError(t, err)
	assert.Equal(t, 0, committed)
	assert.Equal(t, 1, splitter.CallCount())
}

func TestEngine_OrchestratorSystemPrompt(t *testing.T) {
	splitter := mock.NewMockSplitter(paperFragments()...)

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0, 0}, nil
	}
	model := mock.NewMockModelCaller("the model answer")
	provider := mock.NewMockProviderWithServices(embedder, model)

	engine, err := NewEngine(t.TempDir(), splitter,
		WithProvider(provider),
		WithClipper(passthroughClipper{}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { engine.Close() })

	orchestrator, err := engine.NewOrchestrator(mock.NewMockPublisher())
	require.NoError(t, err)

	session := dialog.NewSession()
	ctx := context.Background()
	require.NoError(t, orchestrator.HandleTurn(ctx, session, "1706.03762"))
	require.NoError(t, orchestrator.HandleTurn(ctx, session, "attention mechanisms replace recurrence"))

	// The configured system prompt reaches every model call.
	requests := model.Requests()
	require.Len(t, requests, 1)
	assert.Equal(t, rag.DefaultConfig().SystemPrompt, requests[0].SystemPrompt)
}

func TestEngine_CustomSystemPrompt(t *testing.T) {
	splitter := mock.NewMockSplitter(paperFragments()...)

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0, 0}, nil
	}
	model := mock.NewMockModelCaller("the model answer")
	provider := mock.NewMockProviderWithServices(embedder, model)

	engine, err := NewEngine(t.TempDir(), splitter,
		WithRAGConfig(rag.NewConfig(rag.WithSystemPrompt("Answer tersely."))),
		WithProvider(provider),
		WithClipper(passthroughClipper{}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { engine.Close() })

	orchestrator, err := engine.NewOrchestrator(mock.NewMockPublisher())
	require.NoError(t, err)

	session := dialog.NewSession()
	ctx := context.Background()
	require.NoError(t, orchestrator.HandleTurn(ctx, session, "1706.03762"))
	require.NoError(t, orchestrator.HandleTurn(ctx, session, "attention mechanisms replace recurrence"))

	requests := model.Requests()
	require.Len(t, requests, 1)
	assert.Equal(t, "Answer tersely.", requests[0].SystemPrompt)
}

func TestEngine_CloseReleasesPipelines(t *testing.T) {
	engine := testEngine(t, mock.NewMockSplitter(paperFragments()...))

	first, err := engine.NewPipeline()
	require.NoError(t, err)
	second, err := engine.NewPipeline()
	require.NoError(t, err)

	require.False(t, first.Released())
	require.False(t, second.Released())

	engine.Close()

	assert.True(t, first.Released())
	assert.True(t, second.Released())
}
