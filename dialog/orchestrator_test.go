package dialog

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/helikon/arxdialog/checkpoint"
	"github.com/helikon/arxdialog/core"
	"github.com/helikon/arxdialog/ingest"
	"github.com/helikon/arxdialog/rag"
	"github.com/helikon/arxdialog/rag/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "2312.12345"

// passClipper returns text unchanged. altered forces the clipped flag.
type passClipper struct {
	altered bool
}

func (c passClipper) Clip(text string, maxTokens int) (string, bool, error) {
	return text, c.altered, nil
}

type fixture struct {
	orchestrator *Orchestrator
	checkpoints  *checkpoint.Store
	index        *mock.MockIndex
	model        *mock.MockModelCaller
	publisher    *mock.MockPublisher
	splitter     *mock.MockSplitter
}

func setupOrchestrator(t *testing.T, clipper rag.Clipper, opts ...Option) *fixture {
	t.Helper()

	checkpoints := checkpoint.NewStore(t.TempDir())
	idx := mock.NewMockIndex()
	provider := ingest.IndexProviderFunc(func(documentKey string) (rag.Index, error) {
		return idx, nil
	})

	splitter := mock.NewMockSplitter(core.Fragment{
		Title:       "Attention Is All You Need",
		Abstract:    "We propose the Transformer.",
		DocumentKey: testKey,
		Content:     "transformer architecture details",
	})

	pipeline, err := ingest.NewPipeline(splitter, checkpoints, provider)
	require.NoError(t, err)
	t.Cleanup(pipeline.Release)

	tracker, err := ingest.NewTracker(pipeline)
	require.NoError(t, err)

	model := mock.NewMockModelCaller("the model answer")
	publisher := mock.NewMockPublisher()

	orchestrator, err := NewOrchestrator(checkpoints, tracker, provider, model, publisher, clipper, opts...)
	require.NoError(t, err)

	return &fixture{
		orchestrator: orchestrator,
		checkpoints:  checkpoints,
		index:        idx,
		model:        model,
		publisher:    publisher,
		splitter:     splitter,
	}
}

func lastTurn(t *testing.T, session *Session) core.Turn {
	t.Helper()
	require.NotEmpty(t, session.Transcript)
	return session.Transcript[len(session.Transcript)-1]
}

func TestHandleTurn_PromptForDocument(t *testing.T) {
	f := setupOrchestrator(t, passClipper{})
	session := NewSession()

	require.NoError(t, f.orchestrator.HandleTurn(context.Background(), session, "hello there"))

	assert.Equal(t, msgPromptForDocument, lastTurn(t, session).Assistant)
	assert.Empty(t, session.History)
	assert.Equal(t, 1, f.publisher.CallCount())
}

func TestHandleTurn_Ingestion(t *testing.T) {
	f := setupOrchestrator(t, passClipper{})
	session := NewSession()

	require.NoError(t, f.orchestrator.HandleTurn(context.Background(), session, "https://arxiv.org/abs/2312.12345v2"))

	assert.Equal(t, msgIngestDone, lastTurn(t, session).Assistant)
	assert.Equal(t, testKey, session.DocumentKey)
	assert.True(t, f.checkpoints.Exists(testKey))
	assert.Len(t, f.index.Overviews(), 1)
	assert.Len(t, f.index.Fragments(), 1)
}

func TestHandleTurn_IngestionAlreadyLoaded(t *testing.T) {
	f := setupOrchestrator(t, passClipper{})
	session := NewSession()

	ctx := context.Background()
	require.NoError(t, f.orchestrator.HandleTurn(ctx, session, testKey))
	require.NoError(t, f.orchestrator.HandleTurn(ctx, session, testKey))

	assert.Equal(t, msgAlreadyLoaded, lastTurn(t, session).Assistant)
	assert.Equal(t, 1, f.splitter.CallCount())
}

func TestHandleTurn_IngestionFailure(t *testing.T) {
	f := setupOrchestrator(t, passClipper{})
	f.splitter.FetchAndSplitFunc = func(ctx context.Context, documentKey string) ([]core.Fragment, error) {
		return nil, errors.New("not found")
	}
	session := NewSession()

	require.NoError(t, f.orchestrator.HandleTurn(context.Background(), session, testKey))

	assert.Equal(t, msgIngestFailed, lastTurn(t, session).Assistant)
	assert.Empty(t, session.DocumentKey)
	assert.False(t, f.checkpoints.Exists(testKey))
}

func TestHandleTurn_IngestionTimeout(t *testing.T) {
	f := setupOrchestrator(t, passClipper{}, WithAwaitTimeout(100*time.Millisecond))
	release := make(chan struct{})
	defer close(release)
	f.splitter.FetchAndSplitFunc = func(ctx context.Context, documentKey string) ([]core.Fragment, error) {
		<-release
		return nil, errors.New("released late")
	}
	session := NewSession()

	start := time.Now()
	require.NoError(t, f.orchestrator.HandleTurn(context.Background(), session, testKey))

	assert.Equal(t, msgIngestFailed, lastTurn(t, session).Assistant)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestHandleTurn_Query(t *testing.T) {
	f := setupOrchestrator(t, passClipper{})
	session := NewSession()
	ctx := context.Background()

	require.NoError(t, f.orchestrator.HandleTurn(ctx, session, testKey))
	require.NoError(t, f.orchestrator.HandleTurn(ctx, session, "what is the transformer"))

	turn := lastTurn(t, session)
	assert.Equal(t, "what is the transformer", turn.User)
	assert.Equal(t, "the model answer", turn.Assistant)

	// Exchange lands in model history and in conversational memory.
	assert.Equal(t, []string{"what is the transformer", "the model answer"}, session.History)
	require.Len(t, f.index.Memories(), 1)
	assert.Contains(t, f.index.Memories()[0], "Q: what is the transformer")

	// The assembled prompt, not the raw query, reaches the model.
	requests := f.model.Requests()
	require.Len(t, requests, 1)
	assert.NotEqual(t, "what is the transformer", requests[0].Prompt)
	assert.Equal(t, "what is the transformer", requests[0].DisplayText)
}

func TestHandleTurn_QuerySoftFailure(t *testing.T) {
	f := setupOrchestrator(t, passClipper{})
	f.index.BuildPromptFunc = func(query string, nodes []core.MatchedNode) string {
		return ""
	}
	session := NewSession()
	ctx := context.Background()

	require.NoError(t, f.orchestrator.HandleTurn(ctx, session, testKey))
	require.NoError(t, f.orchestrator.HandleTurn(ctx, session, "unanswerable"))

	assert.Equal(t, msgAnswerFailed, lastTurn(t, session).Assistant)
	assert.Equal(t, 0, f.model.CallCount())
	assert.Empty(t, session.History)
}

func TestHandleTurn_QueryRetrievalError(t *testing.T) {
	f := setupOrchestrator(t, passClipper{})
	f.index.RetrieveFunc = func(ctx context.Context, query string) ([]core.MatchedNode, error) {
		return nil, errors.New("index corrupt")
	}
	session := NewSession()
	ctx := context.Background()

	require.NoError(t, f.orchestrator.HandleTurn(ctx, session, testKey))
	require.NoError(t, f.orchestrator.HandleTurn(ctx, session, "anything"))

	assert.Equal(t, msgAnswerFailed, lastTurn(t, session).Assistant)
	assert.Equal(t, 0, f.model.CallCount())
}

func TestHandleTurn_MemoryWriteBestEffort(t *testing.T) {
	f := setupOrchestrator(t, passClipper{})
	f.index.RememberExchangeFunc = func(ctx context.Context, question, answer string) error {
		return errors.New("memory full")
	}
	session := NewSession()
	ctx := context.Background()

	require.NoError(t, f.orchestrator.HandleTurn(ctx, session, testKey))
	require.NoError(t, f.orchestrator.HandleTurn(ctx, session, "a question"))

	// Memory failure does not disturb the answer.
	assert.Equal(t, "the model answer", lastTurn(t, session).Assistant)
	assert.Len(t, session.History, 2)
}

func TestHandleTurn_HistoryTruncation(t *testing.T) {
	f := setupOrchestrator(t, passClipper{}, WithMaxHistoryRounds(2))
	f.index.BuildPromptFunc = func(query string, nodes []core.MatchedNode) string {
		return "assembled prompt"
	}
	session := NewSession()
	session.DocumentKey = testKey
	for i := 0; i < 8; i++ {
		session.History = append(session.History, "old")
	}

	require.NoError(t, f.orchestrator.HandleTurn(context.Background(), session, "newest question"))

	// Truncated to 2 rounds before the exchange, then the new pair appended.
	require.Len(t, f.model.Requests(), 1)
	assert.Len(t, f.model.Requests()[0].History, 4)
	assert.Len(t, session.History, 6)
}

func TestHandleTurn_OversizedQueryPreview(t *testing.T) {
	f := setupOrchestrator(t, passClipper{altered: true}, WithRememberPreview(100))
	f.index.BuildPromptFunc = func(query string, nodes []core.MatchedNode) string {
		return "assembled prompt"
	}
	session := NewSession()
	session.DocumentKey = testKey

	longQuery := strings.Repeat("q", 500)
	require.NoError(t, f.orchestrator.HandleTurn(context.Background(), session, longQuery))

	// Memory holds the preview, history holds the original.
	require.Len(t, f.index.Memories(), 1)
	assert.Contains(t, f.index.Memories()[0], "characters elided")
	assert.Equal(t, longQuery, session.History[0])
}

func TestNewOrchestrator_RequiredDependencies(t *testing.T) {
	f := setupOrchestrator(t, passClipper{})

	_, err := NewOrchestrator(nil, nil, nil, nil, nil, nil)
	assert.ErrorIs(t, err, ErrCheckpointStoreRequired)

	_, err = NewOrchestrator(f.checkpoints, nil, nil, nil, nil, nil)
	assert.ErrorIs(t, err, ErrTrackerRequired)
}

func TestHandleTurn_StreamsDeltas(t *testing.T) {
	var deltas []string
	f := setupOrchestrator(t, passClipper{}, WithStreamSink(func(delta string) {
		deltas = append(deltas, delta)
	}))
	session := NewSession()
	ctx := context.Background()

	require.NoError(t, f.orchestrator.HandleTurn(ctx, session, testKey))
	require.NoError(t, f.orchestrator.HandleTurn(ctx, session, "what is the transformer"))

	// The sink observes the answer as it streams; the transcript still
	// carries the complete text.
	assert.Equal(t, "the model answer", strings.Join(deltas, ""))
	assert.Equal(t, "the model answer", lastTurn(t, session).Assistant)

	requests := f.model.Requests()
	require.Len(t, requests, 1)
	assert.NotNil(t, requests[0].Stream)
}
