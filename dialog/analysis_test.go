package dialog

import (
	"context"
	"errors"
	"testing"

	"github.com/helikon/arxdialog/core"
	"github.com/helikon/arxdialog/rag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAutoAnalyze(t *testing.T) {
	f := setupOrchestrator(t, passClipper{})
	f.index.BuildPromptFunc = func(query string, nodes []core.MatchedNode) string {
		return "assembled prompt for " + query
	}
	session := NewSession()
	session.DocumentKey = testKey

	require.NoError(t, f.orchestrator.AutoAnalyze(context.Background(), session))

	// One model call per key question, each remembered.
	assert.Equal(t, len(keyQuestions), f.model.CallCount())
	assert.Len(t, f.index.Memories(), len(keyQuestions))

	summary := lastTurn(t, session).Assistant
	for _, question := range keyQuestions {
		assert.Contains(t, summary, question)
	}
	assert.Equal(t, 1, f.publisher.CallCount())
}

func TestAutoAnalyze_PartialModelFailure(t *testing.T) {
	f := setupOrchestrator(t, passClipper{})
	f.index.BuildPromptFunc = func(query string, nodes []core.MatchedNode) string {
		return "assembled prompt"
	}
	calls := 0
	f.model.InvokeFunc = func(ctx context.Context, req rag.InvokeRequest) (string, error) {
		calls++
		if calls == 2 {
			return "", errors.New("model overloaded")
		}
		return "an answer", nil
	}
	session := NewSession()
	session.DocumentKey = testKey

	require.NoError(t, f.orchestrator.AutoAnalyze(context.Background(), session))

	// The failed question is skipped, the rest survive.
	assert.Len(t, f.index.Memories(), len(keyQuestions)-1)
}

func TestAutoAnalyze_NoDocument(t *testing.T) {
	f := setupOrchestrator(t, passClipper{})
	session := NewSession()

	require.NoError(t, f.orchestrator.AutoAnalyze(context.Background(), session))

	assert.Equal(t, msgPromptForDocument, lastTurn(t, session).Assistant)
	assert.Equal(t, 0, f.model.CallCount())
}

func TestAutoAnalyze_StreamsDeltas(t *testing.T) {
	var deltas int
	f := setupOrchestrator(t, passClipper{}, WithStreamSink(func(delta string) {
		deltas++
	}))
	f.index.BuildPromptFunc = func(query string, nodes []core.MatchedNode) string {
		return "assembled prompt"
	}
	session := NewSession()
	session.DocumentKey = testKey

	require.NoError(t, f.orchestrator.AutoAnalyze(context.Background(), session))

	// Every question's answer streams through the sink.
	assert.Equal(t, len(keyQuestions), deltas)
}
