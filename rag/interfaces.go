package rag

import (
	"context"

	"github.com/helikon/arxdialog/core"
)

// Splitter acquires a document by key and splits it into fragments.
// The call blocks until the whole document is fetched and split; there are
// no partial results. Implementations must be thread-safe for concurrent use.
type Splitter interface {
	// FetchAndSplit returns the fragment sequence for a normalized document key.
	// Returns an error if the document cannot be acquired or split.
	FetchAndSplit(ctx context.Context, documentKey string) ([]core.Fragment, error)
}

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// The returned slice contains embeddings in the same order as the input texts.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Index is a per-document searchable store. All methods may fail independently;
// the store is network- or disk-backed.
type Index interface {
	// AddOverview commits the document's single overview record.
	AddOverview(ctx context.Context, text string) error

	// AddFragmentText commits one serialized fragment text block.
	AddFragmentText(ctx context.Context, text string) error

	// Retrieve performs similarity search over the index for a query.
	Retrieve(ctx context.Context, query string) ([]core.MatchedNode, error)

	// BuildPrompt composes a bounded-size grounded prompt from retrieved nodes.
	// Returns an empty string if no grounded prompt can be built.
	BuildPrompt(query string, nodes []core.MatchedNode) string

	// RememberExchange writes a question/answer pair to the index's memory channel.
	RememberExchange(ctx context.Context, question, answer string) error

	// Close releases resources held by the index.
	Close() error
}

// InvokeRequest carries one model invocation.
type InvokeRequest struct {
	// Prompt is the full grounded prompt handed to the model.
	Prompt string

	// DisplayText is the user-facing form of the request (usually the clipped
	// query), shown in the transcript instead of the full prompt.
	DisplayText string

	// History is the prior conversation as alternating question/answer strings.
	History []string

	// SystemPrompt is the system instruction for the model.
	SystemPrompt string

	// Stream, if non-nil, receives incremental answer deltas as they arrive.
	Stream func(delta string)
}

// ModelCaller invokes the language model. The call is a suspension point for
// the conversation driver; streaming deltas arrive via InvokeRequest.Stream.
type ModelCaller interface {
	Invoke(ctx context.Context, req InvokeRequest) (string, error)
}

// Publisher delivers transcript updates to the hosting surface.
// Publish is fire-and-forget; callers never wait on delivery.
type Publisher interface {
	Publish(transcript []core.Turn, history []string)
}

// Clipper bounds text to a maximum token budget.
type Clipper interface {
	// Clip truncates text to at most maxTokens tokens, preserving the tail.
	// Reports whether the input was altered.
	Clip(text string, maxTokens int) (clipped string, altered bool, err error)
}

// Provider aggregates model-backed services for convenient initialization and
// lifecycle management.
type Provider interface {
	// Embedder returns the text embedding service.
	Embedder() Embedder

	// Model returns the language model invocation service.
	Model() ModelCaller

	// Close releases resources held by the provider and its services.
	Close() error
}
