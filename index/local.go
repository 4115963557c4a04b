package index

import (
	"context"
	"log/slog"

	"github.com/helikon/arxdialog/core"
	"github.com/helikon/arxdialog/rag"
	"github.com/helikon/arxdialog/storage"
)

const (
	defaultTopK          = 4
	defaultMinSimilarity = 0.60
)

// LocalIndex is a per-document vector index backed by an entry repository.
type LocalIndex struct {
	documentKey   string
	repository    storage.EntryRepository
	embedder      rag.Embedder
	counter       TokenCounter
	topK          int
	minSimilarity float32
	contextBudget int
	logger        *slog.Logger
}

var _ rag.Index = (*LocalIndex)(nil)

// Option configures a LocalIndex.
type Option func(*LocalIndex) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(x *LocalIndex) error {
		if logger == nil {
			logger = slog.Default()
		}
		x.logger = logger
		return nil
	}
}

// WithTopK sets the maximum number of nodes returned by Retrieve.
func WithTopK(topK int) Option {
	return func(x *LocalIndex) error {
		if topK > 0 {
			x.topK = topK
		}
		return nil
	}
}

// WithMinSimilarity sets the cosine similarity cutoff for retrieval.
func WithMinSimilarity(minSimilarity float32) Option {
	return func(x *LocalIndex) error {
		x.minSimilarity = minSimilarity
		return nil
	}
}

// WithTokenCounter sets the counter used to budget prompt context.
func WithTokenCounter(counter TokenCounter) Option {
	return func(x *LocalIndex) error {
		if counter != nil {
			x.counter = counter
		}
		return nil
	}
}

// WithContextBudget sets the token budget for retrieved context in prompts.
func WithContextBudget(budget int) Option {
	return func(x *LocalIndex) error {
		if budget > 0 {
			x.contextBudget = budget
		}
		return nil
	}
}

// NewLocalIndex creates an index over the given document's entries.
func NewLocalIndex(
	documentKey string,
	repository storage.EntryRepository,
	embedder rag.Embedder,
	opts ...Option,
) (*LocalIndex, error) {
	if documentKey == "" {
		return nil, core.ErrEmptyDocumentKey
	}
	if repository == nil {
		return nil, ErrRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	x := &LocalIndex{
		documentKey:   documentKey,
		repository:    repository,
		embedder:      embedder,
		counter:       approxCounter{},
		topK:          defaultTopK,
		minSimilarity: defaultMinSimilarity,
		contextBudget: defaultContextBudget,
		logger:        slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(x); err != nil {
			return nil, err
		}
	}

	return x, nil
}

// AddOverview embeds and commits the document overview.
func (x *LocalIndex) AddOverview(ctx context.Context, text string) error {
	return x.add(ctx, core.EntryKindOverview, text)
}

// AddFragmentText embeds and commits a single fragment's text.
func (x *LocalIndex) AddFragmentText(ctx context.Context, text string) error {
	return x.add(ctx, core.EntryKindFragment, text)
}

// RememberExchange commits a question/answer pair as a memory entry so
// later retrievals can surface it alongside document text.
func (x *LocalIndex) RememberExchange(ctx context.Context, question, answer string) error {
	return x.add(ctx, core.EntryKindMemory, "Q: "+question+"\nA: "+answer)
}

func (x *LocalIndex) add(ctx context.Context, kind core.EntryKind, text string) error {
	if text == "" {
		return ErrEmptyText
	}

	vector, err := x.embedder.EmbedText(ctx, text)
	if err != nil {
		x.logger.Error("error embedding text", "documentKey", x.documentKey, "kind", kind, "err", err)
		return err
	}

	_, err = x.repository.AddEntries(ctx, &core.Entry{
		Kind:        kind,
		DocumentKey: x.documentKey,
		Text:        text,
		Vector:      vector,
	})
	if err != nil {
		x.logger.Error("error committing entry", "documentKey", x.documentKey, "kind", kind, "err", err)
		return err
	}
	return nil
}

// Retrieve returns the nodes most similar to the query, ranked by cosine
// similarity. An empty result is not an error.
func (x *LocalIndex) Retrieve(ctx context.Context, query string) ([]core.MatchedNode, error) {
	embedding, err := x.embedder.EmbedText(ctx, query)
	if err != nil {
		x.logger.Error("error embedding query", "documentKey", x.documentKey, "err", err)
		return nil, err
	}

	matches, err := x.repository.FindSimilar(ctx, embedding, x.minSimilarity, x.topK)
	if err != nil {
		x.logger.Error("error querying for similar entries", "documentKey", x.documentKey, "err", err)
		return nil, err
	}

	nodes := make([]core.MatchedNode, 0, len(matches))
	for _, match := range matches {
		nodes = append(nodes, core.MatchedNode{
			Text:  match.Entry.Text,
			Score: match.Score,
		})
	}
	return nodes, nil
}

// Close releases the underlying repository.
func (x *LocalIndex) Close() error {
	return x.repository.Close()
}
