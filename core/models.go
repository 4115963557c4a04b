package core

//go:generate go run ../cmd/musgen

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for index entries.
// It is derived from entry content, so re-indexing identical text
// overwrites the existing entry instead of duplicating it.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// EntryKind identifies what an index entry represents.
type EntryKind int

const (
	// EntryKindOverview is the single per-document summary record.
	EntryKindOverview EntryKind = iota + 1
	// EntryKindFragment is one retrievable slice of document content.
	EntryKindFragment
	// EntryKindMemory is a remembered question/answer exchange.
	EntryKindMemory
)

// Entry is a single record in a document's index: the serialized text block,
// its embedding vector, and bookkeeping timestamps.
type Entry struct {
	Id          ID
	Kind        EntryKind
	DocumentKey string
	Text        string
	Vector      []float32 // Embedding vector for similarity search
	InsertedAt  time.Time
	UpdatedAt   time.Time
}

// Fragment is a unit of retrievable content produced by the splitter.
// Fragments carry the splitter's traversal order; the order matters for
// reproducible indexing, not for retrieval.
type Fragment struct {
	Title          string `json:"title"`
	Abstract       string `json:"abstract"`
	DocumentKey    string `json:"arxiv_id"`
	CurrentSection string `json:"current_section"`
	SectionTree    string `json:"section_tree"`
	Content        string `json:"content"`
	Bibliography   string `json:"bibliography"`
}

// TaskStatus is the lifecycle state of an ingestion task.
type TaskStatus int

const (
	// TaskPending means the task has been created but not started.
	TaskPending TaskStatus = iota + 1
	// TaskProcessing means the ingestion pipeline is running.
	TaskProcessing
	// TaskCompleted is the terminal success state.
	TaskCompleted
	// TaskFailed is the terminal failure state.
	TaskFailed
)

func (s TaskStatus) String() string {
	switch s {
	case TaskPending:
		return "pending"
	case TaskProcessing:
		return "processing"
	case TaskCompleted:
		return "completed"
	case TaskFailed:
		return "failed"
	}
	return "unknown"
}

// IngestionTask tracks one in-flight document ingestion.
// The terminal transition to completed or failed happens exactly once.
// Tasks are not persisted; durable completion is recorded by the checkpoint store.
type IngestionTask struct {
	DocumentKey string
	Status      TaskStatus
	Err         string // populated on failure
	Fragments   int    // committed fragment count, populated on success
	StartedAt   time.Time
	FinishedAt  time.Time
}

// EntryMatch represents an entry match from vector similarity search.
type EntryMatch struct {
	Entry *Entry
	Score float32
}

// MatchedNode is one retrieval hit: the stored entry text plus its relevance score.
type MatchedNode struct {
	Text  string
	Score float32
}

// Turn is a single user/assistant exchange in the conversation transcript.
type Turn struct {
	User      string
	Assistant string
}
