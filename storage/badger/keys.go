package badger

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/helikon/arxdialog/core"
)

// Key prefixes for different data types
const (
	entryPrefix     = "idxent"
	entryKindPrefix = "idxentk"
)

// makeEntryKey generates a key for an entry by ID.
func makeEntryKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", entryPrefix, id))
}

// makeEntryKindKey generates a composite key for the kind index.
// Format: prefix:kind:timestamp:id
func makeEntryKindKey(kind core.EntryKind, insertedAt time.Time, id core.ID) []byte {
	prefix := fmt.Sprintf("%s:%d:", entryKindPrefix, kind)
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 16 // 8 bytes for timestamp + 8 bytes for ID
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(insertedAt.UnixMicro()))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialEntryKindKey generates a partial key for kind queries.
// Format: prefix:kind
func makePartialEntryKindKey(kind core.EntryKind) []byte {
	return []byte(fmt.Sprintf("%s:%d:", entryKindPrefix, kind))
}
