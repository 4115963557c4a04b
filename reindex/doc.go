// Package reindex re-embeds the entries of a document's index with a new
// or updated embedding model.
//
// Entries are processed in batches with retry and exponential backoff on
// embedding calls, progress reporting to a writer, and vector
// normalization so cosine similarity keeps working after the switch.
package reindex
