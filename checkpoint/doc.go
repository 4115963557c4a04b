// Package checkpoint manages the durable per-document directory layout and
// completion markers that make ingestion idempotent and resumable.
//
// Each document key owns a directory under the store's base dir:
//
//	<base>/<key>/
//	    vector_store/            index subtree (owned by the index store)
//	    fragments/               fragment snapshot subtree
//	    <key>.processed          zero-byte completion marker
//
// The marker is written only after all fragment commits have been attempted,
// so its presence implies the index already contains the document's overview
// and fragments. Callers check Exists before ingesting and skip entirely when
// it returns true.
package checkpoint
