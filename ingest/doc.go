// Copyright 2025 Helikon Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package ingest turns a document into an indexed, checkpointed corpus.
//
// The Pipeline fetches a document through a splitter, commits its
// overview synchronously, commits each fragment through a bounded worker
// pool, and writes a completion marker so re-ingestion becomes a no-op.
// A fragment that fails to commit is logged and skipped; the overview and
// the remaining fragments stay usable.
//
// The Tracker wraps the Pipeline for background execution: Submit starts
// an ingestion goroutine per document key, deduplicating in-flight keys,
// and AwaitCompletion blocks on a completion channel with a hard timeout.
package ingest
