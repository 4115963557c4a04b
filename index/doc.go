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


// Package index provides a local per-document vector index.
//
// LocalIndex combines an entry repository with an embedder to serve the
// full retrieval surface of a single document: overview and fragment text
// are embedded and committed as entries, queries are answered by cosine
// similarity over the stored vectors, and question/answer exchanges are
// written back as memory entries so later queries can retrieve them.
//
// Retrieved nodes are assembled into a grounded prompt that instructs the
// model to answer from the supplied context only, trimmed to a token
// budget by a pluggable TokenCounter.
package index
