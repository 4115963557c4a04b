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


// Package dialog sequences conversation turns over ingested papers.
//
// Each turn lands in one of three branches. Text that looks like an
// arXiv link or ID triggers ingestion (or joins one already running) and
// blocks, with a timeout, until the paper is ready. An opening turn that
// names no paper is answered with a prompt for one. Everything else is a
// query: history is truncated, the query is clipped to the context token
// budget, a grounded prompt is assembled from the paper's index, the
// model is invoked, and the exchange is written back to conversational
// memory. Every branch ends by publishing the transcript.
package dialog
