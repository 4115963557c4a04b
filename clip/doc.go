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


// Package clip bounds text by token or character budgets.
//
// The Clipper counts and trims text using tiktoken encodings so query
// text fits the model's context window. Preview produces a shortened
// head-and-tail rendering of long text for memory storage.
package clip
