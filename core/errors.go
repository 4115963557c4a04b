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


package core

import "errors"

// Ingestion errors
var (
	// ErrFetchFailed indicates the splitter failed or returned nothing.
	ErrFetchFailed = errors.New("splitter fetch failed")

	// ErrEmptyDocument indicates the splitter produced zero fragments.
	ErrEmptyDocument = errors.New("document produced no fragments")

	// ErrIngestionTimeout indicates a completion wait exceeded its bound.
	ErrIngestionTimeout = errors.New("ingestion wait timed out")
)

// Domain validation errors
var (
	// ErrInvalidFragment indicates a Fragment failed validation.
	ErrInvalidFragment = errors.New("invalid fragment")

	// ErrInvalidEntry indicates an Entry failed validation.
	ErrInvalidEntry = errors.New("invalid entry")

	// ErrEmptyDocumentKey indicates the DocumentKey field is empty.
	ErrEmptyDocumentKey = errors.New("document key cannot be empty")

	// ErrUnsafeDocumentKey indicates a document key contains path
	// separators or parent references.
	ErrUnsafeDocumentKey = errors.New("document key contains path elements")

	// ErrEmptyEntryText indicates the Text field is empty.
	ErrEmptyEntryText = errors.New("entry text cannot be empty")

	// ErrInvalidEntryKind indicates an invalid EntryKind value.
	ErrInvalidEntryKind = errors.New("invalid entry kind")

	// ErrInvalidTaskStatus indicates an invalid TaskStatus value.
	ErrInvalidTaskStatus = errors.New("invalid task status")
)
