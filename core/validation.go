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

import (
	"fmt"
	"strings"
)

// ValidateFragment validates a Fragment according to domain rules.
//
// Validation rules:
//   - DocumentKey must not be empty
//   - Content must not be empty
//
// NOT validated:
//   - Title, Abstract, Bibliography (may legitimately be empty for some
//     documents or sections)
func ValidateFragment(fragment *Fragment) error {
	if fragment == nil {
		return fmt.Errorf("%w: fragment is nil", ErrInvalidFragment)
	}

	if fragment.DocumentKey == "" {
		return fmt.Errorf("%w: %w", ErrInvalidFragment, ErrEmptyDocumentKey)
	}

	if fragment.Content == "" {
		return fmt.Errorf("%w: fragment content cannot be empty", ErrInvalidFragment)
	}

	return nil
}

// ValidateEntry validates an Entry according to domain rules.
//
// Validation rules:
//   - Text must not be empty
//   - Kind must be valid
//
// NOT validated:
//   - Vector (can be empty until embedded)
//   - ID (populated from content by the repository)
func ValidateEntry(entry *Entry) error {
	if entry == nil {
		return fmt.Errorf("%w: entry is nil", ErrInvalidEntry)
	}

	if entry.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEntry, ErrEmptyEntryText)
	}

	if err := ValidateEntryKind(entry.Kind); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEntry, err)
	}

	return nil
}

// ValidateEntryKind validates that an EntryKind has a valid value.
func ValidateEntryKind(kind EntryKind) error {
	if kind != EntryKindOverview && kind != EntryKindFragment && kind != EntryKindMemory {
		return fmt.Errorf("%w: value %d", ErrInvalidEntryKind, kind)
	}
	return nil
}

// ValidateTaskStatus validates that a TaskStatus has a valid value.
func ValidateTaskStatus(status TaskStatus) error {
	if status < TaskPending || status > TaskFailed {
		return fmt.Errorf("%w: value %d", ErrInvalidTaskStatus, status)
	}
	return nil
}

// ValidateDocumentKey validates a normalized document key before it is
// joined into filesystem paths. Keys carrying separators or parent
// references could escape the per-document directory.
func ValidateDocumentKey(key string) error {
	if key == "" {
		return ErrEmptyDocumentKey
	}
	if strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return fmt.Errorf("%w: %q", ErrUnsafeDocumentKey, key)
	}
	return nil
}
