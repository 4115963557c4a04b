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


package dialog

import "errors"

var (
	// ErrCheckpointStoreRequired is returned when a checkpoint store is not provided.
	ErrCheckpointStoreRequired = errors.New("checkpoint store required")

	// ErrTrackerRequired is returned when a tracker is not provided.
	ErrTrackerRequired = errors.New("tracker required")

	// ErrIndexProviderRequired is returned when an index provider is not provided.
	ErrIndexProviderRequired = errors.New("index provider required")

	// ErrModelRequired is returned when a model caller is not provided.
	ErrModelRequired = errors.New("model caller required")

	// ErrPublisherRequired is returned when a publisher is not provided.
	ErrPublisherRequired = errors.New("publisher required")

	// ErrClipperRequired is returned when a clipper is not provided.
	ErrClipperRequired = errors.New("clipper required")
)
