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


package ingest

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/helikon/arxdialog/core"
)

// Tracker runs ingestions in the background and records per-document task
// state. At most one ingestion per document key is in flight at a time;
// completion is signalled through a per-task channel rather than polling.
type Tracker struct {
	pipeline *Pipeline
	mu       sync.Mutex
	tasks    map[string]*trackedTask
	logger   *slog.Logger
}

type trackedTask struct {
	task core.IngestionTask
	done chan struct{}
}

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker) error

// WithTrackerLogger sets a custom logger.
// Default is slog.Default().
func WithTrackerLogger(logger *slog.Logger) TrackerOption {
	return func(t *Tracker) error {
		if logger == nil {
			logger = slog.Default()
		}
		t.logger = logger
		return nil
	}
}

// NewTracker creates a tracker driving the given pipeline.
func NewTracker(pipeline *Pipeline, opts ...TrackerOption) (*Tracker, error) {
	if pipeline == nil {
		return nil, ErrPipelineRequired
	}

	t := &Tracker{
		pipeline: pipeline,
		tasks:    make(map[string]*trackedTask),
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(t); err != nil {
			return nil, err
		}
	}

	return t, nil
}

// Submit starts a background ingestion for the document key. It returns
// ErrIngestionInFlight when an ingestion for the same key has been
// submitted and has not yet finished.
func (t *Tracker) Submit(documentKey string) error {
	if documentKey == "" {
		return core.ErrEmptyDocumentKey
	}

	t.mu.Lock()
	if existing, ok := t.tasks[documentKey]; ok {
		status := existing.task.Status
		if status == core.TaskPending || status == core.TaskProcessing {
			t.mu.Unlock()
			return ErrIngestionInFlight
		}
	}

	tracked := &trackedTask{
		task: core.IngestionTask{
			DocumentKey: documentKey,
			Status:      core.TaskPending,
			StartedAt:   time.Now().UTC(),
		},
		done: make(chan struct{}),
	}
	t.tasks[documentKey] = tracked
	t.mu.Unlock()

	go t.run(tracked)
	return nil
}

func (t *Tracker) run(tracked *trackedTask) {
	defer close(tracked.done)

	t.setStatus(tracked, func(task *core.IngestionTask) {
		task.Status = core.TaskProcessing
	})

	committed, err := t.pipeline.Ingest(context.Background(), tracked.task.DocumentKey)

	t.setStatus(tracked, func(task *core.IngestionTask) {
		task.FinishedAt = time.Now().UTC()
		if err != nil {
			task.Status = core.TaskFailed
			task.Err = err.Error()
			return
		}
		task.Status = core.TaskCompleted
		task.Fragments = committed
	})

	if err != nil {
		t.logger.Error("ingestion failed", "documentKey", tracked.task.DocumentKey, "err", err)
	}
}

func (t *Tracker) setStatus(tracked *trackedTask, mutate func(*core.IngestionTask)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	mutate(&tracked.task)
}

// AwaitCompletion blocks until the document's ingestion finishes or the
// timeout elapses. It returns true only when the task completed
// successfully. An unknown key returns false immediately.
func (t *Tracker) AwaitCompletion(documentKey string, timeout time.Duration) bool {
	t.mu.Lock()
	tracked, ok := t.tasks[documentKey]
	t.mu.Unlock()
	if !ok {
		return false
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-tracked.done:
		task, _ := t.Task(documentKey)
		return task.Status == core.TaskCompleted
	case <-timer.C:
		t.logger.Warn("timed out waiting for ingestion", "documentKey", documentKey, "timeout", timeout)
		return false
	}
}

// Task returns a snapshot of the document's task state.
func (t *Tracker) Task(documentKey string) (core.IngestionTask, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	tracked, ok := t.tasks[documentKey]
	if !ok {
		return core.IngestionTask{}, false
	}
	return tracked.task, true
}
