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


// Package jsonsplit reads pre-split fragment files produced by an
// external splitter. Each document key maps to <dir>/<key>.json holding
// a JSON array of fragments, the same shape the checkpoint snapshots
// use.
package jsonsplit

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/helikon/arxdialog/core"
	"github.com/helikon/arxdialog/rag"
)

// Splitter loads fragments from JSON files under a directory.
type Splitter struct {
	dir string
}

var _ rag.Splitter = (*Splitter)(nil)

// NewSplitter creates a splitter reading from dir.
func NewSplitter(dir string) *Splitter {
	return &Splitter{dir: dir}
}

// FetchAndSplit reads the fragment file for the document key.
func (s *Splitter) FetchAndSplit(ctx context.Context, documentKey string) ([]core.Fragment, error) {
	if err := core.ValidateDocumentKey(documentKey); err != nil {
		return nil, err
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	path := filepath.Join(s.dir, documentKey+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fragment file %s: %w", path, err)
	}

	var fragments []core.Fragment
	if err := json.Unmarshal(data, &fragments); err != nil {
		return nil, fmt.Errorf("parsing fragment file %s: %w", path, err)
	}
	return fragments, nil
}
