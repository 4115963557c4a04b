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


package clip

import (
	"errors"

	"github.com/helikon/arxdialog/rag"
	"github.com/pkoukk/tiktoken-go"
)

// fallbackEncoding is used when the model name has no registered encoding.
const fallbackEncoding = "cl100k_base"

// ErrInvalidBudget is returned when the token budget is not positive.
var ErrInvalidBudget = errors.New("token budget must be positive")

// codec is the token encode/decode surface the clipper needs.
type codec interface {
	Encode(text string, allowedSpecial, disallowedSpecial []string) []int
	Decode(tokens []int) string
}

// Clipper trims text to a token budget, keeping the head and tail and
// dropping the middle. Middle content is the least load-bearing part of a
// long query: the head states the question, the tail carries the most
// recent constraints.
type Clipper struct {
	codec codec
}

var _ rag.Clipper = (*Clipper)(nil)

// NewClipper creates a clipper using the token encoding of the given
// model, falling back to cl100k_base for unknown models.
func NewClipper(model string) (*Clipper, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding(fallbackEncoding)
		if err != nil {
			return nil, err
		}
	}
	return &Clipper{codec: enc}, nil
}

// newClipperWithCodec is the test seam.
func newClipperWithCodec(c codec) *Clipper {
	return &Clipper{codec: c}
}

// Clip returns text trimmed to at most maxTokens tokens. The second
// return value reports whether the text was altered.
func (c *Clipper) Clip(text string, maxTokens int) (string, bool, error) {
	if maxTokens <= 0 {
		return "", false, ErrInvalidBudget
	}

	tokens := c.codec.Encode(text, nil, nil)
	if len(tokens) <= maxTokens {
		return text, false, nil
	}

	half := maxTokens / 2
	head := c.codec.Decode(tokens[:half])
	tail := c.codec.Decode(tokens[len(tokens)-(maxTokens-half):])
	return head + "\n...\n" + tail, true, nil
}

// CountTokens reports the token cost of the text, satisfying the index's
// TokenCounter.
func (c *Clipper) CountTokens(text string) int {
	return len(c.codec.Encode(text, nil, nil))
}
