// Copyright 2026 Poiesic Systems
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

// Package chunk splits extracted text into fixed-size windows for embedding.
package chunk

import "github.com/poiesic/ingrain/core"

// DefaultSize is the chunk window width in characters.
const DefaultSize = 800

// Split cuts text into consecutive non-overlapping windows of at most size
// characters. Boundaries are counted in runes so multi-byte characters are
// never split. The final chunk carries whatever remains; concatenating all
// chunk texts in index order reproduces the input exactly. Empty input
// yields no chunks.
func Split(text string, size int) []core.Chunk {
	if size <= 0 {
		size = DefaultSize
	}
	if text == "" {
		return nil
	}

	runes := []rune(text)
	chunks := make([]core.Chunk, 0, (len(runes)+size-1)/size)
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, core.Chunk{
			Index: len(chunks),
			Text:  string(runes[start:end]),
		})
	}
	return chunks
}
