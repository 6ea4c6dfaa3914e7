// Copyright 2025 Poiesic Systems
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


// Package answer composes citation-grounded answers from retrieved passages.
//
// The Synthesizer takes a ranked, diversity-ordered passage list (from
// the search package) and produces a bounded-length prose answer, a
// structured citation list, and a human-readable sources block with
// time-anchored media links.
//
// Composition is a two-variant outcome: generated prose from the
// language model when it is reachable and returns text, else a
// deterministic extractive paragraph built from trimmed passage
// excerpts. An empty passage list is a terminal, non-error outcome with
// a fixed message. The answer mode tags which branch produced the text
// so callers and tests can distinguish them.
//
// Chunk identifiers never appear in human-facing text; they live only
// in the structured citation records.
package answer
