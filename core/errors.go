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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidPassage indicates a Passage failed validation.
	ErrInvalidPassage = errors.New("invalid passage")

	// ErrEmptyTalkID indicates the TalkID field is empty.
	ErrEmptyTalkID = errors.New("talk id cannot be empty")

	// ErrNegativeChunkIndex indicates a chunk index below zero.
	ErrNegativeChunkIndex = errors.New("chunk index cannot be negative")

	// ErrEmptyText indicates the Text field is empty.
	ErrEmptyText = errors.New("passage text cannot be empty")

	// ErrInvalidTiming indicates inconsistent media timing fields.
	ErrInvalidTiming = errors.New("invalid media timing")

	// ErrMalformedRef indicates a passage ref string that does not follow
	// the "talk_id:chunk_index" form.
	ErrMalformedRef = errors.New("malformed passage ref")

	// ErrMalformedTimecode indicates a clock string that is not HH:MM:SS.
	ErrMalformedTimecode = errors.New("malformed timecode")
)
