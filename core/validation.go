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

import "fmt"

// ValidatePassage validates a Passage according to domain rules.
//
// Validation rules:
//   - TalkID must not be empty
//   - ChunkIndex must not be negative
//   - Text must not be empty
//   - When MediaID is set, known start/end offsets must be ordered
//
// NOT validated (populated by the ingestion pipeline):
//   - RowID (assigned at ingest)
//   - Vector (empty until embedding runs)
//   - Checksum and derived timing labels
func ValidatePassage(p *Passage) error {
	if p == nil {
		return fmt.Errorf("%w: passage is nil", ErrInvalidPassage)
	}

	if p.TalkID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidPassage, ErrEmptyTalkID)
	}

	if p.ChunkIndex < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidPassage, ErrNegativeChunkIndex)
	}

	if p.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidPassage, ErrEmptyText)
	}

	if p.MediaID != "" && p.StartSeconds >= 0 && p.EndSeconds >= 0 && p.EndSeconds < p.StartSeconds {
		return fmt.Errorf("%w: %w: end %.1f before start %.1f",
			ErrInvalidPassage, ErrInvalidTiming, p.EndSeconds, p.StartSeconds)
	}

	return nil
}

// NormalizeTiming reconciles the two timing representations so that the
// seconds offsets and the clock labels always agree. Unknown offsets stay
// at -1 with empty labels; a passage without media keeps no timing at all.
func (p *Passage) NormalizeTiming() error {
	if p.MediaID == "" {
		p.StartSeconds = -1
		p.EndSeconds = -1
		p.StartLabel = ""
		p.EndLabel = ""
		return nil
	}

	var err error
	if p.StartSeconds, p.StartLabel, err = reconcile(p.StartSeconds, p.StartLabel); err != nil {
		return err
	}
	if p.EndSeconds, p.EndLabel, err = reconcile(p.EndSeconds, p.EndLabel); err != nil {
		return err
	}
	return nil
}

// reconcile derives whichever of (seconds, label) is missing from the
// other, using the single shared floor-based conversion.
func reconcile(seconds float64, label string) (float64, string, error) {
	switch {
	case seconds >= 0:
		return seconds, FormatTimecode(seconds), nil
	case label != "":
		secs, err := ParseTimecode(label)
		if err != nil {
			return -1, "", err
		}
		return float64(secs), FormatTimecode(float64(secs)), nil
	default:
		return -1, "", nil
	}
}
