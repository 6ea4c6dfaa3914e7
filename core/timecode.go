package core

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// mediaBaseURL is the canonical base for time-anchored source media links.
const mediaBaseURL = "https://youtu.be"

// wholeSeconds is the one conversion from a raw offset to link/clock
// seconds. Both MediaLink and FormatTimecode go through it, so the two
// representations can never disagree on rounding.
func wholeSeconds(seconds float64) int {
	if seconds < 0 || math.IsNaN(seconds) {
		return 0
	}
	return int(math.Floor(seconds))
}

// MediaLink builds a deep link into the source media at the given offset.
// Negative or unknown offsets clamp to the start of the media. Returns ""
// when there is no media identifier.
func MediaLink(mediaID string, startSeconds float64) string {
	if mediaID == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s?t=%d", mediaBaseURL, mediaID, wholeSeconds(startSeconds))
}

// PlainMediaLink builds a link to the source media without a time anchor,
// for passages that have a media id but no alignment.
func PlainMediaLink(mediaID string) string {
	if mediaID == "" {
		return ""
	}
	return mediaBaseURL + "/" + mediaID
}

// FormatTimecode renders an offset as HH:MM:SS. Negative offsets clamp to
// 00:00:00.
func FormatTimecode(seconds float64) string {
	s := wholeSeconds(seconds)
	return fmt.Sprintf("%02d:%02d:%02d", s/3600, (s%3600)/60, s%60)
}

// ParseTimecode parses an HH:MM:SS (or MM:SS) clock string into whole
// seconds.
func ParseTimecode(tc string) (int, error) {
	parts := strings.Split(strings.TrimSpace(tc), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("%w: %q", ErrMalformedTimecode, tc)
	}
	total := 0
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("%w: %q", ErrMalformedTimecode, tc)
		}
		total = total*60 + n
	}
	return total, nil
}

// LinkSeconds extracts the whole-second offset a MediaLink would carry for
// the given raw offset. Exposed so callers can assert the round-trip
// property without parsing URLs.
func LinkSeconds(startSeconds float64) int {
	return wholeSeconds(startSeconds)
}
