// Package meetingid extracts a meeting identifier from a host-application
// location. The captions API addresses meetings by an opaque identifier that
// appears as the last path segment of the location; historical locations use
// a composite "name::id" segment where only the part after the last "::" is
// the identifier.
package meetingid

import (
	"fmt"
	"strings"

	mserrors "github.com/otherjamesbrown/meetscribe-cli/pkg/errors"
)

// FromLocation extracts the meeting identifier from a location, which may be
// a full URL, a path, or a bare identifier. Query-string and fragment
// suffixes are ignored. Returns ErrValidation when no identifier is present.
func FromLocation(location string) (string, error) {
	trimmed := strings.TrimSpace(location)
	if trimmed == "" {
		return "", fmt.Errorf("empty location: %w", mserrors.ErrValidation)
	}

	// Drop query and fragment suffixes before looking at path segments.
	if i := strings.IndexAny(trimmed, "?#"); i >= 0 {
		trimmed = trimmed[:i]
	}

	// Strip a scheme so the host does not count as a segment of interest.
	if i := strings.Index(trimmed, "://"); i >= 0 {
		trimmed = trimmed[i+3:]
	}

	trimmed = strings.Trim(trimmed, "/")
	segments := strings.Split(trimmed, "/")
	segment := segments[len(segments)-1]

	// Legacy composite form: everything after the last "::" is the id.
	if i := strings.LastIndex(segment, "::"); i >= 0 {
		segment = segment[i+2:]
	}

	if segment == "" {
		return "", fmt.Errorf("no meeting id in location %q: %w", location, mserrors.ErrValidation)
	}
	return segment, nil
}
