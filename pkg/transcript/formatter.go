package transcript

import (
	"fmt"
	"math"
	"strings"

	mserrors "github.com/otherjamesbrown/meetscribe-cli/pkg/errors"
)

// MissingDataMessage is returned by Format when the record lacks the caption
// sequence or the speaker directory. It is a valid string result, not a
// panic, so callers can still surface it to a user; they must not copy it
// silently as if formatting succeeded.
const MissingDataMessage = "Error: Could not format transcript due to missing data."

// Format renders a meeting record as a plain-text transcript document: a
// header block (title, date, source location, attendees) followed by
// speaker-segmented dialogue, each segment prefixed by a MM:SS timestamp and
// the resolved speaker name.
//
// sourceLocation is optional; when non-empty it is added to the header with
// any query-string suffix stripped. The result is a pure function of the
// record and sourceLocation. The record is never mutated and captions are
// consumed strictly in the order given, never re-sorted by timestamp.
//
// When the record is nil or is missing Captions or SpeakerDirectory, Format
// returns MissingDataMessage together with errors.ErrMissingData so callers
// can distinguish the diagnostic from a real document.
func Format(record *MeetingRecord, sourceLocation string) (string, error) {
	if record == nil || record.Captions == nil || record.SpeakerDirectory == nil {
		return MissingDataMessage, mserrors.ErrMissingData
	}

	header := buildHeader(record, sourceLocation)
	body := buildBody(record)

	if header == "" {
		return body, nil
	}
	if body == "" {
		return header, nil
	}
	return header + "\n\n" + body, nil
}

// buildHeader assembles the title/date/location/attendee block. Every part is
// optional and independently omissible; the date is only emitted alongside a
// title.
func buildHeader(record *MeetingRecord, sourceLocation string) string {
	var header strings.Builder

	if record.Title != "" {
		header.WriteString(record.Title)
		if record.Date != "" {
			header.WriteString(" | ")
			header.WriteString(record.Date)
		}
	}

	if sourceLocation != "" {
		if header.Len() > 0 {
			header.WriteString("\n")
		}
		header.WriteString(stripQuery(sourceLocation))
	}

	if block := attendeeBlock(record.Attendees); block != "" {
		if header.Len() > 0 {
			header.WriteString("\n\n")
		}
		header.WriteString(block)
	}

	return header.String()
}

// attendeeBlock renders one line per attendee: "name email" when both are
// present, otherwise whichever exists. Attendees with neither a name-like
// field nor an email are omitted entirely.
func attendeeBlock(attendees []Attendee) string {
	lines := make([]string, 0, len(attendees))
	for _, a := range attendees {
		name := a.DisplayName
		if name == "" {
			name = a.Name
		}
		switch {
		case name != "" && a.Email != "":
			lines = append(lines, name+" "+a.Email)
		case name != "":
			lines = append(lines, name)
		case a.Email != "":
			lines = append(lines, a.Email)
		}
	}
	return strings.Join(lines, "\n")
}

// buildBody groups the ordered caption sequence into speaker runs in a single
// pass. Fragments within one run are space-joined; each run is preceded by a
// timestamp line and the resolved speaker name.
//
// lastSpeakerID starts in an explicit "no speaker yet" state (haveSpeaker)
// rather than a magic number, since speaker id 0 is a legitimate and common
// first speaker.
func buildBody(record *MeetingRecord) string {
	var (
		output      strings.Builder
		accumulator string
		lastSpeaker int
		haveSpeaker bool
	)

	flush := func() {
		if accumulator != "" {
			output.WriteString(strings.TrimSpace(accumulator))
			output.WriteString("\n")
			accumulator = ""
		}
	}

	for _, caption := range record.Captions {
		if !haveSpeaker || caption.SpeakerID != lastSpeaker {
			flush()
			if output.Len() > 0 {
				output.WriteString("\n")
			}
			output.WriteString(FormatTimestamp(caption.StartTimeSeconds))
			output.WriteString("\n")
			output.WriteString(ResolveSpeaker(caption.SpeakerID, record.SpeakerDirectory))
			output.WriteString("\n")
			lastSpeaker = caption.SpeakerID
			haveSpeaker = true
		}

		if accumulator == "" {
			accumulator = caption.Text
		} else {
			accumulator += " " + caption.Text
		}
	}
	flush()

	return strings.TrimSpace(output.String())
}

// FormatTimestamp renders a non-negative offset from meeting start as MM:SS.
// There is no hour component: durations of an hour or more keep counting
// minutes (3661s renders as "61:01"), matching the legacy document format.
func FormatTimestamp(totalSeconds float64) string {
	minutes := int(math.Floor(totalSeconds / 60))
	seconds := int(math.Floor(math.Mod(totalSeconds, 60)))
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

// stripQuery removes a query-string suffix ("?...") from a location.
func stripQuery(location string) string {
	if i := strings.Index(location, "?"); i >= 0 {
		return location[:i]
	}
	return location
}
