// Package transcript formats raw meeting caption records into plain-text
// transcript documents.
package transcript

// Caption is a single timestamped, speaker-attributed sentence fragment.
// Captions arrive in chronological order; positional order in the slice is
// authoritative and SequenceIndex is informational only.
type Caption struct {
	SequenceIndex    int     `json:"sequence,omitempty"`
	SpeakerID        int     `json:"speakerId"`
	Text             string  `json:"text"`
	StartTimeSeconds float64 `json:"startTime"`
	EndTimeSeconds   float64 `json:"endTime,omitempty"`
}

// SpeakerDirectory maps a one-based string key (speaker id + 1, stringified)
// to a display name. Keys may be sparse: a caption's speaker id is not
// guaranteed to have an entry.
type SpeakerDirectory map[string]string

// Attendee is one meeting participant from the invite list. All fields are
// optional in practice.
type Attendee struct {
	DisplayName string `json:"displayName,omitempty"`
	Name        string `json:"name,omitempty"`
	Email       string `json:"email,omitempty"`
}

// MeetingRecord is the full parsed record for one meeting as returned by the
// captions API. It is read-only for the duration of a Format call and is
// never mutated.
type MeetingRecord struct {
	Title            string           `json:"title,omitempty"`
	Date             string           `json:"date,omitempty"`
	Attendees        []Attendee       `json:"attendees"`
	SpeakerDirectory SpeakerDirectory `json:"speakers"`
	Captions         []Caption        `json:"captions"`
}
