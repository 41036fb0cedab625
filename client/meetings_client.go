package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"

	"github.com/otherjamesbrown/meetscribe-cli/pkg/transcript"
)

// meetingPayload is the wire shape of one meeting as returned by the
// captions API. Optional fields may be absent; Captions and Speakers stay
// nil when missing so the formatter can report the missing-data diagnostic.
type meetingPayload struct {
	Title     string            `json:"title"`
	Date      string            `json:"date"`
	Attendees []attendeePayload `json:"attendees"`
	Speakers  map[string]string `json:"speakers"`
	Captions  []captionPayload  `json:"captions"`
}

type attendeePayload struct {
	DisplayName string `json:"displayName"`
	Name        string `json:"name"`
	Email       string `json:"email"`
}

type captionPayload struct {
	Sequence  int     `json:"sequence"`
	SpeakerID int     `json:"speakerId"`
	Text      string  `json:"text"`
	StartTime float64 `json:"startTime"`
	EndTime   float64 `json:"endTime"`
}

// GetMeeting fetches one meeting record by its opaque identifier.
func (c *Client) GetMeeting(ctx context.Context, meetingID string) (*transcript.MeetingRecord, error) {
	if meetingID == "" {
		return nil, fmt.Errorf("meeting id is required")
	}

	var payload meetingPayload
	path := "/api/v2/meetings/" + url.PathEscape(meetingID)
	err := c.getJSON(ctx, path, func(body io.Reader) error {
		return json.NewDecoder(body).Decode(&payload)
	})
	if err != nil {
		return nil, fmt.Errorf("get meeting %s: %w", meetingID, err)
	}

	return payload.toRecord(), nil
}

// toRecord maps the wire payload onto the formatter's record type. Nil-ness
// of Captions and Speakers is preserved deliberately.
func (p *meetingPayload) toRecord() *transcript.MeetingRecord {
	record := &transcript.MeetingRecord{
		Title:            p.Title,
		Date:             p.Date,
		SpeakerDirectory: transcript.SpeakerDirectory(p.Speakers),
	}

	if p.Attendees != nil {
		record.Attendees = make([]transcript.Attendee, len(p.Attendees))
		for i, a := range p.Attendees {
			record.Attendees[i] = transcript.Attendee{
				DisplayName: a.DisplayName,
				Name:        a.Name,
				Email:       a.Email,
			}
		}
	}

	if p.Captions != nil {
		record.Captions = make([]transcript.Caption, len(p.Captions))
		for i, c := range p.Captions {
			record.Captions[i] = transcript.Caption{
				SequenceIndex:    c.Sequence,
				SpeakerID:        c.SpeakerID,
				Text:             c.Text,
				StartTimeSeconds: c.StartTime,
				EndTimeSeconds:   c.EndTime,
			}
		}
	}

	return record
}
