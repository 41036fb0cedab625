package transcript

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mserrors "github.com/otherjamesbrown/meetscribe-cli/pkg/errors"
)

func TestFormat_EndToEnd(t *testing.T) {
	record := &MeetingRecord{
		Title: "Standup",
		Date:  "2024-01-01",
		Attendees: []Attendee{
			{Name: "Bo", Email: "b@x.com"},
		},
		SpeakerDirectory: SpeakerDirectory{"1": "Bo", "2": "Amy"},
		Captions: []Caption{
			{SpeakerID: 0, Text: "Hi", StartTimeSeconds: 0},
			{SpeakerID: 0, Text: "team", StartTimeSeconds: 2},
			{SpeakerID: 1, Text: "Hey", StartTimeSeconds: 5},
		},
	}

	expected := strings.Join([]string{
		"Standup | 2024-01-01",
		"",
		"Bo b@x.com",
		"",
		"00:00",
		"Bo",
		"Hi team",
		"",
		"00:05",
		"Amy",
		"Hey",
	}, "\n")

	got, err := Format(record, "")
	require.NoError(t, err)
	assert.Equal(t, expected, got)
}

func TestFormat_MissingDataDiagnostic(t *testing.T) {
	tests := []struct {
		name   string
		record *MeetingRecord
	}{
		{"nil record", nil},
		{"nil captions", &MeetingRecord{SpeakerDirectory: SpeakerDirectory{}}},
		{"nil directory", &MeetingRecord{Captions: []Caption{}}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Format(tc.record, "")
			assert.Equal(t, MissingDataMessage, got)
			assert.True(t, mserrors.IsMissingData(err))
		})
	}
}

func TestFormat_EmptyCaptionsHeaderOnly(t *testing.T) {
	record := &MeetingRecord{
		Title: "Planning",
		Date:  "2024-03-05",
		Attendees: []Attendee{
			{Name: "Bo", Email: "b@x.com"},
			{DisplayName: "Amy"},
		},
		SpeakerDirectory: SpeakerDirectory{"1": "Bo"},
		Captions:         []Caption{},
	}

	got, err := Format(record, "")
	require.NoError(t, err)
	assert.Equal(t, "Planning | 2024-03-05\n\nBo b@x.com\nAmy", got)
	assert.False(t, strings.HasSuffix(got, "\n"), "no stray trailing newline")
}

func TestFormat_EmptyRecordYieldsEmptyString(t *testing.T) {
	record := &MeetingRecord{
		SpeakerDirectory: SpeakerDirectory{},
		Captions:         []Caption{},
	}

	got, err := Format(record, "")
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestFormat_HeaderOmissions(t *testing.T) {
	captions := []Caption{{SpeakerID: 0, Text: "Hi", StartTimeSeconds: 0}}
	dir := SpeakerDirectory{"1": "Bo"}
	body := "00:00\nBo\nHi"

	tests := []struct {
		name     string
		record   *MeetingRecord
		location string
		expected string
	}{
		{
			"title only",
			&MeetingRecord{Title: "Sync", SpeakerDirectory: dir, Captions: captions},
			"",
			"Sync\n\n" + body,
		},
		{
			// The date rides on the title line; without a title it is dropped.
			"date without title",
			&MeetingRecord{Date: "2024-01-01", SpeakerDirectory: dir, Captions: captions},
			"",
			body,
		},
		{
			"location only becomes the header",
			&MeetingRecord{SpeakerDirectory: dir, Captions: captions},
			"https://meet.example.com/abc-defg-hij",
			"https://meet.example.com/abc-defg-hij\n\n" + body,
		},
		{
			"location query suffix stripped",
			&MeetingRecord{Title: "Sync", SpeakerDirectory: dir, Captions: captions},
			"https://meet.example.com/abc-defg-hij?authuser=1&hl=en",
			"Sync\nhttps://meet.example.com/abc-defg-hij\n\n" + body,
		},
		{
			"no header at all",
			&MeetingRecord{SpeakerDirectory: dir, Captions: captions},
			"",
			body,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Format(tc.record, tc.location)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestFormat_AttendeeLineVariants(t *testing.T) {
	record := &MeetingRecord{
		Attendees: []Attendee{
			{DisplayName: "Bo Birch", Email: "bo@x.com"},
			{Name: "Amy"},
			{Email: "carol@x.com"},
			{}, // neither name nor email: omitted, no blank line
		},
		SpeakerDirectory: SpeakerDirectory{},
		Captions:         []Caption{},
	}

	got, err := Format(record, "")
	require.NoError(t, err)
	assert.Equal(t, "Bo Birch bo@x.com\nAmy\ncarol@x.com", got)
}

func TestFormat_OneHeaderPerSpeakerRun(t *testing.T) {
	record := &MeetingRecord{
		SpeakerDirectory: SpeakerDirectory{"1": "Bo", "2": "Amy"},
		Captions: []Caption{
			{SpeakerID: 0, Text: "one", StartTimeSeconds: 0},
			{SpeakerID: 0, Text: "two", StartTimeSeconds: 1},
			{SpeakerID: 1, Text: "three", StartTimeSeconds: 2},
			{SpeakerID: 0, Text: "four", StartTimeSeconds: 3},
			{SpeakerID: 0, Text: "five", StartTimeSeconds: 4},
		},
	}

	got, err := Format(record, "")
	require.NoError(t, err)

	// Three maximal same-speaker runs, in original order: Bo twice.
	assert.Equal(t, strings.Join([]string{
		"00:00", "Bo", "one two",
		"",
		"00:02", "Amy", "three",
		"",
		"00:03", "Bo", "four five",
	}, "\n"), got)
	assert.Equal(t, 2, strings.Count(got, "Bo\n"))
}

func TestFormat_SpeakerZeroNotConfusedWithSentinel(t *testing.T) {
	// Speaker id 0 is a legitimate first speaker: exactly one header must be
	// emitted for its run, not zero and not one per caption.
	record := &MeetingRecord{
		SpeakerDirectory: SpeakerDirectory{"1": "Bo"},
		Captions: []Caption{
			{SpeakerID: 0, Text: "first", StartTimeSeconds: 0},
			{SpeakerID: 0, Text: "second", StartTimeSeconds: 1},
		},
	}

	got, err := Format(record, "")
	require.NoError(t, err)
	assert.Equal(t, "00:00\nBo\nfirst second", got)
}

func TestFormat_UnknownSpeakerFallback(t *testing.T) {
	record := &MeetingRecord{
		SpeakerDirectory: SpeakerDirectory{"1": "Bo"},
		Captions: []Caption{
			{SpeakerID: 4, Text: "who dis", StartTimeSeconds: 61},
		},
	}

	got, err := Format(record, "")
	require.NoError(t, err)
	assert.Equal(t, "01:01\nUnknown Speaker 5\nwho dis", got)
}

func TestFormat_EmptyFragmentSpacingPreserved(t *testing.T) {
	// An empty fragment between two non-empty fragments of the same run
	// leaves a double space. Observable legacy behavior, kept on purpose.
	record := &MeetingRecord{
		SpeakerDirectory: SpeakerDirectory{"1": "Bo"},
		Captions: []Caption{
			{SpeakerID: 0, Text: "Hi", StartTimeSeconds: 0},
			{SpeakerID: 0, Text: "", StartTimeSeconds: 1},
			{SpeakerID: 0, Text: "team", StartTimeSeconds: 2},
		},
	}

	got, err := Format(record, "")
	require.NoError(t, err)
	assert.Equal(t, "00:00\nBo\nHi  team", got)
}

func TestFormat_CaptionsNeverReordered(t *testing.T) {
	// Timestamps out of order stay out of order: positional order is
	// authoritative.
	record := &MeetingRecord{
		SpeakerDirectory: SpeakerDirectory{"1": "Bo", "2": "Amy"},
		Captions: []Caption{
			{SpeakerID: 1, Text: "later first", StartTimeSeconds: 90},
			{SpeakerID: 0, Text: "earlier second", StartTimeSeconds: 10},
		},
	}

	got, err := Format(record, "")
	require.NoError(t, err)
	assert.Equal(t, "01:30\nAmy\nlater first\n\n00:10\nBo\nearlier second", got)
}

func TestFormat_DoesNotMutateRecord(t *testing.T) {
	captions := []Caption{
		{SpeakerID: 0, Text: "Hi", StartTimeSeconds: 0},
		{SpeakerID: 1, Text: "Hey", StartTimeSeconds: 5},
	}
	record := &MeetingRecord{
		Title:            "Sync",
		SpeakerDirectory: SpeakerDirectory{"1": "Bo", "2": "Amy"},
		Captions:         captions,
	}

	_, err := Format(record, "")
	require.NoError(t, err)

	assert.Equal(t, "Hi", record.Captions[0].Text)
	assert.Equal(t, "Hey", record.Captions[1].Text)
	assert.Equal(t, "Bo", record.SpeakerDirectory["1"])
}

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		seconds  float64
		expected string
	}{
		{0, "00:00"},
		{5, "00:05"},
		{65, "01:05"},
		{59.9, "00:59"},
		{600, "10:00"},
		{3661, "61:01"}, // no hour rollover
		{7509.4, "125:09"},
	}

	for _, tc := range tests {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, FormatTimestamp(tc.seconds))
		})
	}
}
