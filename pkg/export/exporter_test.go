package export

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mserrors "github.com/otherjamesbrown/meetscribe-cli/pkg/errors"
	"github.com/otherjamesbrown/meetscribe-cli/pkg/transcript"
)

type fakeFetcher struct {
	record *transcript.MeetingRecord
	err    error
	calls  int
	lastID string
}

func (f *fakeFetcher) GetMeeting(_ context.Context, meetingID string) (*transcript.MeetingRecord, error) {
	f.calls++
	f.lastID = meetingID
	return f.record, f.err
}

type fakeCache struct {
	records map[string]*transcript.MeetingRecord
	puts    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{records: make(map[string]*transcript.MeetingRecord)}
}

func (c *fakeCache) Get(_ context.Context, meetingID string) *transcript.MeetingRecord {
	return c.records[meetingID]
}

func (c *fakeCache) Put(_ context.Context, meetingID string, record *transcript.MeetingRecord) {
	c.puts++
	c.records[meetingID] = record
}

type fakeDeliverer struct {
	texts []string
	err   error
}

func (d *fakeDeliverer) Write(text string) error {
	if d.err != nil {
		return d.err
	}
	d.texts = append(d.texts, text)
	return nil
}

func completeRecord() *transcript.MeetingRecord {
	return &transcript.MeetingRecord{
		Title: "Standup",
		SpeakerDirectory: transcript.SpeakerDirectory{
			"1": "Bo",
		},
		Captions: []transcript.Caption{
			{SpeakerID: 0, Text: "Hi team", StartTimeSeconds: 0},
		},
	}
}

func TestExportFetchesFormatsAndDelivers(t *testing.T) {
	fetcher := &fakeFetcher{record: completeRecord()}
	deliverer := &fakeDeliverer{}
	e := New(fetcher, nil, deliverer, nil)

	result, err := e.Export(context.Background(), "https://meet.example.com/abc-defg-hij", "")
	require.NoError(t, err)

	assert.Equal(t, "abc-defg-hij", result.MeetingID)
	assert.Equal(t, "abc-defg-hij", fetcher.lastID)
	assert.True(t, result.Delivered)
	assert.False(t, result.FromCache)
	require.Len(t, deliverer.texts, 1)
	assert.Contains(t, deliverer.texts[0], "00:00\nBo\nHi team")
}

func TestExportInvalidLocation(t *testing.T) {
	e := New(&fakeFetcher{}, nil, nil, nil)

	_, err := e.Export(context.Background(), "   ", "")
	assert.True(t, mserrors.IsValidation(err))
}

func TestExportFetchErrorPropagates(t *testing.T) {
	fetcher := &fakeFetcher{err: mserrors.ErrNotFound}
	e := New(fetcher, nil, &fakeDeliverer{}, nil)

	_, err := e.Export(context.Background(), "abc-defg-hij", "")
	assert.True(t, mserrors.IsNotFound(err))
}

func TestExportMissingDataNotDelivered(t *testing.T) {
	fetcher := &fakeFetcher{record: &transcript.MeetingRecord{Title: "Standup"}}
	deliverer := &fakeDeliverer{}
	e := New(fetcher, nil, deliverer, nil)

	result, err := e.Export(context.Background(), "abc-defg-hij", "")
	require.Error(t, err)

	assert.True(t, IsMissingData(err))
	assert.Equal(t, transcript.MissingDataMessage, result.Document)
	assert.False(t, result.Delivered)
	assert.Empty(t, deliverer.texts, "diagnostic must never reach the clipboard")
}

func TestExportServesFromCache(t *testing.T) {
	cache := newFakeCache()
	cache.records["abc-defg-hij"] = completeRecord()
	fetcher := &fakeFetcher{}
	e := New(fetcher, cache, &fakeDeliverer{}, nil)

	result, err := e.Export(context.Background(), "abc-defg-hij", "")
	require.NoError(t, err)

	assert.True(t, result.FromCache)
	assert.Zero(t, fetcher.calls)
}

func TestExportCachesFetchedRecord(t *testing.T) {
	cache := newFakeCache()
	fetcher := &fakeFetcher{record: completeRecord()}
	e := New(fetcher, cache, &fakeDeliverer{}, nil)

	_, err := e.Export(context.Background(), "abc-defg-hij", "")
	require.NoError(t, err)

	assert.Equal(t, 1, cache.puts)
	assert.NotNil(t, cache.records["abc-defg-hij"])
}

func TestExportDoesNotCacheIncompleteRecord(t *testing.T) {
	cache := newFakeCache()
	fetcher := &fakeFetcher{record: &transcript.MeetingRecord{Title: "Standup"}}
	e := New(fetcher, cache, nil, nil)

	_, err := e.Export(context.Background(), "abc-defg-hij", "")
	require.Error(t, err)
	assert.Zero(t, cache.puts)
}

func TestExportDeliveryFailure(t *testing.T) {
	fetcher := &fakeFetcher{record: completeRecord()}
	deliverer := &fakeDeliverer{err: errors.New("xclip: command not found")}
	e := New(fetcher, nil, deliverer, nil)

	result, err := e.Export(context.Background(), "abc-defg-hij", "")
	require.Error(t, err)

	assert.Contains(t, err.Error(), "delivering transcript")
	assert.False(t, result.Delivered)
	assert.NotEmpty(t, result.Document, "document survives a delivery failure")
}

func TestExportWithSourceLocationHeader(t *testing.T) {
	fetcher := &fakeFetcher{record: completeRecord()}
	e := New(fetcher, nil, nil, nil)

	url := "https://meet.example.com/abc-defg-hij?authuser=0"
	result, err := e.Export(context.Background(), url, url)
	require.NoError(t, err)

	assert.Contains(t, result.Document, "https://meet.example.com/abc-defg-hij\n")
	assert.NotContains(t, result.Document, "authuser")
}
