// Package export orchestrates one transcript export: resolve the meeting id
// from a location, fetch the meeting record (cache-aside when a cache is
// configured), format it, and deliver the document.
package export

import (
	"context"
	"fmt"

	mserrors "github.com/otherjamesbrown/meetscribe-cli/pkg/errors"
	"github.com/otherjamesbrown/meetscribe-cli/pkg/logging"
	"github.com/otherjamesbrown/meetscribe-cli/pkg/meetingid"
	"github.com/otherjamesbrown/meetscribe-cli/pkg/transcript"
)

// Fetcher retrieves one meeting record from the captions API.
type Fetcher interface {
	GetMeeting(ctx context.Context, meetingID string) (*transcript.MeetingRecord, error)
}

// Cache is an optional record cache. Implementations must treat failures as
// misses; Get returns nil on a miss.
type Cache interface {
	Get(ctx context.Context, meetingID string) *transcript.MeetingRecord
	Put(ctx context.Context, meetingID string, record *transcript.MeetingRecord)
}

// Deliverer places the finished document somewhere the user can use it.
type Deliverer interface {
	Write(text string) error
}

// Result describes one completed (or failed) export.
type Result struct {
	MeetingID string `json:"meeting_id"`
	Document  string `json:"document"`
	FromCache bool   `json:"from_cache"`
	Delivered bool   `json:"delivered"`
}

// Exporter runs transcript exports. All collaborators are injected; the
// Exporter itself holds no mutable state and is safe for concurrent use.
type Exporter struct {
	fetcher   Fetcher
	cache     Cache
	deliverer Deliverer
	log       logging.Logger
}

// New creates an Exporter. cache may be nil (no caching); deliverer may be
// nil (format only, no delivery).
func New(fetcher Fetcher, cache Cache, deliverer Deliverer, log logging.Logger) *Exporter {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Exporter{
		fetcher:   fetcher,
		cache:     cache,
		deliverer: deliverer,
		log:       log,
	}
}

// Export produces and delivers the transcript for the meeting at location.
// sourceLocation, when non-empty, is included in the document header.
//
// When the fetched record cannot be formatted, the returned Result still
// carries the formatter's diagnostic string so callers can show it, but the
// error is non-nil and the diagnostic is never delivered.
func (e *Exporter) Export(ctx context.Context, location, sourceLocation string) (*Result, error) {
	id, err := meetingid.FromLocation(location)
	if err != nil {
		return nil, fmt.Errorf("resolving meeting id: %w", err)
	}

	log := e.log.With(logging.F("meeting_id", id))
	result := &Result{MeetingID: id}

	record := e.lookupCache(ctx, id)
	if record != nil {
		result.FromCache = true
		log.Debug("meeting record served from cache")
	} else {
		record, err = e.fetcher.GetMeeting(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("fetching meeting: %w", err)
		}
		log.Debug("meeting record fetched",
			logging.F("captions", len(record.Captions)),
			logging.F("attendees", len(record.Attendees)))
		e.storeCache(ctx, id, record)
	}

	document, err := transcript.Format(record, sourceLocation)
	result.Document = document
	if err != nil {
		// The diagnostic is a user-facing message, not a transcript. Surface
		// it, but never copy it as if the export succeeded.
		return result, fmt.Errorf("formatting transcript: %w", err)
	}

	if e.deliverer != nil {
		if err := e.deliverer.Write(document); err != nil {
			return result, fmt.Errorf("delivering transcript: %w", err)
		}
		result.Delivered = true
		log.Info("transcript delivered", logging.F("bytes", len(document)))
	}

	return result, nil
}

// lookupCache returns a cached record, or nil when no cache is configured,
// the record is missing, or the cached record is incomplete.
func (e *Exporter) lookupCache(ctx context.Context, id string) *transcript.MeetingRecord {
	if e.cache == nil {
		return nil
	}
	return e.cache.Get(ctx, id)
}

// storeCache caches a record when it is complete enough to format.
func (e *Exporter) storeCache(ctx context.Context, id string, record *transcript.MeetingRecord) {
	if e.cache == nil {
		return
	}
	if record.Captions == nil || record.SpeakerDirectory == nil {
		// An incomplete record would only replay the missing-data diagnostic.
		return
	}
	e.cache.Put(ctx, id, record)
}

// IsMissingData reports whether an Export error was the formatter's
// missing-data diagnostic rather than a transport failure.
func IsMissingData(err error) bool {
	return mserrors.IsMissingData(err)
}
