// Package session owns re-initialization when the host application navigates
// between meetings. The controller keeps its state (last-seen location, one
// pending initialization) on the instance, so it can be constructed fresh in
// tests and never leaks state between instances.
package session

import (
	"context"
	"sync"

	"github.com/otherjamesbrown/meetscribe-cli/pkg/logging"
	"github.com/otherjamesbrown/meetscribe-cli/pkg/meetingid"
)

// InitFunc prepares the exporter for one meeting. It may block while waiting
// for the meeting to become available and must return promptly once ctx is
// canceled.
type InitFunc func(ctx context.Context, meetingID string) error

// Controller reacts to location changes. It is safe to invoke repeatedly:
// a change to the same location is a no-op, and a change to a new location
// cancels any initialization still pending for the previous one before
// starting the next.
type Controller struct {
	init InitFunc
	log  logging.Logger

	mu            sync.Mutex
	lastLocation  string
	cancelPending context.CancelFunc
	pending       sync.WaitGroup
}

// NewController creates a Controller that runs init on each meeting change.
func NewController(init InitFunc, log logging.Logger) *Controller {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Controller{init: init, log: log}
}

// HandleLocationChange observes the host application's current location.
// When the location differs from the last one seen, any pending
// initialization is canceled and a new one starts in the background.
// Locations without an extractable meeting id only clear pending work.
func (c *Controller) HandleLocationChange(ctx context.Context, location string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if location == c.lastLocation {
		return
	}
	c.lastLocation = location

	if c.cancelPending != nil {
		c.cancelPending()
		c.cancelPending = nil
	}

	id, err := meetingid.FromLocation(location)
	if err != nil {
		c.log.Debug("location has no meeting id, nothing to initialize",
			logging.F("location", location))
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	c.cancelPending = cancel

	c.pending.Add(1)
	go func() {
		defer c.pending.Done()
		defer cancel()
		if err := c.init(runCtx, id); err != nil {
			if runCtx.Err() != nil {
				c.log.Debug("initialization canceled by navigation",
					logging.F("meeting_id", id))
				return
			}
			c.log.Error("initialization failed",
				logging.F("meeting_id", id), logging.Err(err))
		}
	}()
}

// Close cancels any pending initialization and waits for it to finish.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.cancelPending != nil {
		c.cancelPending()
		c.cancelPending = nil
	}
	c.mu.Unlock()
	c.pending.Wait()
}
