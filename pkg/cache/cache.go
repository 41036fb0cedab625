// Package cache provides an optional Redis-backed cache for fetched meeting
// records, so repeated exports of the same meeting skip the network.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/otherjamesbrown/meetscribe-cli/pkg/logging"
	"github.com/otherjamesbrown/meetscribe-cli/pkg/transcript"
)

// DefaultTTL is how long a cached record stays valid. Captions for a
// finished meeting do not change, but a bounded TTL keeps the cache from
// serving a record captured mid-meeting forever.
const DefaultTTL = 15 * time.Minute

// keyPrefix namespaces mscribe entries in a shared Redis.
const keyPrefix = "mscribe:meeting:"

// RecordCache caches meeting records keyed by meeting id.
type RecordCache struct {
	client *redis.Client
	ttl    time.Duration
	log    logging.Logger
}

// Config holds Redis connection configuration.
type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// New creates a RecordCache and verifies the connection.
func New(ctx context.Context, cfg Config, log logging.Logger) (*RecordCache, error) {
	if log == nil {
		log = logging.NewNopLogger()
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RecordCache{client: client, ttl: ttl, log: log}, nil
}

// Get returns the cached record for meetingID, or nil on a miss. Cache
// failures are logged and reported as misses: the cache must never make a
// fetch fail.
func (c *RecordCache) Get(ctx context.Context, meetingID string) *transcript.MeetingRecord {
	data, err := c.client.Get(ctx, keyPrefix+meetingID).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn("cache read failed", logging.F("meeting_id", meetingID), logging.Err(err))
		}
		return nil
	}

	var record transcript.MeetingRecord
	if err := json.Unmarshal(data, &record); err != nil {
		c.log.Warn("cache entry corrupt, ignoring", logging.F("meeting_id", meetingID), logging.Err(err))
		return nil
	}
	return &record
}

// Put stores a record. Best-effort: failures are logged, not returned.
func (c *RecordCache) Put(ctx context.Context, meetingID string, record *transcript.MeetingRecord) {
	data, err := json.Marshal(record)
	if err != nil {
		c.log.Warn("cache encode failed", logging.F("meeting_id", meetingID), logging.Err(err))
		return
	}
	if err := c.client.Set(ctx, keyPrefix+meetingID, data, c.ttl).Err(); err != nil {
		c.log.Warn("cache write failed", logging.F("meeting_id", meetingID), logging.Err(err))
	}
}

// Close releases the Redis connection.
func (c *RecordCache) Close() error {
	return c.client.Close()
}
