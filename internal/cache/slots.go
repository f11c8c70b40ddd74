package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"sort"
	"time"

	"github.com/benvon/smart-scheduler/internal/models"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SlotKey identifies one cached slot search
type SlotKey struct {
	UserID          uuid.UUID
	Date            string
	DurationMinutes int
	MeetingType     string
	TopK            int
	Distinct        bool
	// Calendar fingerprints the day's meetings, see CalendarFingerprint
	Calendar string
}

// String renders the Redis key
func (k SlotKey) String() string {
	meetingType := k.MeetingType
	if meetingType == "" {
		meetingType = "-"
	}
	calendar := k.Calendar
	if calendar == "" {
		calendar = "-"
	}
	return fmt.Sprintf("slots:%s:%s:%d:%s:%d:%t:%s", k.UserID, k.Date, k.DurationMinutes, meetingType, k.TopK, k.Distinct, calendar)
}

// CalendarFingerprint hashes the fields of meetings that affect availability.
// Order does not matter. A meeting booked, moved or cancelled in the
// external calendar changes the fingerprint.
func CalendarFingerprint(meetings []models.Meeting) string {
	lines := make([]string, 0, len(meetings))
	for _, m := range meetings {
		lines = append(lines, fmt.Sprintf("%s|%d|%d|%s|%s", m.ID, m.Start.UnixNano(), m.End.UnixNano(), m.Status, m.MeetingType))
	}
	sort.Strings(lines)

	h := fnv.New64a()
	for _, l := range lines {
		_, _ = h.Write([]byte(l))
		_, _ = h.Write([]byte{'\n'})
	}
	return fmt.Sprintf("%016x", h.Sum64())
}

func indexKey(userID uuid.UUID) string {
	return "slots:index:" + userID.String()
}

// SlotCache stores scored slot results in Redis. Each user has an index set
// of their keys so a preference update can drop them all.
type SlotCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewSlotCache creates a new slot cache
func NewSlotCache(client redis.Cmdable, ttl time.Duration) *SlotCache {
	return &SlotCache{client: client, ttl: ttl}
}

// Get returns the cached result, if any
func (c *SlotCache) Get(ctx context.Context, key SlotKey) (*models.SlotResult, bool, error) {
	data, err := c.client.Get(ctx, key.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read slot cache: %w", err)
	}

	result := &models.SlotResult{}
	if err := json.Unmarshal(data, result); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached slots: %w", err)
	}
	return result, true, nil
}

// Set stores a result and records its key in the user's index
func (c *SlotCache) Set(ctx context.Context, key SlotKey, result *models.SlotResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode slots: %w", err)
	}

	pipe := c.client.TxPipeline()
	pipe.Set(ctx, key.String(), data, c.ttl)
	pipe.SAdd(ctx, indexKey(key.UserID), key.String())
	pipe.Expire(ctx, indexKey(key.UserID), c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to write slot cache: %w", err)
	}
	return nil
}

// InvalidateUser drops every cached result for the user
func (c *SlotCache) InvalidateUser(ctx context.Context, userID uuid.UUID) error {
	idx := indexKey(userID)
	keys, err := c.client.SMembers(ctx, idx).Result()
	if err != nil {
		return fmt.Errorf("failed to read slot cache index: %w", err)
	}

	keys = append(keys, idx)
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate slot cache: %w", err)
	}
	return nil
}
