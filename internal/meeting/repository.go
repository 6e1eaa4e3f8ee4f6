// Package meeting provides CRUD and live-subscription access to meeting
// documents held in redis. Each meeting is one hash, listing order comes
// from a sorted-set index on creation time, and every write publishes a
// change event that feeds Watch subscribers.
package meeting

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"visitbook/internal/domain"
)

const (
	keyPrefix     = "visitbook:meeting:"
	indexKey      = "visitbook:meetings:by_created"
	eventsChannel = "visitbook:meeting_events"
)

// ErrNotFound indicates the requested meeting document does not exist.
var ErrNotFound = errors.New("meeting not found")

type Repository struct {
	rdb *redis.Client
}

func NewRepository(opts *redis.Options) *Repository {
	return &Repository{rdb: redis.NewClient(opts)}
}

// Close closes the redis connection. Implements io.Closer.
func (r *Repository) Close() error {
	return r.rdb.Close()
}

// Ping verifies redis connectivity. Useful for startup checks.
func (r *Repository) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

func meetingKey(id string) string {
	return keyPrefix + id
}

// Create stores m as a new document, assigning the id and both server-side
// timestamps, and returns the stored meeting.
func (r *Repository) Create(ctx context.Context, m domain.Meeting) (*domain.Meeting, error) {
	m.ID = uuid.New().String()
	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now
	if m.Status == "" {
		m.Status = domain.StatusPlanned
	}

	hash, err := meetingToHash(&m)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize meeting: %w", err)
	}

	if err := r.rdb.HSet(ctx, meetingKey(m.ID), hash).Err(); err != nil {
		return nil, fmt.Errorf("failed to write meeting: %w", err)
	}

	err = r.rdb.ZAdd(ctx, indexKey, redis.Z{
		Score:  float64(m.CreatedAt.UnixNano()),
		Member: m.ID,
	}).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to index meeting: %w", err)
	}

	r.publish(ctx, &m, false)
	return &m, nil
}

// Get retrieves a meeting by id. Returns ErrNotFound when no document
// exists.
func (r *Repository) Get(ctx context.Context, id string) (*domain.Meeting, error) {
	hash, err := r.rdb.HGetAll(ctx, meetingKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read meeting: %w", err)
	}
	// HGetAll returns an empty map for missing keys.
	if len(hash) == 0 {
		return nil, ErrNotFound
	}

	m, err := hashToMeeting(id, hash)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize meeting %s: %w", id, err)
	}
	return m, nil
}

// Patch is a merge-style update: nil fields leave the stored value
// untouched, mirroring the save semantics of the edit form.
type Patch struct {
	CustomerName *string
	Date         *string
	Purpose      *string
	Status       *string
	Properties   *[]domain.PropertyVisit
}

// Update applies patch to the stored document, bumps UpdatedAt, and returns
// the merged result.
func (r *Repository) Update(ctx context.Context, id string, patch Patch) (*domain.Meeting, error) {
	m, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.CustomerName != nil {
		m.CustomerName = *patch.CustomerName
	}
	if patch.Date != nil {
		m.Date = *patch.Date
	}
	if patch.Purpose != nil {
		m.Purpose = *patch.Purpose
	}
	if patch.Status != nil {
		m.Status = *patch.Status
	}
	if patch.Properties != nil {
		m.Properties = *patch.Properties
	}
	m.UpdatedAt = time.Now().UTC()

	hash, err := meetingToHash(m)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize meeting: %w", err)
	}
	if err := r.rdb.HSet(ctx, meetingKey(id), hash).Err(); err != nil {
		return nil, fmt.Errorf("failed to write meeting: %w", err)
	}

	r.publish(ctx, m, false)
	return m, nil
}

// Delete removes the document and its index entry. Deleting a missing
// meeting returns ErrNotFound.
func (r *Repository) Delete(ctx context.Context, id string) error {
	removed, err := r.rdb.Del(ctx, meetingKey(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete meeting: %w", err)
	}
	if removed == 0 {
		return ErrNotFound
	}
	if err := r.rdb.ZRem(ctx, indexKey, id).Err(); err != nil {
		return fmt.Errorf("failed to unindex meeting: %w", err)
	}

	r.publish(ctx, &domain.Meeting{ID: id}, true)
	return nil
}

// List returns every meeting ordered by creation time, newest first.
func (r *Repository) List(ctx context.Context) ([]domain.Meeting, error) {
	ids, err := r.rdb.ZRevRange(ctx, indexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list meeting index: %w", err)
	}

	meetings := make([]domain.Meeting, 0, len(ids))
	for _, id := range ids {
		m, err := r.Get(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue // index entry racing a delete
		}
		if err != nil {
			return nil, err
		}
		meetings = append(meetings, *m)
	}
	return meetings, nil
}

// event is the payload published on every write.
type event struct {
	Meeting *domain.Meeting `json:"meeting"`
	Deleted bool            `json:"deleted,omitempty"`
}

// publish broadcasts a change event. Failures are swallowed: the write
// itself succeeded and subscribers resynchronize on the next event.
func (r *Repository) publish(ctx context.Context, m *domain.Meeting, deleted bool) {
	payload, err := json.Marshal(event{Meeting: m, Deleted: deleted})
	if err != nil {
		return
	}
	_ = r.rdb.Publish(ctx, eventsChannel, payload).Err()
}
