package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sakura-events/sakura-backend/internal/timers/domain"
)

const (
	activeKeyPrefix = "sakura:timer:active:" // sakura:timer:active:{owner_id} -> session id
	pendingValue    = domain.MarkerPending
	reserveTTL      = 30 * time.Second
)

// releaseScript deletes the marker only if it still names the given session.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// ActiveRepository keeps one running-timer marker per owner in Redis.
type ActiveRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewActiveRepository creates markers that expire after ttl.
func NewActiveRepository(client *redis.Client, ttl time.Duration) *ActiveRepository {
	return &ActiveRepository{client: client, ttl: ttl}
}

func (r *ActiveRepository) key(ownerID string) string {
	return activeKeyPrefix + ownerID
}

// Reserve claims the owner's marker. It returns false when a timer is already held.
func (r *ActiveRepository) Reserve(ctx context.Context, ownerID string) (bool, error) {
	ok, err := r.client.SetNX(ctx, r.key(ownerID), pendingValue, reserveTTL).Result()
	if err != nil {
		return false, fmt.Errorf("reserve active timer: %w", err)
	}
	return ok, nil
}

// Confirm points a reserved marker at the created session.
func (r *ActiveRepository) Confirm(ctx context.Context, ownerID, sessionID string) error {
	ok, err := r.client.SetXX(ctx, r.key(ownerID), sessionID, r.ttl).Result()
	if err != nil {
		return fmt.Errorf("confirm active timer: %w", err)
	}
	if !ok {
		return fmt.Errorf("confirm active timer: reservation for %s expired", ownerID)
	}
	return nil
}

// Get returns the session id held by the marker, pending, or "" when free.
func (r *ActiveRepository) Get(ctx context.Context, ownerID string) (string, error) {
	v, err := r.client.Get(ctx, r.key(ownerID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get active timer: %w", err)
	}
	return v, nil
}

// Release frees the marker if it still holds sessionID. Use "" to drop a reservation.
func (r *ActiveRepository) Release(ctx context.Context, ownerID, sessionID string) error {
	if sessionID == "" {
		sessionID = pendingValue
	}
	if err := releaseScript.Run(ctx, r.client, []string{r.key(ownerID)}, sessionID).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release active timer: %w", err)
	}
	return nil
}
