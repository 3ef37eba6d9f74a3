package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// CheckoutDedup remembers confirmed checkout sessions so a reloaded success
// page does not apply the same upgrade twice.
// Key format: checkout:applied:<session_id>
type CheckoutDedup struct {
	client *redis.Client
}

func NewCheckoutDedup(client *redis.Client) *CheckoutDedup {
	return &CheckoutDedup{client: client}
}

// IsApplied reports whether the session was already confirmed.
func (d *CheckoutDedup) IsApplied(ctx context.Context, sessionID string) (bool, error) {
	n, err := d.client.Exists(ctx, checkoutKey(sessionID)).Result()
	if err != nil {
		return false, fmt.Errorf("checkout dedup check: %w", err)
	}
	return n > 0, nil
}

// MarkApplied records the session as confirmed until ttl elapses.
func (d *CheckoutDedup) MarkApplied(ctx context.Context, sessionID string, ttl time.Duration) error {
	if err := d.client.Set(ctx, checkoutKey(sessionID), time.Now().UTC().Format(time.RFC3339), ttl).Err(); err != nil {
		return fmt.Errorf("checkout dedup mark: %w", err)
	}
	return nil
}

func checkoutKey(sessionID string) string {
	return "checkout:applied:" + sessionID
}
