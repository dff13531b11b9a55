package bloodbag

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"hemocamp/pkg/platform/sentinel"
)

const keyPrefix = "bloodbag:"

// Redis reserves bag numbers with SET NX, giving atomic check-and-reserve
// across service instances. Keys are kept without expiry; bag numbers are
// never reused.
type Redis struct {
	client redis.Cmdable
}

func NewRedis(client redis.Cmdable) *Redis {
	return &Redis{client: client}
}

func (r *Redis) Reserve(ctx context.Context, bagNumber string) error {
	ok, err := r.client.SetNX(ctx, keyPrefix+bagNumber, "1", 0).Result()
	if err != nil {
		return fmt.Errorf("reserve blood bag: %w", err)
	}
	if !ok {
		return sentinel.ErrAlreadyUsed
	}
	return nil
}

func (r *Redis) Release(ctx context.Context, bagNumber string) error {
	if err := r.client.Del(ctx, keyPrefix+bagNumber).Err(); err != nil {
		return fmt.Errorf("release blood bag: %w", err)
	}
	return nil
}
