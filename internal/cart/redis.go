package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/MikeMC777/shop-service/internal/apperr"
)

// releaseScript deletes the lock only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

var errLockTimeout = fmt.Errorf("%w: cart is locked", apperr.ErrUnavailable)

type RedisOptions struct {
	// LockTTL bounds how long a crashed holder can block a user's cart.
	// It must exceed the longest checkout.
	LockTTL time.Duration
	// RetryInterval is the pause between lock attempts.
	RetryInterval time.Duration
	// CartTTL expires idle carts; zero keeps them until cleared.
	CartTTL time.Duration
}

// RedisRegistry shares carts across processes. Each cart is a JSON list under
// cart:{user}; mutations hold cart:{user}:lock, taken with SET NX PX.
type RedisRegistry struct {
	client *redis.Client
	opts   RedisOptions
}

func NewRedisRegistry(client *redis.Client, opts RedisOptions) *RedisRegistry {
	if opts.LockTTL <= 0 {
		opts.LockTTL = 15 * time.Second
	}
	if opts.RetryInterval <= 0 {
		opts.RetryInterval = 10 * time.Millisecond
	}
	return &RedisRegistry{client: client, opts: opts}
}

func cartKey(userID string) string { return fmt.Sprintf("cart:{%s}", userID) }
func lockKey(userID string) string { return fmt.Sprintf("cart:{%s}:lock", userID) }

func (r *RedisRegistry) Get(ctx context.Context, userID string) ([]Entry, error) {
	return r.load(ctx, userID)
}

func (r *RedisRegistry) Add(ctx context.Context, userID, productID string, quantity int) ([]Entry, error) {
	if err := validateAdd(productID, quantity); err != nil {
		return nil, err
	}
	var out []Entry
	err := r.withLock(ctx, userID, func() error {
		entries, err := r.load(ctx, userID)
		if err != nil {
			return err
		}
		out, err = addEntry(entries, productID, quantity)
		if err != nil {
			out = nil
			return err
		}
		return r.save(ctx, userID, out)
	})
	return out, err
}

func (r *RedisRegistry) Remove(ctx context.Context, userID, productID string) ([]Entry, error) {
	var out []Entry
	err := r.withLock(ctx, userID, func() error {
		entries, err := r.load(ctx, userID)
		if err != nil {
			return err
		}
		out = removeEntry(entries, productID)
		if len(out) == len(entries) {
			return nil
		}
		return r.save(ctx, userID, out)
	})
	return out, err
}

func (r *RedisRegistry) Clear(ctx context.Context, userID string) error {
	return r.withLock(ctx, userID, func() error {
		return r.save(ctx, userID, nil)
	})
}

func (r *RedisRegistry) Drain(ctx context.Context, userID string, fn func([]Entry) error) error {
	return r.withLock(ctx, userID, func() error {
		entries, err := r.load(ctx, userID)
		if err != nil {
			return err
		}
		if err := fn(entries); err != nil {
			return err
		}
		// The clear must outlive a cancelled request: the order is already written.
		return r.save(context.WithoutCancel(ctx), userID, nil)
	})
}

func (r *RedisRegistry) withLock(ctx context.Context, userID string, fn func() error) error {
	key := lockKey(userID)
	token := uuid.NewString()

	for {
		ok, err := r.client.SetNX(ctx, key, token, r.opts.LockTTL).Result()
		if err != nil {
			if ctx.Err() != nil {
				return errLockTimeout
			}
			return apperr.Store("cart.lock", err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return errLockTimeout
		case <-time.After(r.opts.RetryInterval):
		}
	}

	defer func() {
		_ = releaseScript.Run(context.WithoutCancel(ctx), r.client, []string{key}, token).Err()
	}()
	return fn()
}

func (r *RedisRegistry) load(ctx context.Context, userID string) ([]Entry, error) {
	data, err := r.client.Get(ctx, cartKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return []Entry{}, nil
	}
	if err != nil {
		return nil, redisErr("cart.load", err)
	}
	entries := []Entry{}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, apperr.Store("cart.decode", err)
	}
	return entries, nil
}

func (r *RedisRegistry) save(ctx context.Context, userID string, entries []Entry) error {
	if len(entries) == 0 {
		if err := r.client.Del(ctx, cartKey(userID)).Err(); err != nil {
			return redisErr("cart.clear", err)
		}
		return nil
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("cart.encode: %w", err)
	}
	if err := r.client.Set(ctx, cartKey(userID), data, r.opts.CartTTL).Err(); err != nil {
		return redisErr("cart.save", err)
	}
	return nil
}

// redisErr reports cart store outages as ServiceUnavailable.
func redisErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, apperr.ErrUnavailable, err)
}
