package ratelimit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

const lockKeyNamespace = "haccp:lock:"

// Compare-and-delete so a lease that outlived its TTL never frees a lock
// someone else took over.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

var (
	ErrLockUnavailable = errors.New("lock_unavailable")
	ErrLockHeld        = errors.New("lock_held")
	ErrInvalidLock     = errors.New("invalid_lock")
)

// Locker hands out short redis leases used to serialise batch number
// generation and scheduler sweeps across replicas. A nil Locker refuses
// every lease.
type Locker struct {
	client *redis.Client
}

// Lease is a held lock. Release is idempotent and safe on a nil lease.
type Lease struct {
	client *redis.Client
	key    string
	token  string
}

func NewLocker(client *redis.Client) *Locker {
	if client == nil {
		return nil
	}
	return &Locker{client: client}
}

// Acquire takes the lock for key or returns ErrLockHeld when another holder
// has it.
func (l *Locker) Acquire(ctx context.Context, key string, ttl time.Duration) (*Lease, error) {
	if l == nil || l.client == nil {
		return nil, ErrLockUnavailable
	}
	if key == "" || ttl <= 0 {
		return nil, ErrInvalidLock
	}

	lease := &Lease{
		client: l.client,
		key:    lockKeyNamespace + key,
		token:  uuid.NewString(),
	}
	ok, err := l.client.SetNX(ctx, lease.key, lease.token, ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLockHeld
	}
	return lease, nil
}

func (le *Lease) Release(ctx context.Context) error {
	if le == nil || le.client == nil || le.token == "" {
		return nil
	}
	err := releaseScript.Run(ctx, le.client, []string{le.key}, le.token).Err()
	le.token = ""
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}

// Key returns the namespaced redis key of the lease.
func (le *Lease) Key() string {
	if le == nil {
		return ""
	}
	return le.key
}
