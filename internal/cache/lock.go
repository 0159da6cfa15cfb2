// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/itwrites/BlogViraliy-sub002/internal/dispatch"
)

const (
	lockKeyPrefix = "lock:"

	// DefaultLockTTL bounds how long a crashed process keeps a loop locked.
	// Live holders refresh well before it runs out.
	DefaultLockTTL = 30 * time.Second
)

// Only the holder's token may extend or delete a lock.
var (
	releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

	extendScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0`)
)

// Locker is a dispatch.Locker shared by every process talking to the same
// Valkey, so a pillar or batch runs in at most one loop cluster-wide.
type Locker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewLocker creates a Locker. A zero ttl means DefaultLockTTL.
func NewLocker(client *redis.Client, ttl time.Duration) *Locker {
	if ttl <= 0 {
		ttl = DefaultLockTTL
	}
	return &Locker{client: client, ttl: ttl}
}

// Acquire takes key with SET NX PX or returns dispatch.ErrLocked. The lease
// is refreshed in the background until released.
func (l *Locker) Acquire(ctx context.Context, key string) (dispatch.Lease, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, lockKeyPrefix+key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", key, err)
	}
	if !ok {
		return nil, dispatch.ErrLocked
	}

	ls := &lease{
		client: l.client,
		key:    lockKeyPrefix + key,
		token:  token,
		ttl:    l.ttl,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go ls.refresh()
	slog.Debug("lock acquired", "key", key)
	return ls, nil
}

type lease struct {
	client *redis.Client
	key    string
	token  string
	ttl    time.Duration

	once sync.Once
	stop chan struct{}
	done chan struct{}
}

func (ls *lease) refresh() {
	defer close(ls.done)
	t := time.NewTicker(ls.ttl / 3)
	defer t.Stop()
	for {
		select {
		case <-ls.stop:
			return
		case <-t.C:
			ctx, cancel := context.WithTimeout(context.Background(), ls.ttl/3)
			n, err := extendScript.Run(ctx, ls.client, []string{ls.key}, ls.token, ls.ttl.Milliseconds()).Int()
			cancel()
			if err != nil {
				slog.Warn("lock refresh failed", "key", ls.key, "error", err)
				continue
			}
			if n == 0 {
				slog.Warn("lock lost", "key", ls.key)
				return
			}
		}
	}
}

// Release stops the refresher and deletes the key if this lease still owns
// it.
func (ls *lease) Release(ctx context.Context) error {
	var err error
	ls.once.Do(func() {
		close(ls.stop)
		<-ls.done
		if rErr := releaseScript.Run(ctx, ls.client, []string{ls.key}, ls.token).Err(); rErr != nil {
			err = fmt.Errorf("release lock %s: %w", ls.key, rErr)
		}
	})
	return err
}
