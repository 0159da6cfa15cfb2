// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package dispatch

import (
	"context"
	"errors"
	"sync"
)

// ErrLocked is returned when another loop already owns the key.
var ErrLocked = errors.New("dispatch loop already running")

// Lease is a held loop lock.
type Lease interface {
	Release(ctx context.Context) error
}

// Locker guarantees at most one active loop per key ("pillar:<id>",
// "batch:<id>").
type Locker interface {
	Acquire(ctx context.Context, key string) (Lease, error)
}

// LocalLocker is an in-process Locker for single-instance deployments.
type LocalLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

// NewLocalLocker creates an empty in-process locker.
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{held: make(map[string]bool)}
}

// Acquire takes key or returns ErrLocked.
func (l *LocalLocker) Acquire(_ context.Context, key string) (Lease, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] {
		return nil, ErrLocked
	}
	l.held[key] = true
	return &localLease{locker: l, key: key}, nil
}

// Held reports whether key is currently locked.
func (l *LocalLocker) Held(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.held[key]
}

type localLease struct {
	locker *LocalLocker
	key    string
	once   sync.Once
}

func (ll *localLease) Release(context.Context) error {
	ll.once.Do(func() {
		ll.locker.mu.Lock()
		delete(ll.locker.held, ll.key)
		ll.locker.mu.Unlock()
	})
	return nil
}

// PillarKey is the lock key of a pillar's generation loop.
func PillarKey(id string) string { return "pillar:" + id }

// BatchKey is the lock key of a keyword batch loop.
func BatchKey(id string) string { return "batch:" + id }
