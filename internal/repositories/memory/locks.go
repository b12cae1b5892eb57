package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
)

// lockTable hands out one exclusive slot per key.
type lockTable struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

func newLockTable() *lockTable {
	return &lockTable{slots: make(map[string]chan struct{})}
}

func (t *lockTable) slot(key string) chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	ch, ok := t.slots[key]
	if !ok {
		ch = make(chan struct{}, 1)
		t.slots[key] = ch
	}
	return ch
}

func (t *lockTable) acquire(ctx context.Context, key string, timeout time.Duration) error {
	ch := t.slot(key)
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case ch <- struct{}{}:
		return nil
	case <-timer.C:
		return fmt.Errorf("%w: %s", apperrors.ErrLockTimeout, key)
	case <-ctx.Done():
		return fmt.Errorf("%w: %s: %w", apperrors.ErrLockTimeout, key, ctx.Err())
	}
}

func (t *lockTable) release(key string) {
	<-t.slot(key)
}

// withLock runs fn while holding key.
func (s *Store) withLock(ctx context.Context, key string, fn func() error) error {
	if err := s.locks.acquire(ctx, key, s.lockTimeout); err != nil {
		return err
	}
	defer s.locks.release(key)
	return fn()
}
