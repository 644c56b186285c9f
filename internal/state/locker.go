package state

import (
	"context"
	"sync"
)

// MemoryLocker is an in-process Locker that blocks until the account is free.
type MemoryLocker struct {
	mu    sync.Mutex
	slots map[int64]*slot
}

type slot struct {
	ch   chan struct{}
	refs int
}

var _ Locker = (*MemoryLocker)(nil)

// NewMemoryLocker creates an empty in-process locker.
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{slots: make(map[int64]*slot)}
}

// Lock waits for the account slot or returns ctx.Err() when ctx ends first.
func (l *MemoryLocker) Lock(ctx context.Context, accountID int64) (Unlock, error) {
	s := l.acquireSlot(accountID)

	select {
	case s.ch <- struct{}{}:
	case <-ctx.Done():
		l.releaseSlot(accountID)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-s.ch
			l.releaseSlot(accountID)
		})
	}, nil
}

func (l *MemoryLocker) acquireSlot(accountID int64) *slot {
	l.mu.Lock()
	defer l.mu.Unlock()

	s, ok := l.slots[accountID]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		l.slots[accountID] = s
	}
	s.refs++

	return s
}

func (l *MemoryLocker) releaseSlot(accountID int64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	s, ok := l.slots[accountID]
	if !ok {
		return
	}

	s.refs--
	if s.refs <= 0 {
		delete(l.slots, accountID)
	}
}
