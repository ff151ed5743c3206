package booking

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Locker grants exclusive access to a set of resources for the duration of an
// admission decision. Keys are always acquired in SortKeys order, so two
// callers asking for overlapping sets cannot deadlock.
type Locker interface {
	Acquire(ctx context.Context, keys ...ResourceKey) (release func(), err error)
}

type keyLock struct {
	ch   chan struct{}
	refs int
}

// MemoryLocker serializes admissions inside one process.
type MemoryLocker struct {
	mu    sync.Mutex
	locks map[ResourceKey]*keyLock
	wait  time.Duration
}

// NewMemoryLocker returns a locker that gives up after wait.
// A non-positive wait means callers wait until their context is done.
func NewMemoryLocker(wait time.Duration) *MemoryLocker {
	return &MemoryLocker{
		locks: make(map[ResourceKey]*keyLock),
		wait:  wait,
	}
}

func (l *MemoryLocker) Acquire(ctx context.Context, keys ...ResourceKey) (func(), error) {
	waitCtx := ctx
	if l.wait > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, l.wait)
		defer cancel()
	}

	sorted := SortKeys(keys)
	held := make([]ResourceKey, 0, len(sorted))
	for _, key := range sorted {
		if err := l.lock(waitCtx, key); err != nil {
			l.unlockAll(held)
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("%w: %s", ErrLockTimeout, key)
		}
		held = append(held, key)
	}

	var once sync.Once
	return func() {
		once.Do(func() { l.unlockAll(held) })
	}, nil
}

func (l *MemoryLocker) lock(ctx context.Context, key ResourceKey) error {
	l.mu.Lock()
	kl, ok := l.locks[key]
	if !ok {
		kl = &keyLock{ch: make(chan struct{}, 1)}
		l.locks[key] = kl
	}
	kl.refs++
	l.mu.Unlock()

	select {
	case kl.ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		l.unref(key, kl)
		return ctx.Err()
	}
}

func (l *MemoryLocker) unlockAll(keys []ResourceKey) {
	for i := len(keys) - 1; i >= 0; i-- {
		l.mu.Lock()
		kl := l.locks[keys[i]]
		l.mu.Unlock()

		<-kl.ch
		l.unref(keys[i], kl)
	}
}

func (l *MemoryLocker) unref(key ResourceKey, kl *keyLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	kl.refs--
	if kl.refs == 0 {
		delete(l.locks, key)
	}
}

// size reports how many keys currently have holders or waiters.
func (l *MemoryLocker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
