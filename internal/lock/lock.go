// Package lock serializes the count-then-insert window of a booking for one
// calendar day. The local implementation covers a single process; the Redis
// one extends the same guarantee across instances.
package lock

import (
	"context"
	"sync"
)

// DayLocker runs fn while holding exclusive access to a calendar day.
type DayLocker interface {
	WithDayLock(ctx context.Context, day string, fn func(ctx context.Context) error) error
}

// LocalDayLocker guards days with in-process mutexes. Adequate whenever a
// single instance owns the database, which is always the case for the
// embedded SQLite backend.
type LocalDayLocker struct {
	mu   sync.Mutex
	days map[string]*sync.Mutex
}

func NewLocalDayLocker() *LocalDayLocker {
	return &LocalDayLocker{days: make(map[string]*sync.Mutex)}
}

func (l *LocalDayLocker) WithDayLock(ctx context.Context, day string, fn func(ctx context.Context) error) error {
	l.mu.Lock()
	dayMu, ok := l.days[day]
	if !ok {
		dayMu = &sync.Mutex{}
		l.days[day] = dayMu
	}
	l.mu.Unlock()

	dayMu.Lock()
	defer dayMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx)
}
