package refresh

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/distribution-auth/sessiongate/auth"
	"github.com/distribution-auth/sessiongate/pkg/option"
)

type entry struct {
	record    auth.RefreshRecord
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// InMemoryRefreshRecordRepository keeps refresh records in memory.
//
// The zero value is ready to use.
type InMemoryRefreshRecordRepository struct {
	// Clock is used to expire records. Defaults to the real clock.
	Clock clockwork.Clock

	entries map[string]entry

	initOnce sync.Once
	mu       sync.RWMutex
}

func (r *InMemoryRefreshRecordRepository) init() {
	r.initOnce.Do(func() {
		if r.entries == nil {
			r.entries = make(map[string]entry)
		}

		if r.Clock == nil {
			r.Clock = clockwork.NewRealClock()
		}
	})
}

// FindRefreshRecord implements auth.RefreshRecordStore.
func (r *InMemoryRefreshRecordRepository) FindRefreshRecord(_ context.Context, index string) (option.Option[auth.RefreshRecord], error) {
	r.init()
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[index]
	if !ok {
		return option.None[auth.RefreshRecord](), nil
	}

	if e.expired(r.Clock.Now()) {
		delete(r.entries, index)

		return option.None[auth.RefreshRecord](), nil
	}

	return option.Some(e.record), nil
}

// DeleteRefreshRecord implements auth.RefreshRecordStore.
func (r *InMemoryRefreshRecordRepository) DeleteRefreshRecord(_ context.Context, index string) error {
	r.init()
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.entries, index)

	return nil
}

// SaveRefreshRecord implements auth.RefreshRecordRepository.
// A non-positive ttl keeps the record until it is deleted.
func (r *InMemoryRefreshRecordRepository) SaveRefreshRecord(_ context.Context, record auth.RefreshRecord, ttl time.Duration) error {
	r.init()
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.Clock.Now()

	// Records that are never looked up again are evicted here.
	for index, e := range r.entries {
		if e.expired(now) {
			delete(r.entries, index)
		}
	}

	e := entry{record: record}
	if ttl > 0 {
		e.expiresAt = now.Add(ttl)
	}

	r.entries[record.Index] = e

	return nil
}
