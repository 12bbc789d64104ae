package services_test

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/eventlane/ticket-inventory/internal/core/domain"
)

// fakeStore is an in-memory implementation of the storage ports. A single
// mutex stands in for the database transaction: WithTx holds it for the
// duration of fn, so a committed mutation is observed atomically.
type fakeStore struct {
	mu      sync.Mutex
	records map[uuid.UUID]domain.InventoryRecord
	entries []domain.ReservationEntry
	tokens  map[uuid.UUID]domain.ReservationToken
	nextID  int64

	failAppend error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		records: make(map[uuid.UUID]domain.InventoryRecord),
		tokens:  make(map[uuid.UUID]domain.ReservationToken),
	}
}

type fakeTxKey struct{}

func (s *fakeStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(fakeTxKey{}) != nil {
		return fn(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshotRecords := make(map[uuid.UUID]domain.InventoryRecord, len(s.records))
	for k, v := range s.records {
		snapshotRecords[k] = v
	}
	snapshotTokens := make(map[uuid.UUID]domain.ReservationToken, len(s.tokens))
	for k, v := range s.tokens {
		snapshotTokens[k] = v
	}
	snapshotEntries := len(s.entries)
	snapshotNextID := s.nextID

	if err := fn(context.WithValue(ctx, fakeTxKey{}, true)); err != nil {
		s.records = snapshotRecords
		s.tokens = snapshotTokens
		s.entries = s.entries[:snapshotEntries]
		s.nextID = snapshotNextID
		return err
	}
	return nil
}

func (s *fakeStore) locked(ctx context.Context, fn func()) {
	if ctx.Value(fakeTxKey{}) == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	fn()
}

func (s *fakeStore) CreateRecord(ctx context.Context, rec domain.InventoryRecord) error {
	var err error
	s.locked(ctx, func() {
		if _, ok := s.records[rec.EventID]; ok {
			err = domain.ErrInventoryExists
			return
		}
		s.records[rec.EventID] = rec
	})
	return err
}

func (s *fakeStore) GetRecord(ctx context.Context, eventID uuid.UUID) (domain.InventoryRecord, error) {
	var rec domain.InventoryRecord
	var err error
	s.locked(ctx, func() {
		var ok bool
		rec, ok = s.records[eventID]
		if !ok {
			err = domain.ErrInventoryNotFound
		}
	})
	return rec, err
}

func (s *fakeStore) GetRecordForUpdate(ctx context.Context, eventID uuid.UUID) (domain.InventoryRecord, error) {
	return s.GetRecord(ctx, eventID)
}

func (s *fakeStore) UpdateRecord(ctx context.Context, rec domain.InventoryRecord) error {
	var err error
	s.locked(ctx, func() {
		if _, ok := s.records[rec.EventID]; !ok {
			err = domain.ErrInventoryNotFound
			return
		}
		rec.Version++
		s.records[rec.EventID] = rec
	})
	return err
}

func (s *fakeStore) Append(ctx context.Context, entry domain.ReservationEntry) (domain.ReservationEntry, error) {
	if s.failAppend != nil {
		return domain.ReservationEntry{}, s.failAppend
	}
	s.locked(ctx, func() {
		s.nextID++
		entry.ID = s.nextID
		s.entries = append(s.entries, entry)
	})
	return entry, nil
}

func (s *fakeStore) EntriesFor(ctx context.Context, eventID uuid.UUID, afterID int64, limit int) ([]domain.ReservationEntry, error) {
	var page []domain.ReservationEntry
	s.locked(ctx, func() {
		for _, entry := range s.entries {
			if entry.EventID != eventID || entry.ID <= afterID {
				continue
			}
			page = append(page, entry)
			if len(page) == limit {
				return
			}
		}
	})
	return page, nil
}

func (s *fakeStore) Create(ctx context.Context, token domain.ReservationToken) error {
	s.locked(ctx, func() {
		s.tokens[token.ID] = token
	})
	return nil
}

func (s *fakeStore) GetForUpdate(ctx context.Context, tokenID uuid.UUID) (domain.ReservationToken, error) {
	var token domain.ReservationToken
	var err error
	s.locked(ctx, func() {
		var ok bool
		token, ok = s.tokens[tokenID]
		if !ok {
			err = domain.ErrTokenNotFound
		}
	})
	return token, err
}

func (s *fakeStore) UpdateStatus(ctx context.Context, tokenID uuid.UUID, status domain.TokenStatus) error {
	var err error
	s.locked(ctx, func() {
		token, ok := s.tokens[tokenID]
		if !ok {
			err = domain.ErrTokenNotFound
			return
		}
		token.Status = status
		s.tokens[tokenID] = token
	})
	return err
}

func (s *fakeStore) ListExpiredActive(ctx context.Context, now time.Time, limit int) ([]domain.ReservationToken, error) {
	var expired []domain.ReservationToken
	s.locked(ctx, func() {
		for _, token := range s.tokens {
			if token.Status != domain.TokenActive || token.ExpiresAt.After(now) {
				continue
			}
			expired = append(expired, token)
			if len(expired) == limit {
				return
			}
		}
	})
	return expired, nil
}

func (s *fakeStore) entriesByKind(eventID uuid.UUID, kind domain.EntryKind) []domain.ReservationEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.ReservationEntry
	for _, entry := range s.entries {
		if entry.EventID == eventID && entry.Kind == kind {
			out = append(out, entry)
		}
	}
	return out
}

// fakeCache records invalidations so tests can assert the engine drops
// snapshots after each committed mutation.
type fakeCache struct {
	mu           sync.Mutex
	invalidated  []uuid.UUID
	availability map[uuid.UUID]domain.Availability
	analytics    map[uuid.UUID]domain.EventAnalytics
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		availability: make(map[uuid.UUID]domain.Availability),
		analytics:    make(map[uuid.UUID]domain.EventAnalytics),
	}
}

func (c *fakeCache) GetAvailability(ctx context.Context, eventID uuid.UUID) (domain.Availability, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	av, ok := c.availability[eventID]
	return av, ok, nil
}

func (c *fakeCache) SetAvailability(ctx context.Context, av domain.Availability) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.availability[av.EventID] = av
	return nil
}

func (c *fakeCache) GetAnalytics(ctx context.Context, eventID uuid.UUID) (domain.EventAnalytics, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	an, ok := c.analytics[eventID]
	return an, ok, nil
}

func (c *fakeCache) SetAnalytics(ctx context.Context, an domain.EventAnalytics) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.analytics[an.EventID] = an
	return nil
}

func (c *fakeCache) Invalidate(ctx context.Context, eventID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, eventID)
	delete(c.availability, eventID)
	delete(c.analytics, eventID)
	return nil
}
