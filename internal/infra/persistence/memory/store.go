// Package memory provides the in-memory transactional store that holds every
// kanban collection. All mutations run against a cloned state that replaces
// the live one only when the whole transaction succeeds.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"kanbancore/pkg/domain"
)

// Compile-time contract assertion ensuring memory.Store adheres to the domain persistence interface.
var _ domain.PersistentStore = (*Store)(nil)

// Store provides an in-memory transactional store guarded by a single lock.
type Store struct {
	mu    sync.RWMutex
	state memoryState
	nowFn func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used to stamp records.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.nowFn = now
		}
	}
}

// NewStore constructs an empty store with the default board columns.
func NewStore(opts ...Option) *Store {
	s := &Store{
		state: newMemoryState(),
		nowFn: func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ExportState clones the current store state for external persistence.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotFromMemoryState(s.state)
}

// ImportState replaces the store state with the provided snapshot after
// normalising it and raising id counters past every id in use.
func (s *Store) ImportState(snapshot Snapshot) {
	state := memoryStateFromSnapshot(migrateSnapshot(snapshot))
	state.syncCounters()
	sanitizeSession(&state)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

// ImportDataset replaces the store state with a bootstrap dataset.
func (s *Store) ImportDataset(ds domain.Dataset) {
	s.ImportState(SnapshotFromDataset(ds))
}

// NowFunc returns the time provider used by the store.
func (s *Store) NowFunc() func() time.Time {
	return s.nowFn
}

type transaction struct {
	state   memoryState
	changes []Change
	now     time.Time
}

// RunInTransaction executes fn within a transactional copy of the store state.
// The copy replaces the live state only when fn returns nil.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx Transaction) error) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{
		state: s.state.clone(),
		now:   s.nowFn(),
	}
	if err := fn(tx); err != nil {
		return Result{}, err
	}
	s.state = tx.state
	return Result{Changes: tx.changes}, nil
}

// View executes fn against a read-only snapshot of the store state.
func (s *Store) View(_ context.Context, fn func(TransactionView) error) error {
	s.mu.RLock()
	snapshot := s.state.clone()
	s.mu.RUnlock()
	return fn(newTransactionView(&snapshot))
}

// Snapshot returns a read-only view over the transactional state.
func (tx *transaction) Snapshot() TransactionView {
	return newTransactionView(&tx.state)
}

// Now returns the timestamp stamped on records written by the transaction.
func (tx *transaction) Now() time.Time { return tx.now }

// record appends a change entry; nil before or after leaves that side unset.
func (tx *transaction) record(entity domain.EntityType, action domain.Action, id string, before, after any) error {
	change := Change{Entity: entity, Action: action, ID: id}
	var err error
	if before != nil {
		if change.Before, err = domain.PayloadOf(before); err != nil {
			return fmt.Errorf("record %s %s: %w", entity, action, err)
		}
	}
	if after != nil {
		if change.After, err = domain.PayloadOf(after); err != nil {
			return fmt.Errorf("record %s %s: %w", entity, action, err)
		}
	}
	tx.changes = append(tx.changes, change)
	return nil
}

func notFound(entity domain.EntityType, id string) error {
	return domain.NotFoundError{Entity: entity, ID: id}
}

func missingRef(entity domain.EntityType, id string, ref domain.EntityType, refID string) error {
	return domain.IntegrityError{Entity: entity, ID: id, Ref: ref, RefID: refID}
}
