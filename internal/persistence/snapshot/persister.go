// Package snapshot persists the in-memory board state as one JSON document in
// a kv byte store and restores it on startup.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"kanbancore/internal/infra/persistence/memory"
	"kanbancore/internal/kv"
	"kanbancore/pkg/domain"
)

// DefaultKey is the namespace the snapshot is stored under.
const DefaultKey = "kanban-enterprise"

// Source reports where Load took the state from.
type Source string

const (
	// SourceSnapshot means a stored snapshot was restored.
	SourceSnapshot Source = "snapshot"
	// SourceSeed means the bootstrap dataset was loaded instead.
	SourceSeed Source = "seed"
)

// StateStore is the part of memory.Store the persister reads and writes.
type StateStore interface {
	ExportState() memory.Snapshot
	ImportState(memory.Snapshot)
	ImportDataset(domain.Dataset)
}

// Persister loads and saves snapshots. Scheduled saves run on a background
// goroutine; pending requests coalesce so only the latest state is written.
type Persister struct {
	kv     kv.Store
	state  StateStore
	key    string
	logger *zap.Logger
	writes *prometheus.CounterVec

	pending   chan struct{}
	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once

	mu      sync.Mutex
	lastErr error
}

// Option configures a Persister.
type Option func(*Persister)

// WithKey overrides the namespace key.
func WithKey(key string) Option {
	return func(p *Persister) {
		if key != "" {
			p.key = key
		}
	}
}

// WithLogger sets the logger used for load fallbacks and write failures.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Persister) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithRegisterer registers the write counter with reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(p *Persister) {
		if reg != nil {
			if err := reg.Register(p.writes); err != nil {
				var already prometheus.AlreadyRegisteredError
				if errors.As(err, &already) {
					if existing, ok := already.ExistingCollector.(*prometheus.CounterVec); ok {
						p.writes = existing
					}
				}
			}
		}
	}
}

// New constructs a persister for state backed by store and starts its write
// worker. Call Close to flush and stop it.
func New(store kv.Store, state StateStore, opts ...Option) *Persister {
	p := &Persister{
		kv:     store,
		state:  state,
		key:    DefaultKey,
		logger: zap.NewNop(),
		writes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kanban",
			Name:      "snapshot_writes_total",
			Help:      "Snapshot writes by outcome",
		}, []string{"status"}),
		pending: make(chan struct{}, 1),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	for _, status := range []string{"success", "error"} {
		p.writes.WithLabelValues(status)
	}
	go p.run()
	return p
}

// Key returns the namespace key.
func (p *Persister) Key() string { return p.key }

// Load restores the stored snapshot. A missing, unreadable or undecodable
// snapshot is logged and the seed dataset is loaded instead; only a
// cancelled context is returned as an error.
func (p *Persister) Load(ctx context.Context, seed domain.Dataset) (Source, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := p.kv.Get(ctx, p.key)
	switch {
	case errors.Is(err, kv.ErrNotFound):
		p.logger.Info("no stored snapshot, loading seed", zap.String("key", p.key))
		return p.loadSeed(seed), nil
	case err != nil:
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		p.logger.Warn("snapshot read failed, loading seed", zap.String("key", p.key), zap.Error(err))
		return p.loadSeed(seed), nil
	}
	var snap memory.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		p.logger.Warn("snapshot decode failed, loading seed", zap.String("key", p.key), zap.Error(err))
		return p.loadSeed(seed), nil
	}
	if snap.Version > memory.SnapshotVersion {
		p.logger.Warn("snapshot version unsupported, loading seed",
			zap.String("key", p.key),
			zap.Int("version", snap.Version),
		)
		return p.loadSeed(seed), nil
	}
	p.state.ImportState(snap)
	p.logger.Info("snapshot restored", zap.String("key", p.key), zap.Int("bytes", len(data)))
	return SourceSnapshot, nil
}

func (p *Persister) loadSeed(seed domain.Dataset) Source {
	p.state.ImportDataset(seed)
	return SourceSeed
}

// Save writes the current state synchronously.
func (p *Persister) Save(ctx context.Context) error {
	data, err := json.Marshal(p.state.ExportState())
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := p.kv.Put(ctx, p.key, data); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// Reset deletes the stored snapshot and reports whether one existed.
func (p *Persister) Reset(ctx context.Context) (bool, error) {
	existed, err := p.kv.Delete(ctx, p.key)
	if err != nil {
		return false, fmt.Errorf("delete snapshot: %w", err)
	}
	return existed, nil
}

// Schedule requests a background save. It never blocks; requests made while
// one is pending collapse into it.
func (p *Persister) Schedule() {
	select {
	case p.pending <- struct{}{}:
	default:
	}
}

// LastError returns the error of the most recent background save, or nil if
// it succeeded.
func (p *Persister) LastError() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

// Close flushes a pending save and stops the worker. It does not close the
// underlying kv store.
func (p *Persister) Close(ctx context.Context) error {
	p.closeOnce.Do(func() { close(p.stop) })
	select {
	case <-p.done:
		return p.LastError()
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Persister) run() {
	defer close(p.done)
	for {
		select {
		case <-p.pending:
			p.write()
		case <-p.stop:
			select {
			case <-p.pending:
				p.write()
			default:
			}
			return
		}
	}
}

func (p *Persister) write() {
	err := p.Save(context.Background())
	p.mu.Lock()
	p.lastErr = err
	p.mu.Unlock()
	if err != nil {
		p.writes.WithLabelValues("error").Inc()
		p.logger.Error("snapshot write failed", zap.String("key", p.key), zap.Error(err))
		return
	}
	p.writes.WithLabelValues("success").Inc()
}
