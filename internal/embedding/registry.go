package embedding

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/born-ml/tensoralg/internal/parallel"
	"github.com/born-ml/tensoralg/internal/space"
)

// Key identifies a cached co-embedding table.
type Key struct {
	Domain   string
	Codomain string
	Field    space.Field
	Kind     Kind
}

// Stats reports registry activity.
type Stats struct {
	// Tables is the number of keys the registry has seen.
	Tables int
	// Builds is the number of tables actually computed. It never exceeds
	// Tables.
	Builds int64
}

type entry struct {
	once  sync.Once
	table *Table

	checkOnce sync.Once
	checkErr  error
}

// Registry lazily builds and caches co-embedding lookup tables.
// Each table is computed at most once, even under concurrent first use.
// The zero value is not usable; call NewRegistry.
type Registry struct {
	mu       sync.Mutex
	entries  map[Key]*entry
	builds   atomic.Int64
	logger   *slog.Logger
	parallel parallel.Config
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used to report table builds at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithParallel sets the parallel config used to build tables.
func WithParallel(cfg parallel.Config) Option {
	return func(r *Registry) { r.parallel = cfg }
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		entries:  make(map[Key]*entry),
		logger:   slog.Default(),
		parallel: parallel.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Registry) lookup(k Key) *entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	ent, ok := r.entries[k]
	if !ok {
		ent = &entry{}
		r.entries[k] = ent
	}
	return ent
}

// Embedding returns the inclusion of domain into codomain after verifying it
// once per key with Verify. Later calls for the same pair return the cached
// verification result.
func (r *Registry) Embedding(domain, codomain *space.Space) (*Embedding, error) {
	e, err := New(domain, codomain)
	if err != nil {
		return nil, err
	}
	ent := r.lookup(e.Key())
	ent.checkOnce.Do(func() {
		ent.checkErr = Verify(e, r.Coembedder(e))
		if ent.checkErr != nil {
			r.logger.Debug("rejected embedding",
				"domain", domain.Key(),
				"codomain", codomain.Key(),
				"error", ent.checkErr)
		}
	})
	if ent.checkErr != nil {
		return nil, ent.checkErr
	}
	return e, nil
}

// Table returns the lookup table for e, building it on first use.
func (r *Registry) Table(e *Embedding) *Table {
	k := e.Key()
	ent := r.lookup(k)
	ent.once.Do(func() {
		start := time.Now()
		ent.table = BuildTable(e, r.parallel)
		r.builds.Add(1)
		r.logger.Debug("built co-embedding table",
			"domain", k.Domain,
			"codomain", k.Codomain,
			"rows", ent.table.Len(),
			"elapsed", time.Since(start))
	})
	return ent.table
}

// Coembedder returns the co-embedding of e: the closed form when the codomain
// stores every component, the cached lookup table otherwise.
func (r *Registry) Coembedder(e *Embedding) Coembedder {
	if e.HasClosedForm() {
		return closedForm{e: e}
	}
	return r.Table(e)
}

// Stats returns a snapshot of registry activity.
func (r *Registry) Stats() Stats {
	r.mu.Lock()
	n := len(r.entries)
	r.mu.Unlock()
	return Stats{Tables: n, Builds: r.builds.Load()}
}
