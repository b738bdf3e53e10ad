package deepcopy

import (
	"fmt"
	"reflect"
	"sync/atomic"

	"github.com/sasha-s/go-deadlock"
	"go.opentelemetry.io/otel/metric"
)

// Pipeline resolves the copy strategy for runtime types and caches each
// decision. Resolution tries, in order: the pluggable special factory,
// the bootstrap name tables, the scalar (enum-style) check, the container
// factory, the array factory, and finally the ordinary struct factory.
// The first factory that produces a copier wins.
//
// A single reader/writer lock guards the registry. Cache hits take the
// read lock only; on a miss the resolution chain runs with no lock held,
// and the result is committed under the write lock with a re-check, so a
// concurrently committed copier wins over this goroutine's redundant
// computation. RegisterImmutable mutates the registry under the same
// write lock, never a separate one.
type Pipeline struct {
	mu    deadlock.RWMutex
	cache map[reflect.Type]Copier

	class *classifier
	cfg   *Config

	// special is the pluggable first stage of the resolution chain. It is
	// written under mu; reads during resolution are deliberately unlocked,
	// so swapping it while lookups are in flight is unsupported.
	special CopierFactory

	identity Copier
	err      *errorCopier
	maps     Copier
	slices   Copier
	structs  Copier
	pointers Copier

	logger        Logger
	meterProvider metric.MeterProvider
	metrics       *pipelineMetrics

	hits        atomic.Uint64
	misses      atomic.Uint64
	resolutions atomic.Uint64
}

// New constructs a Pipeline and seeds the registry: built-in and
// configured non-copyable types map to the error copier, built-in
// immutable types to the identity copier.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		cache:    make(map[reflect.Type]Copier),
		identity: identityCopier{},
		err:      &errorCopier{},
		maps:     mapCopier{},
		slices:   sliceCopier{},
		structs:  structCopier{},
		pointers: pointerCopier{},
		logger:   NewDefaultLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}

	p.class = newClassifier(p.cfg)
	p.metrics = newPipelineMetrics(p.meterProvider, p.logger)

	for _, t := range notCopyable {
		p.cache[t] = p.err
	}
	for _, t := range immutable {
		p.cache[t] = p.identity
	}
	p.logger.Debug("deepcopy: pipeline ready, %d types pre-seeded", len(p.cache))
	return p
}

// IsCopyable reports whether t is outside the exclusion set. It is a
// cheap, side-effect-free pre-check; a true result does not guarantee
// that resolution succeeds (interface types, for example, still fail).
func (p *Pipeline) IsCopyable(t reflect.Type) bool {
	if t == nil {
		return false
	}
	return !p.class.isExcluded(t)
}

// LookupCached returns the copier cached for t, if any. It never triggers
// resolution. The error copier is reported like any other entry.
func (p *Pipeline) LookupCached(t reflect.Type) (Copier, bool) {
	if t == nil {
		return nil, false
	}
	p.mu.RLock()
	c, ok := p.cache[t]
	p.mu.RUnlock()
	return c, ok
}

// GetCopier returns the copier for t, resolving and caching it on first
// use. It fails with ErrInterfaceNotCopyable for interface types, with
// ErrNotCopyable for excluded or error-classified types, and with
// ErrNoCopier if the resolution chain is exhausted.
func (p *Pipeline) GetCopier(t reflect.Type) (Copier, error) {
	if t == nil {
		return nil, ErrNilType
	}
	if t.Kind() == reflect.Interface {
		return nil, fmt.Errorf("%w: %s", ErrInterfaceNotCopyable, t)
	}

	p.mu.RLock()
	c, ok := p.cache[t]
	p.mu.RUnlock()
	if ok {
		p.hits.Add(1)
		p.metrics.hit()
		return p.checked(t, c)
	}

	p.misses.Add(1)
	p.metrics.miss()

	// Resolution runs with no lock held. Concurrent callers may compute a
	// redundant copier for the same type; the commit below picks a single
	// winner.
	c, err := p.resolve(t)
	if err != nil {
		p.metrics.failure()
		return nil, err
	}
	p.resolutions.Add(1)
	p.metrics.resolution()

	c = p.commit(t, c)
	return p.checked(t, c)
}

// commit inserts c for t unless another goroutine committed first, and
// returns whichever copier is now cached. Callers must use the returned
// value, not the one they passed in.
func (p *Pipeline) commit(t reflect.Type, c Copier) Copier {
	p.mu.Lock()
	defer p.mu.Unlock()
	if prev, ok := p.cache[t]; ok {
		return prev
	}
	p.cache[t] = c
	return c
}

// checked surfaces the cached error classification as an error return.
func (p *Pipeline) checked(t reflect.Type, c Copier) (Copier, error) {
	if ec, ok := c.(*errorCopier); ok && ec == p.err {
		return nil, fmt.Errorf("%w: %s", ErrNotCopyable, t)
	}
	return c, nil
}

// resolve runs the factory chain for t. No lock is held.
func (p *Pipeline) resolve(t reflect.Type) (Copier, error) {
	// Exclusion precedes everything, including the special factory. An
	// excluded type stays non-copyable no matter what a plugged-in
	// factory would produce for it.
	if p.class.isExcluded(t) {
		return p.err, nil
	}

	if special := p.special; special != nil {
		if c, ok := special.CopierFor(t); ok {
			p.logger.Debug("deepcopy: special factory resolved %s", t)
			return c, nil
		}
	}

	if p.class.isImmutableName(t) {
		return p.identity, nil
	}

	switch {
	case isScalarKind(t.Kind()):
		// Enum-style defined types and plain scalars: assignment already
		// copies the whole value.
		return p.identity, nil
	case t.Kind() == reflect.Map:
		return p.maps, nil
	case p.class.isContainerName(t):
		// A container entry naming a non-map type describes linked
		// internals (unexported node pointers) that a field walk cannot
		// reproduce, so such types refuse to copy rather than silently
		// producing a broken structure.
		return p.err, nil
	case t.Kind() == reflect.Array, t.Kind() == reflect.Slice:
		return p.slices, nil
	case t.Kind() == reflect.Struct:
		return p.structs, nil
	case t.Kind() == reflect.Ptr:
		return p.pointers, nil
	case t.Kind() == reflect.Func:
		// Code references are immutable; sharing is safe.
		return p.identity, nil
	case t.Kind() == reflect.Chan:
		// A copied channel would be a second handle on the same queue
		// pretending to be independent.
		return p.err, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrNoCopier, t)
}

// RegisterImmutable binds t to the identity copier, overriding whatever
// the resolution chain would produce, for all future lookups. This is the
// one supported path that may overwrite an existing cache entry. Excluded
// types cannot be registered.
func (p *Pipeline) RegisterImmutable(t reflect.Type) error {
	if t == nil {
		return ErrNilType
	}
	if p.class.isExcluded(t) {
		return fmt.Errorf("%w: %s is excluded and cannot be registered immutable", ErrNotCopyable, t)
	}
	p.mu.Lock()
	p.cache[t] = p.identity
	p.mu.Unlock()
	p.logger.Debug("deepcopy: registered %s as immutable", t)
	return nil
}

// SetSpecialFactory replaces the pluggable first stage of the resolution
// chain. It is intended for the configuration phase, before concurrent
// lookups begin; the write is serialized under the registry lock, but
// in-flight resolutions read the slot without locking.
func (p *Pipeline) SetSpecialFactory(f CopierFactory) {
	p.mu.Lock()
	p.special = f
	p.mu.Unlock()
}

// IdentityCopier returns the pipeline's shared identity copier, for use
// by special factories that want to mark types as shareable.
func (p *Pipeline) IdentityCopier() Copier {
	return p.identity
}

// ErrorCopier returns the pipeline's shared error copier. A special
// factory returning this copier marks the type permanently non-copyable;
// the pipeline recognizes it by identity and surfaces ErrNotCopyable.
func (p *Pipeline) ErrorCopier() Copier {
	return p.err
}

// CacheSize returns the number of resolved types in the registry.
func (p *Pipeline) CacheSize() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.cache)
}

// Stats is a snapshot of the pipeline's lookup counters.
type Stats struct {
	Hits        uint64
	Misses      uint64
	Resolutions uint64
}

// Stats returns a snapshot of the lookup counters. The numbers move
// independently; under concurrency, Misses may exceed Resolutions plus
// failures observed by any single caller.
func (p *Pipeline) Stats() Stats {
	return Stats{
		Hits:        p.hits.Load(),
		Misses:      p.misses.Load(),
		Resolutions: p.resolutions.Load(),
	}
}

// Copy produces a deep copy of v. It is the value-level entry point;
// strategy resolution, caching, and cycle handling all happen behind it.
func (p *Pipeline) Copy(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	ctx := p.NewContext()
	out, err := ctx.CopyValue(reflect.ValueOf(v))
	if err != nil {
		return nil, err
	}
	return out.Interface(), nil
}
