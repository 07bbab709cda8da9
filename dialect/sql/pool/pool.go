// Package pool manages a bounded set of open *sql.Driver connections per
// named data source, so an engine with several configured databases (or
// a read/write split against the same database) doesn't open a fresh
// connection per checkout. Each source gets its own semaphore-bounded
// slot count and its own idle-eviction timer, run by a single background
// monitor goroutine.
package pool

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/ormkit/ormkit/dialect/sql"
)

const (
	// DefaultMaxSize is the default number of concurrent checkouts a
	// source allows before Get blocks.
	DefaultMaxSize = 10
	// DefaultIdleTime is how long an unused source connection is kept
	// open before the monitor closes it.
	DefaultIdleTime = 30 * time.Second
	// DefaultMonitorSleep is how often the monitor sweeps for idle
	// sources to close.
	DefaultMonitorSleep = 2 * time.Second
	// DefaultWaitTime is how long Get waits for a free slot before
	// giving up.
	DefaultWaitTime = 20 * time.Second
)

// Source names one reachable database: the dialect and driver-specific
// data source name sql.Open expects.
type Source struct {
	ID      string
	Dialect string
	DSN     string
}

// Pool hands out *sql.Driver connections by source id, bounding how many
// callers can hold one open at once and closing connections that sit
// idle past a configured threshold. It plays the role of the original
// engine's SqlPool: a per-source semaphore replaces the condition
// variable wait, and a single monitor goroutine replaces the dedicated
// PoolMonThread.
type Pool struct {
	maxSize      int64
	idleTime     time.Duration
	monitorSleep time.Duration
	logger       *slog.Logger

	mu       sync.Mutex
	sources  map[string]Source
	sems     map[string]*semaphore.Weighted
	drivers  map[string]*sql.Driver
	lastUsed map[string]time.Time
	inUse    map[string]int

	closeOnce sync.Once
	stop      chan struct{}
	done      chan struct{}
}

// Option configures a Pool built with New.
type Option func(*Pool)

// WithMaxSize overrides DefaultMaxSize.
func WithMaxSize(n int) Option {
	return func(p *Pool) { p.maxSize = int64(n) }
}

// WithIdleTime overrides DefaultIdleTime.
func WithIdleTime(d time.Duration) Option {
	return func(p *Pool) { p.idleTime = d }
}

// WithMonitorSleep overrides DefaultMonitorSleep.
func WithMonitorSleep(d time.Duration) Option {
	return func(p *Pool) { p.monitorSleep = d }
}

// WithLogger attaches a logger the monitor uses to report evictions and
// open errors. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(p *Pool) { p.logger = l }
}

// New returns a Pool with its idle-eviction monitor already running.
// Call Close to stop the monitor and close every open connection.
func New(opts ...Option) *Pool {
	p := &Pool{
		maxSize:      DefaultMaxSize,
		idleTime:     DefaultIdleTime,
		monitorSleep: DefaultMonitorSleep,
		logger:       slog.Default(),
		sources:      make(map[string]Source),
		sems:         make(map[string]*semaphore.Weighted),
		drivers:      make(map[string]*sql.Driver),
		lastUsed:     make(map[string]time.Time),
		inUse:        make(map[string]int),
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	go p.monitor()
	return p
}

// AddSource registers src, replacing any previously registered source of
// the same id. Registering a source does not open a connection; the
// first Get does.
func (p *Pool) AddSource(src Source) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sources[src.ID] = src
	if _, ok := p.sems[src.ID]; !ok {
		p.sems[src.ID] = semaphore.NewWeighted(p.maxSize)
	}
}

// Checkout is a connection on loan from the pool. Put returns it.
type Checkout struct {
	ID     string
	Driver *sql.Driver

	pool     *Pool
	sourceID string
}

// Put releases the checkout's slot back to the pool. closeNow forces the
// underlying connection closed instead of being kept warm for reuse
// (mirrors SqlPool::put's close_now flag, used after a connection is
// known bad).
func (c *Checkout) Put(closeNow bool) {
	c.pool.put(c.sourceID, closeNow)
}

// Get checks out a connection for source id, opening one on first use,
// blocking up to timeout for a free slot if the source is already at the
// pool's max size (WithMaxSize; DefaultMaxSize unless set) of concurrent
// checkouts.
func (p *Pool) Get(ctx context.Context, id string, timeout time.Duration) (*Checkout, error) {
	p.mu.Lock()
	src, ok := p.sources[id]
	sem := p.sems[id]
	p.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("pool: unknown source %q", id)
	}
	if timeout <= 0 {
		timeout = DefaultWaitTime
	}
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := sem.Acquire(waitCtx, 1); err != nil {
		return nil, fmt.Errorf("pool: get %q: %w", id, err)
	}

	p.mu.Lock()
	drv, ok := p.drivers[id]
	if !ok {
		var err error
		drv, err = sql.Open(src.Dialect, src.DSN)
		if err != nil {
			p.mu.Unlock()
			sem.Release(1)
			p.logger.Error("pool: open failed", "source", id, "error", err)
			return nil, fmt.Errorf("pool: open %q: %w", id, err)
		}
		p.drivers[id] = drv
	}
	p.inUse[id]++
	p.lastUsed[id] = time.Time{} // cleared while checked out; set again on Put
	p.mu.Unlock()

	return &Checkout{ID: uuid.NewString(), Driver: drv, pool: p, sourceID: id}, nil
}

func (p *Pool) put(id string, closeNow bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.inUse[id]--
	p.lastUsed[id] = time.Now()
	if closeNow {
		if drv, ok := p.drivers[id]; ok {
			_ = drv.Close()
			delete(p.drivers, id)
		}
	}
	if sem, ok := p.sems[id]; ok {
		sem.Release(1)
	}
}

// monitor periodically closes drivers that have sat idle (zero
// in-flight checkouts, last released more than idleTime ago), mirroring
// PoolMonThread::on_run.
func (p *Pool) monitor() {
	defer close(p.done)
	ticker := time.NewTicker(p.monitorSleep)
	defer ticker.Stop()
	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
			p.sweep()
		}
	}
}

func (p *Pool) sweep() {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now()
	for id, drv := range p.drivers {
		if p.inUse[id] != 0 {
			continue
		}
		last := p.lastUsed[id]
		if last.IsZero() || now.Sub(last) < p.idleTime {
			continue
		}
		if err := drv.Close(); err != nil {
			p.logger.Warn("pool: idle close failed", "source", id, "error", err)
		}
		delete(p.drivers, id)
		delete(p.lastUsed, id)
	}
}

// Close stops the monitor and closes every currently-open connection,
// regardless of idle time or outstanding checkouts.
func (p *Pool) Close() error {
	var err error
	p.closeOnce.Do(func() {
		close(p.stop)
		<-p.done
		p.mu.Lock()
		defer p.mu.Unlock()
		for id, drv := range p.drivers {
			if cerr := drv.Close(); cerr != nil {
				err = cerr
			}
			delete(p.drivers, id)
		}
	})
	return err
}

// Stats reports, for a registered source, how many checkouts are
// currently outstanding and whether a connection is open.
type Stats struct {
	InUse int
	Open  bool
}

// Stats returns a snapshot of source id's checkout count and open state.
func (p *Pool) Stats(id string) Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, open := p.drivers[id]
	return Stats{InUse: p.inUse[id], Open: open}
}
