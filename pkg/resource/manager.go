/*
Copyright (c) automateprint authors.
Licensed under the MIT license.
*/

// Package resource implements the Resource Manager (C2): per-printer
// exclusive locks, a monotonically increasing version counter per
// printer, a snapshot producer, and an atomic validate-and-consume
// operation.
package resource

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Vishnuvikas56/automateprint/pkg/consumption"
	"github.com/Vishnuvikas56/automateprint/pkg/engineerr"
	"github.com/Vishnuvikas56/automateprint/pkg/printtypes"
	"github.com/Vishnuvikas56/automateprint/pkg/queue"
)

// timedMutex is a mutex that supports bounded-wait acquisition, used
// so a stuck lock holder surfaces as SchedulerInternal (§5 Timeouts)
// rather than hanging the caller forever.
type timedMutex struct {
	ch chan struct{}
}

func newTimedMutex() *timedMutex {
	m := &timedMutex{ch: make(chan struct{}, 1)}
	m.ch <- struct{}{}
	return m
}

func (m *timedMutex) Lock(ctx context.Context, timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-m.ch:
		return nil
	case <-timer.C:
		return errors.New("lock acquisition timed out")
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *timedMutex) Unlock() {
	m.ch <- struct{}{}
}

// PrinterState is the live, mutable state of one printer: paper on
// hand, ink levels, queue, and version. Every field here is guarded
// by lock.
type PrinterState struct {
	lock *timedMutex

	id         string
	supported  map[printtypes.PrintType]struct{}
	paperCount map[printtypes.PaperKind]int
	ink        map[printtypes.InkChannel]float64
	speed      float64
	version    uint64
	queue      *queue.Queue
}

// Queue exposes the printer's bounded priority queue.
func (p *PrinterState) Queue() *queue.Queue { return p.queue }

// ID returns the printer's identifier.
func (p *PrinterState) ID() string { return p.id }

// Supported returns the printer's supported print-type set.
func (p *PrinterState) Supported() map[printtypes.PrintType]struct{} { return p.supported }

// Manager owns per-printer locks and versions. No cross-printer
// locking is performed; callers that mutate multiple printers (the
// Scheduler Core) serialize across printers by never holding two
// printer locks at once.
type Manager struct {
	mu          sync.RWMutex
	printers    map[string]*PrinterState
	ink         consumption.Table
	lockTimeout time.Duration
	logger      *zap.Logger
}

// Option configures a Manager at construction time.
type Option func(*Manager)

// WithInkTable overrides the ink consumption table (default: §4.5).
func WithInkTable(t consumption.Table) Option {
	return func(m *Manager) { m.ink = t }
}

// WithLockTimeout overrides the per-printer lock acquisition timeout.
func WithLockTimeout(d time.Duration) Option {
	return func(m *Manager) { m.lockTimeout = d }
}

// WithLogger attaches a structured logger.
func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// New builds a Resource Manager for the given fleet definitions and
// per-printer queue cap.
func New(fleet map[string]*printtypes.PrinterDef, maxQueueLength int, opts ...Option) *Manager {
	m := &Manager{
		printers:    make(map[string]*PrinterState, len(fleet)),
		ink:         consumption.Default(),
		lockTimeout: 10 * time.Second,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}

	for id, def := range fleet {
		m.printers[id] = &PrinterState{
			lock:       newTimedMutex(),
			id:         id,
			supported:  cloneTypeSet(def.Supported),
			paperCount: clonePaperMap(def.PaperCount),
			ink:        cloneInkMap(def.Ink),
			speed:      def.Speed,
			queue:      queue.New(id, maxQueueLength),
		}
	}
	return m
}

// Printer returns the live state for id, or false if unknown.
func (m *Manager) Printer(id string) (*PrinterState, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.printers[id]
	return p, ok
}

// All returns a snapshot of the printer-ID set (fleet membership),
// for use by the Capability Index and status reporting.
func (m *Manager) All() map[string]*printtypes.PrinterDef {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]*printtypes.PrinterDef, len(m.printers))
	for id, p := range m.printers {
		// A lock-free read of scoring-relevant fields is acceptable
		// here: the result is advisory (fed to the Capability Index
		// and the cache digest), never to validate-and-consume.
		out[id] = &printtypes.PrinterDef{
			ID:         id,
			Supported:  p.supported,
			PaperCount: p.paperCount,
			Ink:        p.ink,
			Speed:      p.speed,
		}
	}
	return out
}

// AddPrinter registers a new printer and returns its live state.
func (m *Manager) AddPrinter(def *printtypes.PrinterDef, maxQueueLength int) *PrinterState {
	m.mu.Lock()
	defer m.mu.Unlock()

	p := &PrinterState{
		lock:       newTimedMutex(),
		id:         def.ID,
		supported:  cloneTypeSet(def.Supported),
		paperCount: clonePaperMap(def.PaperCount),
		ink:        cloneInkMap(def.Ink),
		speed:      def.Speed,
		queue:      queue.New(def.ID, maxQueueLength),
	}
	m.printers[def.ID] = p
	return p
}

// RemovePrinter drops a printer from the fleet entirely.
func (m *Manager) RemovePrinter(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.printers, id)
}

// Snapshot returns an immutable copy of a printer's paper/ink levels,
// queue size, and version. May be called without holding the lock;
// the value is only meaningful briefly.
func (m *Manager) Snapshot(id string) (printtypes.Snapshot, bool) {
	p, ok := m.Printer(id)
	if !ok {
		return printtypes.Snapshot{}, false
	}

	ctx, cancel := context.WithTimeout(context.Background(), m.lockTimeout)
	defer cancel()
	if err := p.lock.Lock(ctx, m.lockTimeout); err != nil {
		// Snapshot is advisory; on a lock timeout, fall back to
		// reading without the lock rather than failing the caller.
		m.logger.Warn("snapshot lock timed out, reading unlocked", zap.String("printer", id))
		return snapshotUnlocked(p), true
	}
	defer p.lock.Unlock()

	return snapshotUnlocked(p), true
}

func snapshotUnlocked(p *PrinterState) printtypes.Snapshot {
	return printtypes.Snapshot{
		PrinterID:  p.id,
		Version:    p.version,
		PaperCount: clonePaperMap(p.paperCount),
		Ink:        cloneInkMap(p.ink),
		QueueLen:   p.queue.Size(),
		Speed:      p.speed,
		Supported:  cloneTypeSet(p.supported),
		CapturedAt: time.Now(),
	}
}

// ConsumptionFor computes the paper and ink needed, across all print
// types in a sub-order's requirement map, per the ink consumption
// model (§4.5).
func (m *Manager) ConsumptionFor(req map[printtypes.PrintType]printtypes.Requirement) (paper map[printtypes.PaperKind]int, ink map[printtypes.InkChannel]float64) {
	paper = make(map[printtypes.PaperKind]int)
	ink = make(map[printtypes.InkChannel]float64)

	for pt, r := range req {
		for kind, n := range consumption.RequiredPaper(r) {
			paper[kind] += n
		}
		pages := r.TotalPages()
		for ch, amt := range m.ink.RequiredInk(pt, pages) {
			ink[ch] += amt
		}
	}
	return paper, ink
}

// ValidateAndConsume performs the atomic check-then-subtract-then-
// bump-version operation (§4.2). snapshot must have been taken from
// the same printer; a stale version yields ConflictError.
func (m *Manager) ValidateAndConsume(id string, req map[printtypes.PrintType]printtypes.Requirement, snapshot printtypes.Snapshot) error {
	p, ok := m.Printer(id)
	if !ok {
		return &engineerr.SchedulerInternal{Cause: errors.Errorf("unknown printer %q", id)}
	}

	ctx, cancel := context.WithTimeout(context.Background(), m.lockTimeout)
	defer cancel()
	if err := p.lock.Lock(ctx, m.lockTimeout); err != nil {
		return &engineerr.SchedulerInternal{Cause: errors.Wrapf(err, "acquiring lock for printer %s", id)}
	}
	defer p.lock.Unlock()

	if p.version != snapshot.Version {
		return &engineerr.ConflictError{PrinterID: id, ExpectVersion: snapshot.Version, ActualVersion: p.version}
	}

	paperNeed, inkNeed := m.ConsumptionFor(req)

	for kind, need := range paperNeed {
		available := p.paperCount[kind]
		if available < need {
			return &engineerr.InsufficientResource{PrinterID: id, Resource: "paper:" + string(kind), Available: float64(available), Needed: float64(need)}
		}
	}
	for ch, need := range inkNeed {
		available := p.ink[ch]
		if available < need {
			return &engineerr.InsufficientResource{PrinterID: id, Resource: "ink:" + string(ch), Available: available, Needed: need}
		}
	}

	for kind, need := range paperNeed {
		p.paperCount[kind] -= need
	}
	for ch, need := range inkNeed {
		p.ink[ch] -= need
		if p.ink[ch] < 0 {
			p.ink[ch] = 0
		}
	}
	p.version++

	return nil
}

// Release reverses a prior successful ValidateAndConsume (used by
// rollback-on-overflow in the Scheduler Core and by cancellation): it
// re-adds the consumed paper and ink and bumps the version again, so
// version monotonicity (§8) is preserved across the compensating
// write.
func (m *Manager) Release(id string, req map[printtypes.PrintType]printtypes.Requirement) error {
	p, ok := m.Printer(id)
	if !ok {
		return &engineerr.SchedulerInternal{Cause: errors.Errorf("unknown printer %q", id)}
	}

	ctx, cancel := context.WithTimeout(context.Background(), m.lockTimeout)
	defer cancel()
	if err := p.lock.Lock(ctx, m.lockTimeout); err != nil {
		return &engineerr.SchedulerInternal{Cause: errors.Wrapf(err, "acquiring lock for printer %s", id)}
	}
	defer p.lock.Unlock()

	paperNeed, inkNeed := m.ConsumptionFor(req)
	for kind, need := range paperNeed {
		p.paperCount[kind] += need
	}
	for ch, need := range inkNeed {
		p.ink[ch] += need
		if p.ink[ch] > 100 {
			p.ink[ch] = 100
		}
	}
	p.version++

	return nil
}

// ManualUpdateDelta describes an operator-issued resource correction.
// Values are additive unless Absolute is set, in which case they
// replace the current reading entirely.
type ManualUpdateDelta struct {
	PaperDelta map[printtypes.PaperKind]int
	InkDelta   map[printtypes.InkChannel]float64
	Absolute   bool
}

// ApplyManualUpdate applies an operator-issued correction to a
// printer's paper/ink, bumping its version. Callers are responsible
// for invalidating the Assignment Cache afterward (§4.7).
func (m *Manager) ApplyManualUpdate(id string, delta ManualUpdateDelta) error {
	p, ok := m.Printer(id)
	if !ok {
		return &engineerr.SchedulerInternal{Cause: errors.Errorf("unknown printer %q", id)}
	}

	ctx, cancel := context.WithTimeout(context.Background(), m.lockTimeout)
	defer cancel()
	if err := p.lock.Lock(ctx, m.lockTimeout); err != nil {
		return &engineerr.SchedulerInternal{Cause: errors.Wrapf(err, "acquiring lock for printer %s", id)}
	}
	defer p.lock.Unlock()

	if delta.Absolute {
		for kind, n := range delta.PaperDelta {
			p.paperCount[kind] = n
		}
		for ch, v := range delta.InkDelta {
			p.ink[ch] = clampPercent(v)
		}
	} else {
		for kind, n := range delta.PaperDelta {
			next := p.paperCount[kind] + n
			if next < 0 {
				next = 0
			}
			p.paperCount[kind] = next
		}
		for ch, v := range delta.InkDelta {
			p.ink[ch] = clampPercent(p.ink[ch] + v)
		}
	}
	p.version++

	return nil
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func cloneTypeSet(in map[printtypes.PrintType]struct{}) map[printtypes.PrintType]struct{} {
	out := make(map[printtypes.PrintType]struct{}, len(in))
	for k := range in {
		out[k] = struct{}{}
	}
	return out
}

func clonePaperMap(in map[printtypes.PaperKind]int) map[printtypes.PaperKind]int {
	out := make(map[printtypes.PaperKind]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func cloneInkMap(in map[printtypes.InkChannel]float64) map[printtypes.InkChannel]float64 {
	out := make(map[printtypes.InkChannel]float64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
