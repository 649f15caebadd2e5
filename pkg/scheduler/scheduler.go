/*
Copyright (c) automateprint authors.
Licensed under the MIT license.
*/

// Package scheduler implements the Scheduler Core (C6): the top-level
// orchestration of validation, cache lookup, planning, scoring,
// reservation, and enqueueing, with bounded retry on version
// conflict.
package scheduler

import (
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go"
	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Vishnuvikas56/automateprint/pkg/assignmentcache"
	"github.com/Vishnuvikas56/automateprint/pkg/capability"
	"github.com/Vishnuvikas56/automateprint/pkg/engineerr"
	"github.com/Vishnuvikas56/automateprint/pkg/planner"
	"github.com/Vishnuvikas56/automateprint/pkg/printtypes"
	"github.com/Vishnuvikas56/automateprint/pkg/resource"
	"github.com/Vishnuvikas56/automateprint/pkg/scorer"
	"github.com/Vishnuvikas56/automateprint/pkg/validation"
)

// AssignmentResult is the §6 assignment result shape: array indices
// across Assignments, Scores, and SubOrders align.
type AssignmentResult struct {
	OrderID     string
	Assignments []string
	Scores      []float64
	SubOrders   [][]printtypes.PrintType
	Timestamp   time.Time
}

// PrinterStatusView is the §4.6 printer_status() response shape.
type PrinterStatusView struct {
	ID                   string
	Supported            []printtypes.PrintType
	PaperCount           map[printtypes.PaperKind]int
	Ink                  map[printtypes.InkChannel]float64
	Speed                float64
	QueueSize            int
	Status               string // ready | low_paper | low_ink | queue_full
	EstimatedWaitSeconds float64
}

// SystemStatusView is the §4.6 system_status() response shape.
type SystemStatusView struct {
	TotalPrinters       int
	ReadyPrinters       int
	QueuedJobs          int
	CacheEntries        int
	CapablePrintersByType map[printtypes.PrintType]int
}

// Scheduler is the Scheduler Core: it owns the Resource Manager,
// Capability Index, and Assignment Cache, and orchestrates
// schedule_order end to end.
type Scheduler struct {
	cfg       Config
	resources *resource.Manager
	index     *capability.Index
	cache     *assignmentcache.Cache
	logger    *zap.Logger
	knownTypes map[printtypes.PrintType]struct{}

	cacheEntries int // best-effort counter for system_status
}

// New constructs a Scheduler Core over the given fleet and weight
// vector, validating both once up front (§4.6 step 1's "once at
// construction" clause).
func New(fleet map[string]*printtypes.PrinterDef, weights *scorer.Weights, opts ...Option) (*Scheduler, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if weights != nil {
		cfg.DefaultWeights = *weights
	}

	if err := validation.ValidateFleet(fleet); err != nil {
		return nil, err
	}
	if err := validation.ValidateWeights(cfg.DefaultWeights); err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	idx := capability.New()
	idx.Rebuild(fleet)

	known := make(map[printtypes.PrintType]struct{})
	for _, p := range fleet {
		for t := range p.Supported {
			known[t] = struct{}{}
		}
	}

	s := &Scheduler{
		cfg:        cfg,
		resources:  resource.New(fleet, cfg.MaxQueueLength, resource.WithInkTable(cfg.InkConsumption), resource.WithLockTimeout(cfg.LockTimeout), resource.WithLogger(logger)),
		index:      idx,
		cache:      assignmentcache.New(cfg.CacheTTL),
		logger:     logger,
		knownTypes: known,
	}
	return s, nil
}

// WithZapLogger swaps the Scheduler Core's own logger after
// construction. It does not reach the Resource Manager — that logger
// is fixed at construction time, so pass scheduler.WithLogger to New
// if the Resource Manager's own warnings (e.g. its snapshot
// lock-timeout warning) need the real logger too.
func (s *Scheduler) WithZapLogger(l *zap.Logger) *Scheduler {
	s.logger = l
	return s
}

// RebuildCapabilityIndex is called whenever a printer is added,
// removed, or its Supported set changes.
func (s *Scheduler) RebuildCapabilityIndex() {
	s.index.Rebuild(s.resources.All())
}

// ScheduleOrder is schedule_order (§4.6).
func (s *Scheduler) ScheduleOrder(order printtypes.Order, orderID string, priority int, priorityMap map[string]int) (*AssignmentResult, error) {
	// Only the tag shape is validated here; a tag that no printer
	// supports is left to the planner, which reports NoCapablePrinter.
	if err := validation.ValidateOrder(order, nil); err != nil {
		return nil, err
	}
	if orderID == "" {
		orderID = uuid.NewString()
	}
	if priority <= 0 {
		priority = 5
	}

	fleetSnapshot := s.resources.All()
	queueSizes := make(map[string]int, len(fleetSnapshot))
	for id := range fleetSnapshot {
		if printer, ok := s.resources.Printer(id); ok {
			queueSizes[id] = printer.Queue().Size()
		}
	}
	cacheKey := assignmentcache.Key(order, fleetSnapshot, queueSizes)
	if cached, ok := s.cache.Get(cacheKey); ok {
		if result, ok := s.tryCommitCached(orderID, cached, order); ok {
			return result, nil
		}
		// Stale hit: treated as a cache miss (§4.7).
	}

	subOrders, err := planner.Plan(order, s.index)
	if err != nil {
		return nil, err
	}

	assignments := make([]string, 0, len(subOrders))
	scores := make([]float64, 0, len(subOrders))
	subOrderTypes := make([][]printtypes.PrintType, 0, len(subOrders))
	var committed []string

	for _, sub := range subOrders {
		printerID, score, err := s.scheduleSubOrder(orderID, sub, priority, priorityMap)
		if err != nil {
			if len(committed) > 0 {
				return nil, &engineerr.PartialSchedule{OrderID: orderID, CommittedPrinterIDs: committed, Cause: err}
			}
			return nil, err
		}
		committed = append(committed, printerID)
		assignments = append(assignments, printerID)
		scores = append(scores, score)
		subOrderTypes = append(subOrderTypes, sub.Types)
	}

	result := &AssignmentResult{
		OrderID:     orderID,
		Assignments: assignments,
		Scores:      scores,
		SubOrders:   subOrderTypes,
		Timestamp:   time.Now(),
	}

	s.cache.Set(cacheKey, assignmentcache.Result{
		OrderID:     result.OrderID,
		Assignments: result.Assignments,
		Scores:      result.Scores,
		SubOrders:   result.SubOrders,
		Priority:    priority,
		Timestamp:   result.Timestamp,
	})
	s.cacheEntries++

	return result, nil
}

// tryCommitCached re-validates a cached assignment against current
// state before trusting it: the cache is advisory, so every sub-order
// recorded in the hit must still pass validate-and-consume right now.
// If any sub-order fails, the legs of this hit that were already
// re-committed are released and removed from their queues again, and
// the caller falls through to full scheduling.
func (s *Scheduler) tryCommitCached(orderID string, cached assignmentcache.Result, order printtypes.Order) (*AssignmentResult, bool) {
	if len(cached.Assignments) != len(cached.SubOrders) {
		return nil, false
	}

	type committedLeg struct {
		printerID string
		req       map[printtypes.PrintType]printtypes.Requirement
	}
	var committed []committedLeg

	rollback := func() {
		for _, leg := range committed {
			if printer, ok := s.resources.Printer(leg.printerID); ok {
				_, _, _ = printer.Queue().Remove(orderID)
			}
			_ = s.resources.Release(leg.printerID, leg.req)
		}
	}

	for i, printerID := range cached.Assignments {
		types := cached.SubOrders[i]
		req := make(map[printtypes.PrintType]printtypes.Requirement, len(types))
		ok := true
		for _, t := range types {
			r, found := order[t]
			if !found {
				ok = false
				break
			}
			req[t] = r
		}
		if !ok {
			rollback()
			return nil, false
		}

		snap, found := s.resources.Snapshot(printerID)
		if !found {
			rollback()
			return nil, false
		}
		if err := s.resources.ValidateAndConsume(printerID, req, snap); err != nil {
			rollback()
			return nil, false
		}

		printer, ok := s.resources.Printer(printerID)
		if !ok {
			_ = s.resources.Release(printerID, req)
			rollback()
			return nil, false
		}
		job := printtypes.ReservedJob{OrderID: orderID, SubOrder: printtypes.SubOrder{Types: types, Requirement: req}, Priority: cached.Priority, EnqueuedAt: time.Now(), PrinterID: printerID}
		if _, err := printer.Queue().Push(job, job.Priority); err != nil {
			_ = s.resources.Release(printerID, req)
			rollback()
			return nil, false
		}
		committed = append(committed, committedLeg{printerID: printerID, req: req})
	}

	return &AssignmentResult{
		OrderID:     orderID,
		Assignments: cached.Assignments,
		Scores:      cached.Scores,
		SubOrders:   cached.SubOrders,
		Timestamp:   time.Now(),
	}, true
}

// scheduleSubOrder implements §4.6 step 5 for a single sub-order: find
// capable printers, score them, reserve the best, retrying on
// version conflict and falling back to the next-best candidate on
// queue overflow.
func (s *Scheduler) scheduleSubOrder(orderID string, sub printtypes.SubOrder, priority int, priorityMap map[string]int) (string, float64, error) {
	typeSet := sub.TypeSet()
	candidateIDs := s.index.FindCapable(typeSet)
	if len(candidateIDs) == 0 {
		return "", 0, &engineerr.NoCapablePrinter{Types: typeSet}
	}

	scores := make(map[string]float64, len(candidateIDs))
	full := make(map[string]bool)
	var hardFails []error
	var viable []string

	for _, id := range candidateIDs {
		snap, ok := s.resources.Snapshot(id)
		if !ok {
			continue
		}
		if snap.QueueLen >= s.cfg.MaxQueueLength {
			full[id] = true
		}

		res := scorer.Score(snap, sub.Requirement, s.cfg.DefaultWeights)
		if res.HardFail {
			hardFails = append(hardFails, &engineerr.InsufficientResource{PrinterID: id, Resource: res.FailReason + ":" + res.Resource, Available: res.Available, Needed: res.Needed})
			continue
		}
		scores[id] = res.Score
		viable = append(viable, id)
	}

	if len(viable) == 0 {
		if len(full) > 0 {
			ids := make([]string, 0, len(full))
			for id := range full {
				ids = append(ids, id)
			}
			return "", 0, &engineerr.QueueOverflow{PrinterIDs: ids}
		}
		if len(hardFails) > 0 {
			return "", 0, multierr.Combine(hardFails...)
		}
		return "", 0, &engineerr.NoCapablePrinter{Types: typeSet}
	}

	priorityIndex := priorityIndexFor(priorityMap)
	ranked := scorer.SortCandidates(viable, scores, priorityIndex)

	var overflowed []string
	for _, printerID := range ranked {
		printerID := printerID
		committed, err := s.reserveWithRetry(printerID, sub.Requirement)
		if err != nil {
			var conflict *engineerr.ResourceConflict
			if errors.As(err, &conflict) {
				return "", 0, err
			}
			return "", 0, err
		}
		if !committed {
			continue // printer became full/insufficient mid-attempt; try next
		}

		printer, _ := s.resources.Printer(printerID)
		job := printtypes.ReservedJob{
			OrderID:    orderID,
			SubOrder:   sub,
			Priority:   priority,
			EnqueuedAt: time.Now(),
			PrinterID:  printerID,
		}
		if _, err := printer.Queue().Push(job, priority); err != nil {
			// Roll back the consumption and try the next-best candidate.
			_ = s.resources.Release(printerID, sub.Requirement)
			overflowed = append(overflowed, printerID)
			continue
		}

		return printerID, scores[printerID], nil
	}

	if len(overflowed) > 0 {
		return "", 0, &engineerr.QueueOverflow{PrinterIDs: overflowed}
	}
	return "", 0, &engineerr.NoCapablePrinter{Types: typeSet}
}

// reserveWithRetry snapshots and attempts validate-and-consume against
// printerID, retrying on ConflictError up to cfg.MaxRetries with
// backoff k*RetryDelay for attempt k (§4.6 step 5f). Returns
// committed=false (no error) if the printer turns out to be
// insufficient/full on a fresh snapshot, so the caller can fall
// through to the next-ranked candidate instead of failing the whole
// sub-order.
func (s *Scheduler) reserveWithRetry(printerID string, req map[printtypes.PrintType]printtypes.Requirement) (committed bool, err error) {
	attempt := 0
	retryErr := retry.Do(
		func() error {
			attempt++
			snap, ok := s.resources.Snapshot(printerID)
			if !ok {
				return retry.Unrecoverable(fmt.Errorf("unknown printer %s", printerID))
			}
			cerr := s.resources.ValidateAndConsume(printerID, req, snap)
			if cerr == nil {
				committed = true
				return nil
			}
			var conflict *engineerr.ConflictError
			if errors.As(cerr, &conflict) {
				return cerr // retryable
			}
			// Insufficient resource / internal error: not retryable,
			// but also not a hard failure of the whole sub-order — the
			// caller falls through to the next candidate.
			return retry.Unrecoverable(cerr)
		},
		retry.Attempts(uint(s.cfg.MaxRetries)+1),
		retry.DelayType(func(n uint, _ error, _ *retry.Config) time.Duration {
			return time.Duration(n) * s.cfg.RetryDelay
		}),
		retry.LastErrorOnly(true),
	)

	if committed {
		return true, nil
	}
	if retryErr == nil {
		return false, nil
	}

	var conflict *engineerr.ConflictError
	if errors.As(retryErr, &conflict) {
		return false, &engineerr.ResourceConflict{PrinterID: printerID, Attempts: attempt}
	}
	// Unrecoverable insufficient-resource/internal error: treat as a
	// non-fatal miss for this candidate unless it was a scheduler
	// internal error, which must propagate.
	var internal *engineerr.SchedulerInternal
	if errors.As(retryErr, &internal) {
		return false, retryErr
	}
	return false, nil
}

func priorityIndexFor(priorityMap map[string]int) map[string]int {
	if priorityMap == nil {
		return map[string]int{}
	}
	return priorityMap
}

// CancelOrder implements §4.8: scans the target printer's queue (or
// every printer's queue, if printerID is empty), removes matching
// reserved jobs, and releases their consumed resources. Fails if the
// matching job is the queue head and currently marked executing.
func (s *Scheduler) CancelOrder(orderID string, printerID string) (bool, error) {
	var ids []string
	if printerID != "" {
		ids = []string{printerID}
	} else {
		for id := range s.resources.All() {
			ids = append(ids, id)
		}
	}

	removedAny := false
	for _, id := range ids {
		printer, ok := s.resources.Printer(id)
		if !ok {
			continue
		}
		job, removed, err := printer.Queue().Remove(orderID)
		if err != nil {
			return false, err
		}
		if !removed {
			continue
		}
		if err := s.resources.Release(id, job.SubOrder.Requirement); err != nil {
			return false, err
		}
		removedAny = true
	}
	return removedAny, nil
}

// UpdateResources implements apply_manual_update (§4.2/§6): applies a
// paper/ink delta to a printer and invalidates the Assignment Cache.
func (s *Scheduler) UpdateResources(printerID string, delta resource.ManualUpdateDelta) error {
	if err := s.resources.ApplyManualUpdate(printerID, delta); err != nil {
		return err
	}
	s.cache.Clear()
	s.cacheEntries = 0
	return nil
}

// AddPrinter registers a new printer with the fleet and rebuilds the
// Capability Index.
func (s *Scheduler) AddPrinter(def *printtypes.PrinterDef) {
	s.resources.AddPrinter(def, s.cfg.MaxQueueLength)
	s.RebuildCapabilityIndex()
	for t := range def.Supported {
		s.knownTypes[t] = struct{}{}
	}
}

// RemovePrinter drops a printer from the fleet and rebuilds the
// Capability Index.
func (s *Scheduler) RemovePrinter(id string) {
	s.resources.RemovePrinter(id)
	s.RebuildCapabilityIndex()
}

// PrinterStatus implements printer_status(id) (§4.6).
func (s *Scheduler) PrinterStatus(id string) (*PrinterStatusView, error) {
	snap, ok := s.resources.Snapshot(id)
	if !ok {
		return nil, &engineerr.SchedulerInternal{Cause: fmt.Errorf("unknown printer %q", id)}
	}

	status := "ready"
	for _, n := range snap.PaperCount {
		if n < 10 {
			status = "low_paper"
		}
	}
	for _, v := range snap.Ink {
		if v < 10 {
			status = "low_ink"
		}
	}
	if snap.QueueLen >= s.cfg.MaxQueueLength {
		status = "queue_full"
	}

	supported := make([]printtypes.PrintType, 0, len(snap.Supported))
	for t := range snap.Supported {
		supported = append(supported, t)
	}

	estimatedWait := 0.0
	if snap.Speed > 0 {
		pagesPerSecond := snap.Speed / 60.0
		const avgJobPages = 20.0
		estimatedWait = float64(snap.QueueLen) * (avgJobPages / pagesPerSecond)
	}

	return &PrinterStatusView{
		ID:                   id,
		Supported:            supported,
		PaperCount:           snap.PaperCount,
		Ink:                  snap.Ink,
		Speed:                snap.Speed,
		QueueSize:            snap.QueueLen,
		Status:               status,
		EstimatedWaitSeconds: estimatedWait,
	}, nil
}

// SystemStatus implements system_status() (§4.6), supplemented with
// per-print-type capable-printer counts (SPEC_FULL.md).
func (s *Scheduler) SystemStatus() SystemStatusView {
	fleet := s.resources.All()
	readyCount := 0
	queuedJobs := 0
	for id := range fleet {
		st, err := s.PrinterStatus(id)
		if err != nil {
			continue
		}
		if st.Status == "ready" {
			readyCount++
		}
		queuedJobs += st.QueueSize
	}

	return SystemStatusView{
		TotalPrinters:         len(fleet),
		ReadyPrinters:         readyCount,
		QueuedJobs:            queuedJobs,
		CacheEntries:          s.cacheEntries,
		CapablePrintersByType: s.index.CountCapable(),
	}
}
