/*
Copyright (c) automateprint authors.
Licensed under the MIT license.
*/

// Package engineerr defines the error kinds surfaced by the engine
// (§7): tagged results, not exceptions, so component boundaries can
// switch on kind without reflection into a façade-specific HTTP code.
package engineerr

import (
	"fmt"

	"github.com/Vishnuvikas56/automateprint/pkg/printtypes"
)

// ValidationError signals a malformed order, fleet definition, or
// weight vector. Never retried; the façade maps it to 4xx.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on %s: %s", e.Field, e.Message)
}

// NoCapablePrinter signals that no printer in the fleet supports some
// required combination of print types. The order cannot succeed
// against the current fleet.
type NoCapablePrinter struct {
	Types map[printtypes.PrintType]struct{}
}

func (e *NoCapablePrinter) Error() string {
	types := make([]printtypes.PrintType, 0, len(e.Types))
	for t := range e.Types {
		types = append(types, t)
	}
	return fmt.Sprintf("no capable printer for types %v", types)
}

// InsufficientResource signals that every otherwise-capable printer
// hard-failed on paper or ink for a sub-order. A retry after refill
// may succeed.
type InsufficientResource struct {
	PrinterID string
	Resource  string
	Available float64
	Needed    float64
}

func (e *InsufficientResource) Error() string {
	return fmt.Sprintf("printer %s: insufficient %s (available %.2f, needed %.2f)", e.PrinterID, e.Resource, e.Available, e.Needed)
}

// QueueOverflow signals that every otherwise-capable printer's queue
// is at cap. The order may succeed once queues drain.
type QueueOverflow struct {
	PrinterIDs []string
}

func (e *QueueOverflow) Error() string {
	return fmt.Sprintf("queue overflow on printers %v", e.PrinterIDs)
}

// ConflictError signals that a printer's version changed between
// snapshot and validate-and-consume. Retried internally by the
// Scheduler Core; never surfaced directly to callers (exhausting the
// retry budget surfaces ResourceConflict instead).
type ConflictError struct {
	PrinterID      string
	ExpectVersion  uint64
	ActualVersion  uint64
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("version conflict on printer %s: expected %d, got %d", e.PrinterID, e.ExpectVersion, e.ActualVersion)
}

// ResourceConflict signals that the per-sub-order retry budget was
// exhausted due to persistent version changes under contention. Safe
// to retry at the caller; the façade maps it to 5xx.
type ResourceConflict struct {
	PrinterID string
	Attempts  int
}

func (e *ResourceConflict) Error() string {
	return fmt.Sprintf("resource conflict on printer %s not resolved after %d attempts", e.PrinterID, e.Attempts)
}

// PartialSchedule wraps an underlying scheduling failure with the set
// of printers against which earlier sub-orders in the same order were
// already committed (§4.6 Atomicity note): the caller must treat the
// whole order as failed and issue CancelOrder to release the partial
// work, since the engine does not auto-compensate.
type PartialSchedule struct {
	OrderID            string
	CommittedPrinterIDs []string
	Cause              error
}

func (e *PartialSchedule) Error() string {
	return fmt.Sprintf("order %s partially committed to %v before failing: %v", e.OrderID, e.CommittedPrinterIDs, e.Cause)
}

func (e *PartialSchedule) Unwrap() error { return e.Cause }

// SchedulerInternal wraps lock timeouts, invariant violations, and
// any other condition that should surface as an opaque 5xx.
type SchedulerInternal struct {
	Cause error
}

func (e *SchedulerInternal) Error() string {
	return fmt.Sprintf("scheduler internal error: %v", e.Cause)
}

func (e *SchedulerInternal) Unwrap() error { return e.Cause }
