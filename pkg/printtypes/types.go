/*
Copyright (c) automateprint authors.
Licensed under the MIT license.
*/

// Package printtypes defines the data model shared across the printer
// scheduling engine: print types, paper kinds, ink channels, orders,
// sub-order requirements, printers, and resource snapshots.
package printtypes

import "time"

// PrintType identifies a category of print job, e.g. "bw", "color",
// "glossy", "thick", "postersize". The set is open: any alphanumeric
// tag is a valid PrintType as far as the data model is concerned;
// validation of known tags happens in pkg/validation.
type PrintType string

// PaperKind identifies a physical sheet inventory bucket, e.g. "A4",
// "A3", "Glossy", "Poster". Orthogonal to PrintType.
type PaperKind string

// InkChannel identifies a colorant tank, e.g. "black", "C", "M", "Y".
type InkChannel string

const (
	InkBlack InkChannel = "black"
	InkCyan  InkChannel = "C"
	InkMag   InkChannel = "M"
	InkYel   InkChannel = "Y"
)

// Requirement is the paper demand for a single print type within an
// order: paper kind -> sheet count.
type Requirement struct {
	PaperCount map[PaperKind]int
}

// Clone returns a deep copy of the requirement.
func (r Requirement) Clone() Requirement {
	out := Requirement{PaperCount: make(map[PaperKind]int, len(r.PaperCount))}
	for k, v := range r.PaperCount {
		out.PaperCount[k] = v
	}
	return out
}

// TotalPages sums the requested sheet counts across all paper kinds.
func (r Requirement) TotalPages() int {
	total := 0
	for _, n := range r.PaperCount {
		total += n
	}
	return total
}

// Order maps each requested print type to its paper requirement. An
// order is atomic input to the engine; the Planner decomposes it into
// one or more sub-orders.
type Order map[PrintType]Requirement

// Types returns the order's print-type key set.
func (o Order) Types() map[PrintType]struct{} {
	out := make(map[PrintType]struct{}, len(o))
	for t := range o {
		out[t] = struct{}{}
	}
	return out
}

// SubOrder is a maximal subset of an order's print types assigned, as
// a unit, to a single capable printer.
type SubOrder struct {
	Types       []PrintType
	Requirement map[PrintType]Requirement
}

// TypeSet returns the sub-order's print types as a set.
func (s SubOrder) TypeSet() map[PrintType]struct{} {
	out := make(map[PrintType]struct{}, len(s.Types))
	for _, t := range s.Types {
		out[t] = struct{}{}
	}
	return out
}

// PrinterDef is the static/dynamic definition of a printer as supplied
// at fleet construction or refill time. Metadata beyond these fields
// is opaque to the engine and is not modeled here.
type PrinterDef struct {
	ID         string
	Supported  map[PrintType]struct{}
	PaperCount map[PaperKind]int
	Ink        map[InkChannel]float64
	Speed      float64 // pages per minute
}

// Snapshot is an immutable capture of a printer's paper/ink levels and
// optimistic-concurrency version at a moment in time.
type Snapshot struct {
	PrinterID  string
	Version    uint64
	PaperCount map[PaperKind]int
	Ink        map[InkChannel]float64
	QueueLen   int
	Speed      float64
	Supported  map[PrintType]struct{}
	CapturedAt time.Time
}

// ReservedJob is a queue entry produced once a sub-order has been
// committed against a printer's resources.
type ReservedJob struct {
	OrderID     string
	SubOrder    SubOrder
	Priority    int
	EnqueuedAt  time.Time
	enqueueSeq  uint64
	PrinterID   string
}

// EnqueueSeq returns the monotonic sequence number assigned at push
// time, used to break priority ties FIFO-style.
func (j ReservedJob) EnqueueSeq() uint64 { return j.enqueueSeq }

// WithEnqueueSeq returns a copy of the job stamped with the given
// sequence number.
func (j ReservedJob) WithEnqueueSeq(seq uint64) ReservedJob {
	j.enqueueSeq = seq
	return j
}
