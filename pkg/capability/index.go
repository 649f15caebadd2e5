/*
Copyright (c) automateprint authors.
Licensed under the MIT license.
*/

// Package capability implements the Capability Index: an inverted
// index from print type to the set of printer IDs that support it.
package capability

import (
	"sync"

	"github.com/Vishnuvikas56/automateprint/pkg/printtypes"
)

// Index is a thread-safe inverted index. Reads (FindCapable) take a
// shared lock; Rebuild takes an exclusive one.
type Index struct {
	mu    sync.RWMutex
	byType map[printtypes.PrintType]map[string]struct{}
}

// New returns an empty index. Call Rebuild before first use.
func New() *Index {
	return &Index{byType: make(map[printtypes.PrintType]map[string]struct{})}
}

// Rebuild performs a full rebuild from the current fleet definitions.
// Called whenever a printer is added, removed, or its Supported set
// changes.
func (idx *Index) Rebuild(fleet map[string]*printtypes.PrinterDef) {
	next := make(map[printtypes.PrintType]map[string]struct{})
	for id, p := range fleet {
		for t := range p.Supported {
			set, ok := next[t]
			if !ok {
				set = make(map[string]struct{})
				next[t] = set
			}
			set[id] = struct{}{}
		}
	}

	idx.mu.Lock()
	idx.byType = next
	idx.mu.Unlock()
}

// FindCapable returns the printer IDs whose Supported set is a
// superset of the requested types, i.e. the intersection of each
// type's printer set. Empty input returns an empty result. No
// ordering is guaranteed on the output.
func (idx *Index) FindCapable(types map[printtypes.PrintType]struct{}) []string {
	if len(types) == 0 {
		return nil
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var sets []map[string]struct{}
	for t := range types {
		set, ok := idx.byType[t]
		if !ok || len(set) == 0 {
			return nil
		}
		sets = append(sets, set)
	}

	// Intersect starting from the smallest set for efficiency.
	return intersect(sets)
}

func intersect(sets []map[string]struct{}) []string {
	smallest := sets[0]
	for _, s := range sets[1:] {
		if len(s) < len(smallest) {
			smallest = s
		}
	}

	out := make([]string, 0, len(smallest))
	for id := range smallest {
		inAll := true
		for _, s := range sets {
			if _, ok := s[id]; !ok {
				inAll = false
				break
			}
		}
		if inAll {
			out = append(out, id)
		}
	}
	return out
}

// CountCapable reports, for each known print type, how many printers
// currently support it. Used by system-status reporting.
func (idx *Index) CountCapable() map[printtypes.PrintType]int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	out := make(map[printtypes.PrintType]int, len(idx.byType))
	for t, set := range idx.byType {
		out[t] = len(set)
	}
	return out
}
