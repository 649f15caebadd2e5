/*
Copyright (c) automateprint authors.
Licensed under the MIT license.
*/

// Package planner implements the Sub-order Planner (C4): a greedy
// set-cover split of an order's print-type set into sub-orders, each
// fully supported by at least one printer.
package planner

import (
	"sort"

	"github.com/Vishnuvikas56/automateprint/pkg/engineerr"
	"github.com/Vishnuvikas56/automateprint/pkg/printtypes"
)

// CapabilityFinder resolves which printers can handle a given set of
// print types. Satisfied by *capability.Index.
type CapabilityFinder interface {
	FindCapable(types map[printtypes.PrintType]struct{}) []string
}

// Plan decomposes order into the minimum number of sub-orders that
// can each be handled by a single capable printer (§4.4).
func Plan(order printtypes.Order, idx CapabilityFinder) ([]printtypes.SubOrder, error) {
	remaining := order.Types()
	all := sortedTypes(remaining)

	candidates := enumerateCandidates(all, idx)
	if len(candidates) == 0 {
		return nil, &engineerr.NoCapablePrinter{Types: remaining}
	}

	var subOrders []printtypes.SubOrder
	for len(remaining) > 0 {
		best := pickBest(candidates, remaining)
		if best == nil {
			return nil, &engineerr.NoCapablePrinter{Types: remaining}
		}

		// best may be a superset of what's left to cover (it was ranked
		// over the full order, not just remaining); only emit its
		// intersection with remaining so sub-orders stay pairwise
		// disjoint and no type is consumed twice.
		req := make(map[printtypes.PrintType]printtypes.Requirement)
		var types []printtypes.PrintType
		for t := range best {
			if _, stillNeeded := remaining[t]; !stillNeeded {
				continue
			}
			types = append(types, t)
			req[t] = order[t].Clone()
			delete(remaining, t)
		}
		sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

		subOrders = append(subOrders, printtypes.SubOrder{Types: types, Requirement: req})
	}

	return subOrders, nil
}

// enumerateCandidates lists every subset of the order's print types
// (descending by size) whose capable-printer set is non-empty,
// deduplicated. |T| is bounded to <=10 by the Validator, so exhaustive
// enumeration (<=1023 subsets) is cheap.
func enumerateCandidates(types []printtypes.PrintType, idx CapabilityFinder) []map[printtypes.PrintType]struct{} {
	n := len(types)
	seen := make(map[string]struct{})
	var out []map[printtypes.PrintType]struct{}

	// Iterate subset bitmasks from largest to smallest popcount so
	// Plan's greedy loop tends to see the biggest viable cover first;
	// pickBest re-ranks explicitly regardless.
	type subset struct {
		mask int
		pop  int
	}
	subsets := make([]subset, 0, (1<<n)-1)
	for mask := 1; mask < (1 << n); mask++ {
		subsets = append(subsets, subset{mask: mask, pop: popcount(mask)})
	}
	sort.Slice(subsets, func(i, j int) bool { return subsets[i].pop > subsets[j].pop })

	for _, s := range subsets {
		set := make(map[printtypes.PrintType]struct{})
		var tags []string
		for i := 0; i < n; i++ {
			if s.mask&(1<<i) != 0 {
				set[types[i]] = struct{}{}
				tags = append(tags, string(types[i]))
			}
		}
		sort.Strings(tags)
		key := joinTags(tags)
		if _, dup := seen[key]; dup {
			continue
		}
		if len(idx.FindCapable(set)) == 0 {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, set)
	}
	return out
}

// pickBest selects the candidate maximizing |S ∩ remaining|, ties
// broken by larger |S|, then lexicographic order of sorted tags.
func pickBest(candidates []map[printtypes.PrintType]struct{}, remaining map[printtypes.PrintType]struct{}) map[printtypes.PrintType]struct{} {
	var best map[printtypes.PrintType]struct{}
	bestOverlap := -1
	bestSize := -1
	var bestTags string

	for _, c := range candidates {
		overlap := 0
		for t := range c {
			if _, ok := remaining[t]; ok {
				overlap++
			}
		}
		if overlap == 0 {
			continue
		}

		tags := sortedTagString(c)
		switch {
		case overlap > bestOverlap:
			best, bestOverlap, bestSize, bestTags = c, overlap, len(c), tags
		case overlap == bestOverlap && len(c) > bestSize:
			best, bestSize, bestTags = c, len(c), tags
		case overlap == bestOverlap && len(c) == bestSize && tags < bestTags:
			best, bestTags = c, tags
		}
	}
	return best
}

func sortedTypes(set map[printtypes.PrintType]struct{}) []printtypes.PrintType {
	out := make([]printtypes.PrintType, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func sortedTagString(set map[printtypes.PrintType]struct{}) string {
	tags := make([]string, 0, len(set))
	for t := range set {
		tags = append(tags, string(t))
	}
	sort.Strings(tags)
	return joinTags(tags)
}

func joinTags(tags []string) string {
	out := ""
	for i, t := range tags {
		if i > 0 {
			out += ","
		}
		out += t
	}
	return out
}

func popcount(x int) int {
	n := 0
	for x != 0 {
		n += x & 1
		x >>= 1
	}
	return n
}
