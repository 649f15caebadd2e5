/*
Copyright (c) automateprint authors.
Licensed under the MIT license.
*/

// Package consumption holds the ink-consumption model (§4.5): a
// per-print-type, per-channel percentage-per-page table. It is
// treated as configuration, not hard-wired code, so tests (and
// operators, via scheduler.Config's WithInkConsumption) can
// parameterize it.
package consumption

import "github.com/Vishnuvikas56/automateprint/pkg/printtypes"

// Table maps a print type to its per-page ink draw by channel, in
// percentage points.
type Table map[printtypes.PrintType]map[printtypes.InkChannel]float64

// Default is the ink consumption table specified in §4.5.
func Default() Table {
	return Table{
		"bw": {
			printtypes.InkBlack: 0.5,
		},
		"color": {
			printtypes.InkCyan:  0.3,
			printtypes.InkMag:   0.3,
			printtypes.InkYel:   0.3,
			printtypes.InkBlack: 0.1,
		},
		"glossy": {
			printtypes.InkCyan:  0.5,
			printtypes.InkMag:   0.5,
			printtypes.InkYel:   0.5,
			printtypes.InkBlack: 0.2,
		},
		"thick": {
			printtypes.InkCyan:  0.45,
			printtypes.InkMag:   0.45,
			printtypes.InkYel:   0.45,
			printtypes.InkBlack: 0.15,
		},
		"postersize": {
			printtypes.InkCyan:  0.8,
			printtypes.InkMag:   0.8,
			printtypes.InkYel:   0.8,
			printtypes.InkBlack: 0.5,
		},
	}
}

// Channels returns the set of ink channels a print type draws from,
// per the table. The Scorer's ink factor and its hard-fail check do
// not use it; they score on their own per-type channel set.
func (t Table) Channels(pt printtypes.PrintType) map[printtypes.InkChannel]struct{} {
	out := make(map[printtypes.InkChannel]struct{})
	for ch := range t[pt] {
		out[ch] = struct{}{}
	}
	return out
}

// RequiredInk computes the total ink percentage needed, per channel,
// to print the given number of pages of print type pt.
func (t Table) RequiredInk(pt printtypes.PrintType, pages int) map[printtypes.InkChannel]float64 {
	out := make(map[printtypes.InkChannel]float64)
	for ch, perPage := range t[pt] {
		out[ch] = perPage * float64(pages)
	}
	return out
}

// RequiredPaper computes the paper-kind consumption for one print
// type's requirement: it is simply the requested sheet counts. Types
// of a sub-order that draw on the same paper kind are summed by the
// caller (resource.Manager.ConsumptionFor).
func RequiredPaper(req printtypes.Requirement) map[printtypes.PaperKind]int {
	out := make(map[printtypes.PaperKind]int, len(req.PaperCount))
	for k, v := range req.PaperCount {
		out[k] = v
	}
	return out
}
