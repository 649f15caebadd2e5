/*
Copyright (c) automateprint authors.
Licensed under the MIT license.
*/

// Package scorer implements the Scorer (C5): a pure function from a
// printer snapshot and a sub-order requirement to a weighted score in
// [0,1], with hard-fail short-circuits on paper/ink exhaustion.
package scorer

import (
	"sort"

	"github.com/Vishnuvikas56/automateprint/pkg/printtypes"
)

// Weights is the weight vector for the five scoring factors. Must sum
// to 1.0 ± 0.01, each in [0,1] (enforced by pkg/validation).
type Weights struct {
	Paper  float64
	Ink    float64
	Speed  float64
	Queue  float64
	Extras float64
}

// Default returns the weight vector specified in §4.5/§6 DEFAULT_WEIGHTS.
func Default() Weights {
	return Weights{Paper: 0.35, Ink: 0.30, Speed: 0.15, Queue: 0.15, Extras: 0.05}
}

// Result carries the outcome of scoring one printer against one
// sub-order: either a score in [0,1], or a hard-fail reason.
type Result struct {
	Score      float64
	HardFail   bool
	FailReason string // "paper" | "ink"
	Resource   string
	Available  float64
	Needed     float64
}

// Score evaluates a printer snapshot against a sub-order's
// requirement map using the given weights.
func Score(snapshot printtypes.Snapshot, req map[printtypes.PrintType]printtypes.Requirement, weights Weights) Result {
	paperScore, paperFail := scorePaper(snapshot, req)
	if paperFail != nil {
		return *paperFail
	}

	inkScore, inkFail := scoreInk(snapshot, req)
	if inkFail != nil {
		return *inkFail
	}

	speedScore := scoreSpeed(snapshot.Speed)
	queueScore := scoreQueue(snapshot.QueueLen)
	extrasScore := scoreExtras(snapshot.Supported, req)

	total := weights.Paper*paperScore +
		weights.Ink*inkScore +
		weights.Speed*speedScore +
		weights.Queue*queueScore +
		weights.Extras*extrasScore

	return Result{Score: total}
}

func scorePaper(snapshot printtypes.Snapshot, req map[printtypes.PrintType]printtypes.Requirement) (float64, *Result) {
	needByKind := make(map[printtypes.PaperKind]int)
	for _, r := range req {
		for kind, n := range r.PaperCount {
			needByKind[kind] += n
		}
	}

	minRemainingPct := 1.0
	for kind, need := range needByKind {
		available := snapshot.PaperCount[kind]
		if available < need {
			return 0, &Result{HardFail: true, FailReason: "paper", Resource: string(kind), Available: float64(available), Needed: float64(need)}
		}
		var remainingPct float64
		if available > 0 {
			remainingPct = float64(available-need) / float64(available)
		}
		if remainingPct < minRemainingPct {
			minRemainingPct = remainingPct
		}
	}
	if len(needByKind) == 0 {
		return 1, nil
	}
	return minRemainingPct, nil
}

func scoreInk(snapshot printtypes.Snapshot, req map[printtypes.PrintType]printtypes.Requirement) (float64, *Result) {
	channels := make(map[printtypes.InkChannel]struct{})
	for pt := range req {
		for ch := range scoringChannels(pt) {
			channels[ch] = struct{}{}
		}
	}

	minAvailablePct := 1.0
	for ch := range channels {
		available := snapshot.Ink[ch]
		if available <= 0 {
			return 0, &Result{HardFail: true, FailReason: "ink", Resource: string(ch), Available: available, Needed: 0}
		}
		pct := available / 100.0
		if pct < minAvailablePct {
			minAvailablePct = pct
		}
	}
	if len(channels) == 0 {
		return 1, nil
	}
	return minAvailablePct, nil
}

// scoringChannels returns the ink channels factor 2 scores for a print
// type, per §4.5: bw scores on black alone; every other known type
// scores on C/M/Y alone. This is deliberately independent of the
// consumption table, which legitimately draws a little black ink even
// on color/glossy/thick/postersize jobs — that draw doesn't gate the
// ink score or its hard-fail.
func scoringChannels(pt printtypes.PrintType) map[printtypes.InkChannel]struct{} {
	if pt == "bw" {
		return map[printtypes.InkChannel]struct{}{printtypes.InkBlack: {}}
	}
	return map[printtypes.InkChannel]struct{}{
		printtypes.InkCyan: {},
		printtypes.InkMag:  {},
		printtypes.InkYel:  {},
	}
}

func scoreSpeed(speed float64) float64 {
	if speed <= 0 {
		return 0.5
	}
	capped := speed
	if capped > 100 {
		capped = 100
	}
	return capped / 100.0
}

func scoreQueue(queueLen int) float64 {
	return 1.0 / (1.0 + float64(queueLen))
}

func scoreExtras(supported map[printtypes.PrintType]struct{}, req map[printtypes.PrintType]printtypes.Requirement) float64 {
	extras := 0
	for t := range supported {
		if _, required := req[t]; !required {
			extras++
		}
	}
	if extras > 10 {
		extras = 10
	}
	return 1.0 - float64(extras)/10.0
}

// SortCandidates orders printer IDs by (score desc, priority-map-index
// asc, id asc), per §4.6 step 5c.
func SortCandidates(ids []string, scores map[string]float64, priorityIndex map[string]int) []string {
	out := append([]string(nil), ids...)
	sort.SliceStable(out, func(i, j int) bool {
		si, sj := scores[out[i]], scores[out[j]]
		if si != sj {
			return si > sj
		}
		pi, pj := priorityIndex[out[i]], priorityIndex[out[j]]
		if pi != pj {
			return pi < pj
		}
		return out[i] < out[j]
	})
	return out
}
