/*
Copyright (c) automateprint authors.
Licensed under the MIT license.
*/

package planner_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vishnuvikas56/automateprint/pkg/capability"
	"github.com/Vishnuvikas56/automateprint/pkg/engineerr"
	"github.com/Vishnuvikas56/automateprint/pkg/planner"
	"github.com/Vishnuvikas56/automateprint/pkg/printtypes"
)

func fleetIndex(fleet map[string]*printtypes.PrinterDef) *capability.Index {
	idx := capability.New()
	idx.Rebuild(fleet)
	return idx
}

func pt(ts ...string) map[printtypes.PrintType]struct{} {
	out := make(map[printtypes.PrintType]struct{}, len(ts))
	for _, t := range ts {
		out[printtypes.PrintType(t)] = struct{}{}
	}
	return out
}

func TestPlan_SingleTypeSingleSubOrder(t *testing.T) {
	fleet := map[string]*printtypes.PrinterDef{
		"P1": {ID: "P1", Supported: pt("bw", "color")},
	}
	order := printtypes.Order{
		"bw": {PaperCount: map[printtypes.PaperKind]int{"A4": 10}},
	}

	subs, err := planner.Plan(order, fleetIndex(fleet))
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, []printtypes.PrintType{"bw"}, subs[0].Types)
}

func TestPlan_SingleCapablePrinterCoversWholeOrder(t *testing.T) {
	fleet := map[string]*printtypes.PrinterDef{
		"P6": {ID: "P6", Supported: pt("bw", "color", "thick", "glossy", "postersize")},
	}
	order := printtypes.Order{
		"bw":    {PaperCount: map[printtypes.PaperKind]int{"A4": 10}},
		"color": {PaperCount: map[printtypes.PaperKind]int{"A4": 5}},
	}

	subs, err := planner.Plan(order, fleetIndex(fleet))
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.ElementsMatch(t, []printtypes.PrintType{"bw", "color"}, subs[0].Types)
}

func TestPlan_DecomposesAcrossDisjointPrinters(t *testing.T) {
	fleet := map[string]*printtypes.PrinterDef{
		"P2": {ID: "P2", Supported: pt("bw", "thick")},
		"P4": {ID: "P4", Supported: pt("postersize")},
	}
	order := printtypes.Order{
		"bw":         {PaperCount: map[printtypes.PaperKind]int{"A4": 10}},
		"postersize": {PaperCount: map[printtypes.PaperKind]int{"Poster": 2}},
	}

	subs, err := planner.Plan(order, fleetIndex(fleet))
	require.NoError(t, err)
	require.Len(t, subs, 2)

	var gotTypes []printtypes.PrintType
	for _, s := range subs {
		gotTypes = append(gotTypes, s.Types...)
	}
	assert.ElementsMatch(t, []printtypes.PrintType{"bw", "postersize"}, gotTypes)
}

func TestPlan_NoCapablePrinterReturnsTypedError(t *testing.T) {
	fleet := map[string]*printtypes.PrinterDef{
		"P1": {ID: "P1", Supported: pt("bw")},
	}
	order := printtypes.Order{
		"postersize": {PaperCount: map[printtypes.PaperKind]int{"Poster": 1}},
	}

	_, err := planner.Plan(order, fleetIndex(fleet))
	require.Error(t, err)
	var noCapable *engineerr.NoCapablePrinter
	require.ErrorAs(t, err, &noCapable)
}

func TestPlan_SubOrdersStayDisjointWhenNoUniversalPrinter(t *testing.T) {
	// P2 and P5 both cover bw; neither covers the whole order, so the
	// greedy pass must trim its second pick down to what's still
	// uncovered instead of re-emitting bw a second time.
	fleet := map[string]*printtypes.PrinterDef{
		"P2": {ID: "P2", Supported: pt("bw", "thick")},
		"P5": {ID: "P5", Supported: pt("bw", "glossy")},
	}
	order := printtypes.Order{
		"bw":     {PaperCount: map[printtypes.PaperKind]int{"A4": 10}},
		"thick":  {PaperCount: map[printtypes.PaperKind]int{"Thick": 3}},
		"glossy": {PaperCount: map[printtypes.PaperKind]int{"Glossy": 3}},
	}

	subs, err := planner.Plan(order, fleetIndex(fleet))
	require.NoError(t, err)

	seen := map[printtypes.PrintType]int{}
	for _, s := range subs {
		for _, pt := range s.Types {
			seen[pt]++
		}
	}
	for pt, n := range seen {
		assert.Equalf(t, 1, n, "type %q must appear in exactly one sub-order, got %d", pt, n)
	}
	assert.Len(t, seen, 3)
}

func TestPlan_PrefersLargerCoverOverManySmallSubOrders(t *testing.T) {
	fleet := map[string]*printtypes.PrinterDef{
		"P6": {ID: "P6", Supported: pt("bw", "color", "thick")},
		"P1": {ID: "P1", Supported: pt("bw")},
	}
	order := printtypes.Order{
		"bw":    {PaperCount: map[printtypes.PaperKind]int{"A4": 10}},
		"color": {PaperCount: map[printtypes.PaperKind]int{"A4": 5}},
		"thick": {PaperCount: map[printtypes.PaperKind]int{"Thick": 3}},
	}

	subs, err := planner.Plan(order, fleetIndex(fleet))
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.ElementsMatch(t, []printtypes.PrintType{"bw", "color", "thick"}, subs[0].Types)
}
