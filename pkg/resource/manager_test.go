/*
Copyright (c) automateprint authors.
Licensed under the MIT license.
*/

package resource_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vishnuvikas56/automateprint/pkg/engineerr"
	"github.com/Vishnuvikas56/automateprint/pkg/printtypes"
	"github.com/Vishnuvikas56/automateprint/pkg/resource"
)

func oneProtoPrinter() map[string]*printtypes.PrinterDef {
	return map[string]*printtypes.PrinterDef{
		"P1": {
			ID:         "P1",
			Supported:  map[printtypes.PrintType]struct{}{"bw": {}, "color": {}},
			PaperCount: map[printtypes.PaperKind]int{"A4": 100},
			Ink:        map[printtypes.InkChannel]float64{printtypes.InkBlack: 50, printtypes.InkCyan: 50, printtypes.InkMag: 50, printtypes.InkYel: 50},
			Speed:      30,
		},
	}
}

func TestValidateAndConsume_SucceedsAndBumpsVersion(t *testing.T) {
	m := resource.New(oneProtoPrinter(), 20)
	snap, ok := m.Snapshot("P1")
	require.True(t, ok)
	require.Equal(t, uint64(0), snap.Version)

	req := map[printtypes.PrintType]printtypes.Requirement{
		"bw": {PaperCount: map[printtypes.PaperKind]int{"A4": 10}},
	}
	err := m.ValidateAndConsume("P1", req, snap)
	require.NoError(t, err)

	after, ok := m.Snapshot("P1")
	require.True(t, ok)
	assert.Equal(t, uint64(1), after.Version)
	assert.Equal(t, 90, after.PaperCount["A4"])
	assert.InDelta(t, 45.0, after.Ink[printtypes.InkBlack], 0.001)
}

func TestValidateAndConsume_StaleSnapshotConflicts(t *testing.T) {
	m := resource.New(oneProtoPrinter(), 20)
	snap, _ := m.Snapshot("P1")

	req := map[printtypes.PrintType]printtypes.Requirement{
		"bw": {PaperCount: map[printtypes.PaperKind]int{"A4": 1}},
	}
	require.NoError(t, m.ValidateAndConsume("P1", req, snap))

	err := m.ValidateAndConsume("P1", req, snap)
	require.Error(t, err)
	var conflict *engineerr.ConflictError
	require.ErrorAs(t, err, &conflict)
}

func TestValidateAndConsume_InsufficientPaperFails(t *testing.T) {
	m := resource.New(oneProtoPrinter(), 20)
	snap, _ := m.Snapshot("P1")

	req := map[printtypes.PrintType]printtypes.Requirement{
		"bw": {PaperCount: map[printtypes.PaperKind]int{"A4": 1000}},
	}
	err := m.ValidateAndConsume("P1", req, snap)
	require.Error(t, err)
	var insufficient *engineerr.InsufficientResource
	require.ErrorAs(t, err, &insufficient)

	after, _ := m.Snapshot("P1")
	assert.Equal(t, uint64(0), after.Version, "failed consume must not bump version")
}

func TestRelease_RestoresConsumedResourcesAndBumpsVersion(t *testing.T) {
	m := resource.New(oneProtoPrinter(), 20)
	snap, _ := m.Snapshot("P1")

	req := map[printtypes.PrintType]printtypes.Requirement{
		"bw": {PaperCount: map[printtypes.PaperKind]int{"A4": 10}},
	}
	require.NoError(t, m.ValidateAndConsume("P1", req, snap))

	require.NoError(t, m.Release("P1", req))

	after, _ := m.Snapshot("P1")
	assert.Equal(t, uint64(2), after.Version)
	assert.Equal(t, 100, after.PaperCount["A4"])
}

func TestApplyManualUpdate_AdditiveClampsToZero(t *testing.T) {
	m := resource.New(oneProtoPrinter(), 20)

	err := m.ApplyManualUpdate("P1", resource.ManualUpdateDelta{
		PaperDelta: map[printtypes.PaperKind]int{"A4": -10000},
	})
	require.NoError(t, err)

	after, _ := m.Snapshot("P1")
	assert.Equal(t, 0, after.PaperCount["A4"])
}

func TestApplyManualUpdate_AbsoluteReplacesReading(t *testing.T) {
	m := resource.New(oneProtoPrinter(), 20)

	err := m.ApplyManualUpdate("P1", resource.ManualUpdateDelta{
		InkDelta: map[printtypes.InkChannel]float64{printtypes.InkBlack: 12.5},
		Absolute: true,
	})
	require.NoError(t, err)

	after, _ := m.Snapshot("P1")
	assert.InDelta(t, 12.5, after.Ink[printtypes.InkBlack], 0.001)
}

func TestApplyManualUpdate_InkClampedToPercentRange(t *testing.T) {
	m := resource.New(oneProtoPrinter(), 20)

	err := m.ApplyManualUpdate("P1", resource.ManualUpdateDelta{
		InkDelta: map[printtypes.InkChannel]float64{printtypes.InkBlack: 1000},
	})
	require.NoError(t, err)

	after, _ := m.Snapshot("P1")
	assert.Equal(t, 100.0, after.Ink[printtypes.InkBlack])
}

func TestSnapshot_UnknownPrinterReportsNotOK(t *testing.T) {
	m := resource.New(oneProtoPrinter(), 20)
	_, ok := m.Snapshot("unknown")
	assert.False(t, ok)
}

func TestAddAndRemovePrinter(t *testing.T) {
	m := resource.New(oneProtoPrinter(), 20)

	m.AddPrinter(&printtypes.PrinterDef{ID: "P2", Supported: map[printtypes.PrintType]struct{}{"thick": {}}}, 20)
	_, ok := m.Snapshot("P2")
	require.True(t, ok)

	m.RemovePrinter("P2")
	_, ok = m.Snapshot("P2")
	assert.False(t, ok)
}
