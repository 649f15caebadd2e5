/*
Copyright (c) automateprint authors.
Licensed under the MIT license.
*/

// Package engine is the public façade the rest of the system (HTTP
// layer, CLI) consumes: it implements the §6 external interface over
// the Scheduler Core, translating the language-neutral operation
// names (construct, schedule_order, cancel_order, update_resources,
// get_printer_status, get_system_status) into idiomatic Go methods.
package engine

import (
	"go.uber.org/zap"

	"github.com/Vishnuvikas56/automateprint/pkg/printtypes"
	"github.com/Vishnuvikas56/automateprint/pkg/resource"
	"github.com/Vishnuvikas56/automateprint/pkg/scheduler"
	"github.com/Vishnuvikas56/automateprint/pkg/scorer"
)

// Engine is the printer scheduling engine. The zero value is not
// usable; build one with Construct.
type Engine struct {
	core *scheduler.Scheduler
}

// Construct builds an Engine over fleet, optionally overriding the
// default weight vector and/or any Config option.
func Construct(fleet map[string]*printtypes.PrinterDef, weights *scorer.Weights, logger *zap.Logger, opts ...scheduler.Option) (*Engine, error) {
	if logger != nil {
		opts = append([]scheduler.Option{scheduler.WithLogger(logger)}, opts...)
	}
	core, err := scheduler.New(fleet, weights, opts...)
	if err != nil {
		return nil, err
	}
	if logger != nil {
		core.WithZapLogger(logger)
	}
	return &Engine{core: core}, nil
}

// ScheduleOrder is schedule_order. orderID, priority, and
// priorityMap are all optional: pass "" / 0 / nil for engine defaults.
func (e *Engine) ScheduleOrder(order printtypes.Order, orderID string, priority int, priorityMap map[string]int) (*scheduler.AssignmentResult, error) {
	return e.core.ScheduleOrder(order, orderID, priority, priorityMap)
}

// CancelOrder is cancel_order. printerID is optional ("" scans every
// printer's queue).
func (e *Engine) CancelOrder(orderID string, printerID string) (bool, error) {
	return e.core.CancelOrder(orderID, printerID)
}

// UpdateResources is update_resources / apply_manual_update.
func (e *Engine) UpdateResources(printerID string, paperDelta map[printtypes.PaperKind]int, inkDelta map[printtypes.InkChannel]float64, absolute bool) error {
	return e.core.UpdateResources(printerID, resource.ManualUpdateDelta{PaperDelta: paperDelta, InkDelta: inkDelta, Absolute: absolute})
}

// AddPrinter adds a printer to the live fleet.
func (e *Engine) AddPrinter(def *printtypes.PrinterDef) {
	e.core.AddPrinter(def)
}

// RemovePrinter removes a printer from the live fleet.
func (e *Engine) RemovePrinter(id string) {
	e.core.RemovePrinter(id)
}

// GetPrinterStatus is get_printer_status.
func (e *Engine) GetPrinterStatus(id string) (*scheduler.PrinterStatusView, error) {
	return e.core.PrinterStatus(id)
}

// GetSystemStatus is get_system_status.
func (e *Engine) GetSystemStatus() scheduler.SystemStatusView {
	return e.core.SystemStatus()
}
