/*
Copyright (c) automateprint authors.
Licensed under the MIT license.
*/

// Package validation implements the Validator (C8): schema and range
// checks for orders, fleet definitions, and weight vectors.
package validation

import (
	"regexp"

	"github.com/go-playground/validator/v10"

	"github.com/Vishnuvikas56/automateprint/pkg/engineerr"
	"github.com/Vishnuvikas56/automateprint/pkg/printtypes"
	"github.com/Vishnuvikas56/automateprint/pkg/scorer"
)

const (
	maxOrderKeys       = 10
	maxPaperCountValue = 10000
)

var tagPattern = regexp.MustCompile(`^[a-zA-Z0-9]+$`)

// weightsDoc mirrors scorer.Weights with struct tags so the
// go-playground/validator engine can enforce the per-field [0,1]
// range; the sum-to-1.0±0.01 invariant is checked separately since it
// spans fields.
type weightsDoc struct {
	Paper  float64 `validate:"gte=0,lte=1"`
	Ink    float64 `validate:"gte=0,lte=1"`
	Speed  float64 `validate:"gte=0,lte=1"`
	Queue  float64 `validate:"gte=0,lte=1"`
	Extras float64 `validate:"gte=0,lte=1"`
}

var structValidator = validator.New()

// ValidateOrder checks an order's shape: non-empty, at most 10 keys,
// each key a known alphanumeric print-type tag, each requirement's
// paper counts positive integers capped at 10000.
func ValidateOrder(order printtypes.Order, knownTypes map[printtypes.PrintType]struct{}) error {
	if len(order) == 0 {
		return &engineerr.ValidationError{Field: "order", Message: "must not be empty"}
	}
	if len(order) > maxOrderKeys {
		return &engineerr.ValidationError{Field: "order", Message: "must have at most 10 print-type keys"}
	}

	for pt, req := range order {
		if !tagPattern.MatchString(string(pt)) {
			return &engineerr.ValidationError{Field: "order." + string(pt), Message: "print type tag must be alphanumeric"}
		}
		if knownTypes != nil {
			if _, ok := knownTypes[pt]; !ok {
				return &engineerr.ValidationError{Field: "order." + string(pt), Message: "unknown print type tag"}
			}
		}
		if len(req.PaperCount) == 0 {
			return &engineerr.ValidationError{Field: "order." + string(pt) + ".paper_count", Message: "must not be empty"}
		}
		for kind, n := range req.PaperCount {
			if n <= 0 {
				return &engineerr.ValidationError{Field: "order." + string(pt) + ".paper_count." + string(kind), Message: "must be a positive integer"}
			}
			if n > maxPaperCountValue {
				return &engineerr.ValidationError{Field: "order." + string(pt) + ".paper_count." + string(kind), Message: "must be at most 10000"}
			}
		}
	}
	return nil
}

// ValidateFleet checks that every printer definition has the required
// fields with values in range.
func ValidateFleet(fleet map[string]*printtypes.PrinterDef) error {
	if len(fleet) == 0 {
		return &engineerr.ValidationError{Field: "fleet", Message: "must not be empty"}
	}
	for id, p := range fleet {
		if id == "" {
			return &engineerr.ValidationError{Field: "fleet.id", Message: "must not be empty"}
		}
		if len(p.Supported) == 0 {
			return &engineerr.ValidationError{Field: "fleet." + id + ".supported", Message: "must not be empty"}
		}
		if p.PaperCount == nil {
			return &engineerr.ValidationError{Field: "fleet." + id + ".paper_count", Message: "must be present (may be empty)"}
		}
		for kind, n := range p.PaperCount {
			if n < 0 {
				return &engineerr.ValidationError{Field: "fleet." + id + ".paper_count." + string(kind), Message: "must be non-negative"}
			}
		}
		for ch, v := range p.Ink {
			if v < 0 || v > 100 {
				return &engineerr.ValidationError{Field: "fleet." + id + ".ink." + string(ch), Message: "must be in [0,100]"}
			}
		}
		if p.Speed < 0 {
			return &engineerr.ValidationError{Field: "fleet." + id + ".speed", Message: "must be non-negative"}
		}
	}
	return nil
}

// ValidateWeights checks each weight is in [0,1] (via the
// go-playground/validator struct tags above) and that the vector sums
// to 1.0 within a 0.01 tolerance.
func ValidateWeights(w scorer.Weights) error {
	doc := weightsDoc{Paper: w.Paper, Ink: w.Ink, Speed: w.Speed, Queue: w.Queue, Extras: w.Extras}
	if err := structValidator.Struct(doc); err != nil {
		return &engineerr.ValidationError{Field: "weights", Message: err.Error()}
	}

	sum := w.Paper + w.Ink + w.Speed + w.Queue + w.Extras
	if sum < 0.99 || sum > 1.01 {
		return &engineerr.ValidationError{Field: "weights", Message: "must sum to 1.0 within ±0.01"}
	}
	return nil
}
