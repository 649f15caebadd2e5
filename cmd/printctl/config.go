/*
Copyright (c) automateprint authors.
Licensed under the MIT license.
*/

package main

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/Vishnuvikas56/automateprint/pkg/printtypes"
)

// fleetConfig is the on-disk shape of a fleet definition, bound via
// viper so printctl can load YAML/JSON/TOML interchangeably.
type fleetConfig struct {
	Printers []printerConfig `mapstructure:"printers"`
}

type printerConfig struct {
	ID         string             `mapstructure:"id"`
	Supported  []string           `mapstructure:"supported"`
	PaperCount map[string]int     `mapstructure:"paper_count"`
	Ink        map[string]float64 `mapstructure:"ink"`
	Speed      float64            `mapstructure:"speed"`
}

func loadFleet(cfgFile string) (map[string]*printtypes.PrinterDef, error) {
	v := viper.New()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading fleet config %s: %w", cfgFile, err)
		}
	} else {
		return demoFleet(), nil
	}

	var fc fleetConfig
	if err := v.Unmarshal(&fc); err != nil {
		return nil, fmt.Errorf("parsing fleet config: %w", err)
	}

	fleet := make(map[string]*printtypes.PrinterDef, len(fc.Printers))
	for _, p := range fc.Printers {
		supported := make(map[printtypes.PrintType]struct{}, len(p.Supported))
		for _, t := range p.Supported {
			supported[printtypes.PrintType(t)] = struct{}{}
		}
		paper := make(map[printtypes.PaperKind]int, len(p.PaperCount))
		for k, v := range p.PaperCount {
			paper[printtypes.PaperKind(k)] = v
		}
		ink := make(map[printtypes.InkChannel]float64, len(p.Ink))
		for k, v := range p.Ink {
			ink[printtypes.InkChannel(k)] = v
		}
		fleet[p.ID] = &printtypes.PrinterDef{
			ID:         p.ID,
			Supported:  supported,
			PaperCount: paper,
			Ink:        ink,
			Speed:      p.Speed,
		}
	}
	return fleet, nil
}

// demoFleet mirrors the seed fleet from spec.md §8 (P1..P6), used
// when no --config is given.
func demoFleet() map[string]*printtypes.PrinterDef {
	pt := func(ts ...string) map[printtypes.PrintType]struct{} {
		out := make(map[printtypes.PrintType]struct{}, len(ts))
		for _, t := range ts {
			out[printtypes.PrintType(t)] = struct{}{}
		}
		return out
	}
	pk := func(kv ...interface{}) map[printtypes.PaperKind]int {
		out := make(map[printtypes.PaperKind]int)
		for i := 0; i < len(kv); i += 2 {
			out[printtypes.PaperKind(kv[i].(string))] = kv[i+1].(int)
		}
		return out
	}
	ink := func(kv ...interface{}) map[printtypes.InkChannel]float64 {
		out := make(map[printtypes.InkChannel]float64)
		for i := 0; i < len(kv); i += 2 {
			out[printtypes.InkChannel(kv[i].(string))] = kv[i+1].(float64)
		}
		return out
	}

	return map[string]*printtypes.PrinterDef{
		"P1": {ID: "P1", Supported: pt("bw", "color"), PaperCount: pk("A4", 180, "A3", 50), Ink: ink("black", 70.0, "C", 60.0, "M", 55.0, "Y", 50.0), Speed: 35},
		"P2": {ID: "P2", Supported: pt("bw", "thick"), PaperCount: pk("A4", 90, "Thick", 40), Ink: ink("black", 80.0), Speed: 25},
		"P3": {ID: "P3", Supported: pt("color", "glossy"), PaperCount: pk("Glossy", 30, "A4", 70), Ink: ink("black", 50.0, "C", 45.0, "M", 46.0, "Y", 42.0), Speed: 20},
		"P4": {ID: "P4", Supported: pt("postersize"), PaperCount: pk("Poster", 15), Ink: ink("black", 40.0, "C", 30.0, "M", 32.0, "Y", 28.0), Speed: 15},
		"P5": {ID: "P5", Supported: pt("bw", "color", "glossy"), PaperCount: pk("A4", 200, "Glossy", 60), Ink: ink("black", 85.0, "C", 80.0, "M", 79.0, "Y", 78.0), Speed: 50},
		"P6": {ID: "P6", Supported: pt("bw", "color", "thick", "glossy", "postersize"), PaperCount: pk("A4", 300, "Thick", 80, "Glossy", 100, "Poster", 40), Ink: ink("black", 95.0, "C", 92.0, "M", 93.0, "Y", 94.0), Speed: 65},
	}
}
