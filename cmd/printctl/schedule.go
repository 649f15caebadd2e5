/*
Copyright (c) automateprint authors.
Licensed under the MIT license.
*/

package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Vishnuvikas56/automateprint/pkg/engine"
	"github.com/Vishnuvikas56/automateprint/pkg/printtypes"
)

func newScheduleCmd(cfgFile *string) *cobra.Command {
	var orderJSON string
	var priority int

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Schedule a demo order against the configured fleet",
		RunE: func(cmd *cobra.Command, args []string) error {
			fleet, err := loadFleet(*cfgFile)
			if err != nil {
				return err
			}

			eng, err := engine.Construct(fleet, nil, mustLogger())
			if err != nil {
				return err
			}

			order, err := parseOrder(orderJSON)
			if err != nil {
				return err
			}

			result, err := eng.ScheduleOrder(order, "", priority, nil)
			if err != nil {
				return err
			}

			out, _ := json.MarshalIndent(result, "", "  ")
			fmt.Println(string(out))
			return nil
		},
	}
	cmd.Flags().StringVar(&orderJSON, "order", `{"bw":{"paper_count":{"A4":10}},"color":{"paper_count":{"A4":5}}}`, "order as JSON: {print_type: {paper_count: {kind: count}}}")
	cmd.Flags().IntVar(&priority, "priority", 5, "job priority, 1 (urgent) to 10 (low)")
	return cmd
}

func parseOrder(raw string) (printtypes.Order, error) {
	var doc map[string]struct {
		PaperCount map[string]int `json:"paper_count"`
	}
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("parsing order JSON: %w", err)
	}

	order := make(printtypes.Order, len(doc))
	for pt, req := range doc {
		paper := make(map[printtypes.PaperKind]int, len(req.PaperCount))
		for k, v := range req.PaperCount {
			paper[printtypes.PaperKind(k)] = v
		}
		order[printtypes.PrintType(pt)] = printtypes.Requirement{PaperCount: paper}
	}
	return order, nil
}
