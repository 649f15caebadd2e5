/*
Copyright (c) automateprint authors.
Licensed under the MIT license.
*/

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Vishnuvikas56/automateprint/pkg/engine"
	"github.com/Vishnuvikas56/automateprint/pkg/printtypes"
)

func newUpdateCmd(cfgFile *string) *cobra.Command {
	var printerID, paperKind, inkChannel string
	var paperDelta int
	var inkDelta float64
	var absolute bool

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Apply a manual paper/ink correction to a printer",
		RunE: func(cmd *cobra.Command, args []string) error {
			if printerID == "" {
				return fmt.Errorf("--printer is required")
			}

			fleet, err := loadFleet(*cfgFile)
			if err != nil {
				return err
			}
			eng, err := engine.Construct(fleet, nil, mustLogger())
			if err != nil {
				return err
			}

			var paper map[printtypes.PaperKind]int
			if paperKind != "" {
				paper = map[printtypes.PaperKind]int{printtypes.PaperKind(paperKind): paperDelta}
			}
			var ink map[printtypes.InkChannel]float64
			if inkChannel != "" {
				ink = map[printtypes.InkChannel]float64{printtypes.InkChannel(inkChannel): inkDelta}
			}

			if err := eng.UpdateResources(printerID, paper, ink, absolute); err != nil {
				return err
			}
			fmt.Printf("updated %s\n", printerID)
			return nil
		},
	}
	cmd.Flags().StringVar(&printerID, "printer", "", "target printer ID")
	cmd.Flags().StringVar(&paperKind, "paper-kind", "", "paper kind to adjust")
	cmd.Flags().IntVar(&paperDelta, "paper-delta", 0, "paper count delta (or absolute value with --absolute)")
	cmd.Flags().StringVar(&inkChannel, "ink-channel", "", "ink channel to adjust")
	cmd.Flags().Float64Var(&inkDelta, "ink-delta", 0, "ink percentage delta (or absolute value with --absolute)")
	cmd.Flags().BoolVar(&absolute, "absolute", false, "treat deltas as absolute replacements instead of additive")
	return cmd
}
