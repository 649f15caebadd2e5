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
)

func newStatusCmd(cfgFile *string) *cobra.Command {
	var printerID string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Print system or per-printer status",
		RunE: func(cmd *cobra.Command, args []string) error {
			fleet, err := loadFleet(*cfgFile)
			if err != nil {
				return err
			}
			eng, err := engine.Construct(fleet, nil, mustLogger())
			if err != nil {
				return err
			}

			if printerID != "" {
				st, err := eng.GetPrinterStatus(printerID)
				if err != nil {
					return err
				}
				out, _ := json.MarshalIndent(st, "", "  ")
				fmt.Println(string(out))
				return nil
			}

			out, _ := json.MarshalIndent(eng.GetSystemStatus(), "", "  ")
			fmt.Println(string(out))
			return nil
		},
	}
	cmd.Flags().StringVar(&printerID, "printer", "", "report status for a single printer instead of the whole fleet")
	return cmd
}
