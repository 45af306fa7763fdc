package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alfredjeanlab/refdata/internal/model"
	"github.com/spf13/cobra"
)

// seedRecords is the fixture set posted by `rd seed`.
var seedRecords = []struct {
	Type    string
	Name    string
	Payload model.Payload
}{
	{"COST_TYPE", "Fuel", model.Payload{"code": "FUEL", "active": true}},
	{"COST_TYPE", "Tolls", model.Payload{"code": "TOLL", "active": true}},
	{"COST_TYPE", "Maintenance", model.Payload{"code": "MAINT", "active": true}},
	{"CURRENCY", "US Dollar", model.Payload{"code": "USD", "symbol": "$"}},
	{"CURRENCY", "Euro", model.Payload{"code": "EUR", "symbol": "€"}},
	{"UNIT", "Kilometer", model.Payload{"code": "KM"}},
	{"UNIT", "Hour", model.Payload{"code": "HR"}},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the registry with a small fixture set",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		// Refuse to seed a non-empty registry unless forced.
		force, _ := cmd.Flags().GetBool("force")
		if !force {
			types, err := registry.ListTypes(ctx)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			if len(types) > 0 {
				return fmt.Errorf("registry is not empty (%d types); use --force to seed anyway", len(types))
			}
		}

		for _, s := range seedRecords {
			item, err := registry.CreateRecord(ctx, s.Type, s.Name, s.Payload)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error creating %s/%s: %v\n", s.Type, s.Name, err)
				os.Exit(1)
			}
			fmt.Printf("created %s %s (%s)\n", s.Type, viewField(item["id"]), s.Name)
		}

		fmt.Printf("\nseeded %d records\n", len(seedRecords))
		return nil
	},
}

func init() {
	seedCmd.Flags().BoolP("force", "f", false, "seed even when the registry is not empty")
}
