package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alfredjeanlab/refdata/internal/ui"
	"github.com/spf13/cobra"
)

var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "List distinct record types",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		types, err := registry.ListTypes(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(types)
			return nil
		}
		for _, t := range types {
			fmt.Println(ui.RenderType(t))
		}
		return nil
	},
}
