package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alfredjeanlab/refdata/internal/ui"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the registry version counter",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		version, err := registry.Version(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(map[string]int64{"version": version})
			return nil
		}
		fmt.Println(ui.RenderVersion(fmt.Sprintf("%d", version)))
		return nil
	},
}
