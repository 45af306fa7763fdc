package main

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/alfredjeanlab/refdata/internal/ui"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list [<type>]",
	Short: "List records, optionally scoped to one type",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		if len(args) == 1 {
			items, err := registry.ListByType(ctx, args[0])
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			if jsonOutput {
				printJSON(items)
			} else {
				printItemsTable(items, false)
			}
			return nil
		}

		snap, err := registry.GetAll(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(snap)
			return nil
		}

		types := make([]string, 0, len(snap.ItemsByType))
		for t := range snap.ItemsByType {
			types = append(types, t)
		}
		sort.Strings(types)

		total := 0
		for _, t := range types {
			items := snap.ItemsByType[t]
			fmt.Printf("%s (%d)\n", ui.RenderType(t), len(items))
			for _, item := range items {
				fmt.Printf("  %s  %s\n", ui.RenderMuted(viewField(item["id"])), viewField(item["name"]))
			}
			total += len(items)
		}
		fmt.Printf("\n%d records, version %s\n", total, ui.RenderVersion(fmt.Sprintf("%d", snap.Version)))
		return nil
	},
}
