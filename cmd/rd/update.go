package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a record (payload fields are merged, not replaced)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseRecordID(args[0])
		if err != nil {
			return err
		}

		patch, err := parsePayloadFlags(cmd)
		if err != nil {
			return err
		}

		var name *string
		if cmd.Flags().Changed("name") {
			n, _ := cmd.Flags().GetString("name")
			name = &n
		}

		if name == nil && len(patch) == 0 {
			return fmt.Errorf("nothing to update; pass --name, --data, or --set")
		}

		item, err := registry.UpdateRecord(context.Background(), id, name, patch)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(item)
		} else {
			printItem(item)
		}
		return nil
	},
}

func init() {
	updateCmd.Flags().String("name", "", "new record name")
	updateCmd.Flags().String("data", "", "payload patch as a JSON object")
	updateCmd.Flags().StringArray("set", nil, "payload field as key=value (repeatable)")
}
