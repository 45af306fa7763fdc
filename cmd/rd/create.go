package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/alfredjeanlab/refdata/internal/model"
	"github.com/spf13/cobra"
)

// parsePayloadFlags builds a payload from --data (a JSON object) and any
// number of --set key=value pairs. Set values are parsed as JSON when
// possible and kept as strings otherwise, so --set active=true yields a
// boolean while --set code=FT-1 yields a string.
func parsePayloadFlags(cmd *cobra.Command) (model.Payload, error) {
	payload := model.Payload{}

	if data, _ := cmd.Flags().GetString("data"); data != "" {
		if err := json.Unmarshal([]byte(data), &payload); err != nil {
			return nil, fmt.Errorf("invalid --data JSON: %w", err)
		}
	}

	pairs, _ := cmd.Flags().GetStringArray("set")
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --set %q (want key=value)", pair)
		}
		var value any
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			value = raw
		}
		payload[key] = value
	}

	return payload, nil
}

var createCmd = &cobra.Command{
	Use:   "create <type> <name>",
	Short: "Create a record",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		payload, err := parsePayloadFlags(cmd)
		if err != nil {
			return err
		}

		item, err := registry.CreateRecord(context.Background(), args[0], args[1], payload)
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
	createCmd.Flags().String("data", "", "payload fields as a JSON object")
	createCmd.Flags().StringArray("set", nil, "payload field as key=value (repeatable)")
}
