package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/alfredjeanlab/refdata/internal/model"
	"github.com/alfredjeanlab/refdata/internal/ui"
)

// fixedViewKeys are rendered separately from the payload fields.
var fixedViewKeys = map[string]bool{
	"id": true, "type": true, "name": true, "createdAt": true, "updatedAt": true,
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling JSON: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

// viewField renders a view value for table output.
func viewField(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		// JSON numbers decode as float64; print integers without a decimal.
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%g", val)
	case bool:
		return fmt.Sprintf("%t", val)
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(data)
	}
}

// payloadKeys returns the non-fixed view keys in sorted order.
func payloadKeys(item model.View) []string {
	var keys []string
	for k := range item {
		if !fixedViewKeys[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

func printItem(item model.View) {
	fmt.Printf("ID:         %s\n", ui.RenderMuted(viewField(item["id"])))
	if t, ok := item["type"]; ok {
		fmt.Printf("Type:       %s\n", ui.RenderType(viewField(t)))
	}
	fmt.Printf("Name:       %s\n", ui.RenderName(viewField(item["name"])))
	for _, k := range payloadKeys(item) {
		fmt.Printf("%-11s %s\n", k+":", viewField(item[k]))
	}
	fmt.Printf("Created At: %s\n", ui.RenderMuted(viewField(item["createdAt"])))
	fmt.Printf("Updated At: %s\n", ui.RenderMuted(viewField(item["updatedAt"])))
}

func printItemsTable(items []model.View, withType bool) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if withType {
		fmt.Fprintln(w, "ID\tTYPE\tNAME")
	} else {
		fmt.Fprintln(w, "ID\tNAME")
	}
	for _, item := range items {
		if withType {
			fmt.Fprintf(w, "%s\t%s\t%s\n",
				viewField(item["id"]),
				ui.RenderType(viewField(item["type"])),
				viewField(item["name"]),
			)
		} else {
			fmt.Fprintf(w, "%s\t%s\n", viewField(item["id"]), viewField(item["name"]))
		}
	}
	w.Flush()
	fmt.Printf("\n%d records\n", len(items))
}
