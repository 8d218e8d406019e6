package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/alfredjeanlab/worldchart/internal/options"
	"github.com/alfredjeanlab/worldchart/internal/ui"
)

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// printSchema writes one row per option key. The default value is marked
// with an asterisk; disabled options print "-".
func printSchema(w io.Writer, s options.Schema) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, key := range s.Keys() {
		e, _ := s.Get(key)
		if !e.IsEnabled() {
			fmt.Fprintf(tw, "  %s\t%s\n", ui.RenderLabel(key.String()), ui.RenderMuted("-"))
			continue
		}
		var vals []string
		for _, v := range e.Values() {
			item := v.Value
			if v.Label != "" && v.Label != v.Value {
				item += " (" + v.Label + ")"
			}
			if v.Value == e.Default() {
				item = ui.RenderAccent("*" + item)
			}
			vals = append(vals, item)
		}
		fmt.Fprintf(tw, "  %s\t%s\n", ui.RenderLabel(key.String()), strings.Join(vals, ", "))
	}
	return tw.Flush()
}
