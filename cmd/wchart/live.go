package main

import (
	"context"
	"fmt"
	"io"
	"slices"
	"text/tabwriter"

	"github.com/alfredjeanlab/worldchart/internal/model"
	"github.com/alfredjeanlab/worldchart/internal/ui"
	"github.com/spf13/cobra"
)

var liveCmd = &cobra.Command{
	Use:     "live",
	Short:   "Show the resident hourly live snapshot",
	GroupID: "charts",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := chartClient.Live(context.Background())
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), snap)
		}
		return printLive(cmd.OutOrStdout(), snap)
	},
}

// printLive writes one row per snapshot entry with its latest cumulative
// value, "today" first.
func printLive(w io.Writer, snap *model.LiveSnapshot) error {
	if !snap.UpdatedAt.IsZero() {
		fmt.Fprintf(w, "%s %s\n", ui.RenderLabel("updated:"), snap.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}
	keys := make([]model.LiveKey, 0, len(snap.HourlyLive))
	for k := range snap.HourlyLive {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b model.LiveKey) int {
		switch {
		case a == b:
			return 0
		case a == model.LiveToday:
			return -1
		case b == model.LiveToday:
			return 1
		case a < b:
			return -1
		}
		return 1
	})

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tPOINTS\tLATEST")
	for _, k := range keys {
		series := snap.HourlyLive[k]
		latest := "-"
		if n := len(series); n > 0 {
			latest = fmt.Sprintf("%g (%s)", series[n-1].Value, series[n-1].Time.Local().Format("15:04"))
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\n", k, len(series), latest)
	}
	return tw.Flush()
}
