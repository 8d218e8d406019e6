package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:     "health",
	Short:   "Check server health",
	GroupID: "system",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := chartClient.Health(context.Background())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, resp)
		}
		live := "never"
		if resp.LiveUpdated != nil {
			live = resp.LiveUpdated.Local().Format(time.RFC3339)
		}
		fmt.Fprintf(out, "status:        %s\n", resp.Status)
		fmt.Fprintf(out, "cache entries: %d\n", resp.CacheEntries)
		fmt.Fprintf(out, "live updated:  %s\n", live)
		return nil
	},
}

var widgetsCmd = &cobra.Command{
	Use:     "widgets",
	Short:   "List widgets with an outstanding chart selection",
	GroupID: "system",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := httpOnly("widgets")
		if err != nil {
			return err
		}
		resp, err := c.Widgets(context.Background())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, resp)
		}
		if len(resp.Widgets) == 0 {
			fmt.Fprintln(out, "no widgets")
			return nil
		}
		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "WIDGET\tTOKEN\tREQUESTS\tIDLE")
		for _, w := range resp.Widgets {
			idle := time.Duration(w.IdleSecs * float64(time.Second)).Round(time.Second)
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", w.Widget, w.Token, w.Requests, idle)
		}
		return tw.Flush()
	},
}

var invalidateCmd = &cobra.Command{
	Use:     "invalidate <cache-key>",
	Short:   "Drop a cached upstream payload on the server",
	GroupID: "system",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := httpOnly("invalidate")
		if err != nil {
			return err
		}
		if err := c.Invalidate(context.Background(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "invalidated %s\n", args[0])
		return nil
	},
}
