package main

import (
	"context"
	"fmt"

	"github.com/alfredjeanlab/worldchart/internal/model"
	"github.com/alfredjeanlab/worldchart/internal/ui"
	"github.com/spf13/cobra"
)

var statisticsCmd = &cobra.Command{
	Use:     "statistics",
	Short:   "List statistics with their option schemas and rules",
	GroupID: "charts",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := chartClient.Statistics(context.Background(), lang)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, resp)
		}
		for i, st := range resp.Statistics {
			if i > 0 {
				fmt.Fprintln(out)
			}
			fmt.Fprintf(out, "%s %s\n", ui.RenderAccent(st.Statistic.String()), ui.RenderMuted(st.Label))
			if err := printSchema(out, st.Base); err != nil {
				return err
			}
			for _, r := range st.Rules {
				fmt.Fprintf(out, "  when %s=%s:\n", r.Key, r.Value)
				if err := printSchema(out, r.Patch); err != nil {
					return err
				}
			}
		}
		return nil
	},
}

var optionsCmd = &cobra.Command{
	Use:     "options <statistic>",
	Short:   "Show the options offered for a statistic and chart type",
	GroupID: "charts",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		typ, _ := cmd.Flags().GetString("type")

		resp, err := chartClient.Options(context.Background(), model.Statistic(args[0]), model.ChartType(typ), lang)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, resp)
		}
		fmt.Fprintf(out, "%s %s (type %s)\n", ui.RenderAccent(resp.Statistic.String()), ui.RenderMuted(resp.Label), resp.Type)
		return printSchema(out, resp.Schema)
	},
}

func init() {
	optionsCmd.Flags().String("type", "", "chart type to resolve the schema for (default: the statistic's default type)")
}
