package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/alfredjeanlab/worldchart/internal/api"
	"github.com/alfredjeanlab/worldchart/internal/model"
	"github.com/alfredjeanlab/worldchart/internal/render"
	"github.com/alfredjeanlab/worldchart/internal/ui"
	"github.com/spf13/cobra"
)

var chartCmd = &cobra.Command{
	Use:     "chart <statistic>",
	Short:   "Fetch chart data for a statistic and plot it",
	GroupID: "charts",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := chartRequest(cmd, model.Statistic(args[0]))
		resp, err := chartClient.Chart(context.Background(), req)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, resp)
		}
		if path, _ := cmd.Flags().GetString("html"); path != "" {
			if err := writeHTML(path, resp); err != nil {
				return err
			}
			fmt.Fprintf(out, "wrote %s\n", path)
			return nil
		}
		height, _ := cmd.Flags().GetInt("height")
		return plot(out, resp, height)
	},
}

func chartRequest(cmd *cobra.Command, stat model.Statistic) *api.ChartRequest {
	typ, _ := cmd.Flags().GetString("type")
	rng, _ := cmd.Flags().GetString("range")
	cmp, _ := cmd.Flags().GetString("compare")
	mode, _ := cmd.Flags().GetString("mode")
	widget, _ := cmd.Flags().GetString("widget")
	return &api.ChartRequest{
		Statistic: stat,
		Options: model.OptionSet{
			Type:    model.ChartType(typ),
			Range:   model.ChartRange(rng),
			Compare: model.CompareKey(cmp),
		},
		Mode:   model.Mode(mode),
		Widget: widget,
		Lang:   lang,
	}
}

// plotWidth leaves room for the y axis labels asciigraph draws on the left.
func plotWidth(cols int) int {
	const margin = 12
	if cols <= margin*2 {
		return 0
	}
	return cols - margin
}

func plot(w io.Writer, resp *api.ChartResponse, height int) error {
	fmt.Fprintf(w, "%s %s\n\n", ui.RenderAccent(resp.Statistic.String()), ui.RenderMuted(describeOptions(resp)))
	return render.ASCII(w, resp.Bundles, render.ASCIIOptions{
		Width:  plotWidth(ui.Width()),
		Height: height,
		Color:  !noColor && ui.ShouldUseColor(),
	})
}

func describeOptions(resp *api.ChartResponse) string {
	s := fmt.Sprintf("[%s] type=%s", resp.Mode, resp.Options.Type)
	if resp.Options.Range != "" {
		s += " range=" + resp.Options.Range.String()
	}
	if resp.Options.Compare != "" {
		s += " compare=" + resp.Options.Compare.String()
	}
	return s
}

func writeHTML(path string, resp *api.ChartResponse) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return render.HTML(f, resp.Statistic.String(), resp.Bundles)
}

func addChartFlags(cmd *cobra.Command) {
	cmd.Flags().String("type", "", "chart type (live, daily, weekly, monthly, accumulated)")
	cmd.Flags().String("range", "", "range (oneWeek, oneMonth, threeMonths, all)")
	cmd.Flags().String("compare", "", "compare key for live charts (yesterday, weekAgo, twoWeeksAgo, monthAgo)")
	cmd.Flags().String("mode", "", "widget mode (COMPACT or EXPANDED; default COMPACT)")
	cmd.Flags().String("widget", "", "widget id; a newer request for the same widget supersedes this one")
	cmd.Flags().Int("height", 10, "plot height in rows")
}

func init() {
	addChartFlags(chartCmd)
	chartCmd.Flags().String("html", "", "write an HTML page with the charts to this file")
}
