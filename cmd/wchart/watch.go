package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/alfredjeanlab/worldchart/internal/api"
	"github.com/alfredjeanlab/worldchart/internal/events"
	"github.com/alfredjeanlab/worldchart/internal/model"
	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:     "watch <statistic>",
	Short:   "Re-plot a chart whenever the server reports new data",
	GroupID: "charts",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		interval, _ := cmd.Flags().GetDuration("interval")
		natsURL, _ := cmd.Flags().GetString("nats")
		height, _ := cmd.Flags().GetInt("height")
		req := chartRequest(cmd, model.Statistic(args[0]))

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		out := cmd.OutOrStdout()
		draw := func() error { return redraw(ctx, out, req, height) }
		if err := draw(); err != nil {
			return err
		}
		if natsURL != "" {
			return watchNATS(ctx, natsURL, draw)
		}
		return watchPoll(ctx, interval, draw)
	},
}

func redraw(ctx context.Context, w io.Writer, req *api.ChartRequest, height int) error {
	resp, err := chartClient.Chart(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
	if jsonOutput {
		return printJSON(w, resp)
	}
	fmt.Fprintf(w, "\n--- %s ---\n", time.Now().Format("15:04:05"))
	return plot(w, resp, height)
}

// watchNATS redraws after worldchart events, debounced so a burst of cache
// fills produces one redraw.
func watchNATS(ctx context.Context, natsURL string, draw func() error) error {
	reconnectCh := make(chan struct{}, 1)

	bus, err := events.Connect(natsURL,
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Printf("nats: disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			log.Printf("nats: reconnected")
			select {
			case reconnectCh <- struct{}{}:
			default:
			}
		}),
	)
	if err != nil {
		return err
	}
	defer bus.Close()

	ch, cancel, err := bus.Subscribe(events.TopicAll)
	if err != nil {
		return fmt.Errorf("subscribing to events: %w", err)
	}
	defer cancel()

	debounce := time.NewTimer(0)
	debounce.Stop()
	select {
	case <-debounce.C:
	default:
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-ch:
			if !ok {
				return nil
			}
			debounce.Reset(200 * time.Millisecond)
		case <-reconnectCh:
			debounce.Reset(0)
		case <-debounce.C:
			if err := draw(); err != nil {
				return err
			}
		}
	}
}

func watchPoll(ctx context.Context, interval time.Duration, draw func() error) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(interval):
		}
		if err := draw(); err != nil {
			return err
		}
	}
}

func init() {
	addChartFlags(watchCmd)
	watchCmd.Flags().Duration("interval", time.Minute, "polling interval when NATS is not configured")
	watchCmd.Flags().String("nats", defaultNATSURL(), "NATS URL to receive change events from")
}

func defaultNATSURL() string {
	if u := os.Getenv("WCHART_NATS_URL"); u != "" {
		return u
	}
	return activeRemoteNATSURL()
}
