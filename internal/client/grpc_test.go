package client

import (
	"context"
	"net"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/alfredjeanlab/worldchart/internal/api"
	"github.com/alfredjeanlab/worldchart/internal/chart"
	"github.com/alfredjeanlab/worldchart/internal/model"
	"github.com/alfredjeanlab/worldchart/internal/server"
)

type stubFetcher struct{}

func (stubFetcher) Fetch(context.Context, model.Query) (*model.Payload, error) {
	day := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	return &model.Payload{Single: model.Series{
		{Time: day, Value: 2},
		{Time: day.AddDate(0, 0, 1), Value: 5},
	}}, nil
}

func newTestGRPCClient(t *testing.T, token string) *GRPCClient {
	t.Helper()
	srv := server.NewChartServer(server.Deps{Pipeline: chart.NewPipeline(stubFetcher{}), Language: "en"})
	lis := bufconn.Listen(1 << 20)
	gs := server.NewGRPCServer(srv, "secret")
	go func() { _ = gs.Serve(lis) }()
	t.Cleanup(gs.Stop)

	c, err := NewGRPCClient("passthrough:///bufnet", token,
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
	)
	if err != nil {
		t.Fatalf("NewGRPCClient: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestGRPCClient_RoundTrip(t *testing.T) {
	c := newTestGRPCClient(t, "secret")
	ctx := context.Background()

	h, err := c.Health(ctx)
	if err != nil || h.Status != "ok" {
		t.Fatalf("Health = %+v, %v", h, err)
	}

	stats, err := c.Statistics(ctx, "")
	if err != nil {
		t.Fatalf("Statistics: %v", err)
	}
	if len(stats.Statistics) != 2 || stats.Statistics[1].Label != "Deceased" {
		t.Errorf("statistics = %+v", stats.Statistics)
	}

	opts, err := c.Options(ctx, model.StatDeceased, "", "")
	if err != nil {
		t.Fatalf("Options: %v", err)
	}
	if opts.Type != model.TypeDaily {
		t.Errorf("default type = %s", opts.Type)
	}

	resp, err := c.Chart(ctx, &api.ChartRequest{
		Statistic: model.StatDeceased,
		Options:   model.OptionSet{Type: model.TypeAccumulated},
	})
	if err == nil {
		t.Fatalf("accumulated deceased should be rejected, got %+v", resp)
	}
	if status.Code(err) != codes.InvalidArgument {
		t.Errorf("code = %v", status.Code(err))
	}

	resp, err = c.Chart(ctx, &api.ChartRequest{
		Statistic: model.StatDeceased,
		Options:   model.OptionSet{Type: model.TypeDaily, Range: model.RangeAll},
	})
	if err != nil {
		t.Fatalf("Chart: %v", err)
	}
	if v := resp.Bundles[0].DataSet[0].Data.Values(); len(v) != 2 || v[1] != 5 {
		t.Errorf("data = %v", v)
	}
}

func TestGRPCClient_Unauthenticated(t *testing.T) {
	c := newTestGRPCClient(t, "")
	_, err := c.Statistics(context.Background(), "")
	if status.Code(err) != codes.Unauthenticated {
		t.Fatalf("expected Unauthenticated, got %v", err)
	}
	if _, err := c.Health(context.Background()); err != nil {
		t.Fatalf("Health should be exempt: %v", err)
	}
}
