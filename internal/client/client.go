// Package client provides a transport-agnostic interface for the worldchart
// service with HTTP/JSON and gRPC implementations.
package client

import (
	"context"
	"fmt"

	"github.com/alfredjeanlab/worldchart/internal/api"
	"github.com/alfredjeanlab/worldchart/internal/model"
)

// ChartClient is the interface the wchart CLI commands use to talk to the
// chart service.
type ChartClient interface {
	Health(ctx context.Context) (*api.HealthResponse, error)
	Statistics(ctx context.Context, lang string) (*api.StatisticsResponse, error)
	Options(ctx context.Context, stat model.Statistic, typ model.ChartType, lang string) (*api.OptionsResponse, error)
	Chart(ctx context.Context, req *api.ChartRequest) (*api.ChartResponse, error)
	Live(ctx context.Context) (*model.LiveSnapshot, error)

	Close() error
}

// APIError is returned when the server responds with a non-2xx status code.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}
