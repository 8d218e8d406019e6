package client

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/alfredjeanlab/worldchart/internal/api"
	"github.com/alfredjeanlab/worldchart/internal/model"
)

const chartService = "/worldchart.v1.ChartService/"

// GRPCClient implements ChartClient over the gRPC chart service.
type GRPCClient struct {
	conn  *grpc.ClientConn
	token string
}

// NewGRPCClient connects to the given gRPC address and returns a client.
func NewGRPCClient(addr, token string, opts ...grpc.DialOption) (*GRPCClient, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("grpc dial: %w", err)
	}
	return &GRPCClient{conn: conn, token: token}, nil
}

func (c *GRPCClient) Close() error {
	return c.conn.Close()
}

func (c *GRPCClient) Health(ctx context.Context) (*api.HealthResponse, error) {
	var resp api.HealthResponse
	if err := c.invoke(ctx, "Health", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *GRPCClient) Statistics(ctx context.Context, lang string) (*api.StatisticsResponse, error) {
	var resp api.StatisticsResponse
	if err := c.invoke(ctx, "GetOptions", map[string]any{"lang": lang}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *GRPCClient) Options(ctx context.Context, stat model.Statistic, typ model.ChartType, lang string) (*api.OptionsResponse, error) {
	req := map[string]any{"statistic": string(stat), "type": string(typ), "lang": lang}
	var resp api.OptionsResponse
	if err := c.invoke(ctx, "GetOptions", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *GRPCClient) Chart(ctx context.Context, req *api.ChartRequest) (*api.ChartResponse, error) {
	var resp api.ChartResponse
	if err := c.invoke(ctx, "GetChart", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Live is served over HTTP only.
func (c *GRPCClient) Live(context.Context) (*model.LiveSnapshot, error) {
	return nil, fmt.Errorf("live snapshot is not available over gRPC")
}

func (c *GRPCClient) invoke(ctx context.Context, method string, req, result any) error {
	in, err := structFrom(req)
	if err != nil {
		return err
	}
	if c.token != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+c.token)
	}
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, chartService+method, in, out); err != nil {
		return err
	}
	data, err := json.Marshal(out.AsMap())
	if err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	if err := json.Unmarshal(data, result); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// structFrom converts a JSON-tagged value to a Struct message.
func structFrom(v any) (*structpb.Struct, error) {
	if v == nil {
		return &structpb.Struct{}, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}
	return structpb.NewStruct(m)
}
