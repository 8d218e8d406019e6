package server

import (
	"encoding/json"
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/alfredjeanlab/worldchart/internal/selection"
)

// toStruct converts a JSON-tagged value to a Struct message.
func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "marshal response: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, status.Errorf(codes.Internal, "marshal response: %v", err)
	}
	st, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "marshal response: %v", err)
	}
	return st, nil
}

// fromStruct decodes a Struct message into a JSON-tagged value. A nil
// message leaves v untouched.
func fromStruct(in *structpb.Struct, v any) error {
	if in == nil {
		return nil
	}
	data, err := json.Marshal(in.AsMap())
	if err != nil {
		return fmt.Errorf("decode request: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode request: %w", err)
	}
	return nil
}

// grpcError maps service errors to gRPC status codes.
func grpcError(err error) error {
	if err == nil {
		return nil
	}
	var ue *upstreamError
	switch {
	case isInputError(err):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, selection.ErrSuperseded):
		return status.Error(codes.Aborted, err.Error())
	case errors.As(err, &ue):
		return status.Error(codes.Unavailable, err.Error())
	}
	return status.Errorf(codes.Internal, "%v", err)
}
