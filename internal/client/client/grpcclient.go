package client

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/common"
	pb "github.com/dmitrijs2005/gophauth/internal/proto"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// Response is a decoded Invoke response.
type Response struct {
	Success bool
	Status  string
	Message string
	Data    map[string]any
}

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      pb.CredentialsClient
}

func requestIDInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if md, ok := metadata.FromOutgoingContext(ctx); !ok || len(md.Get(common.RequestIDHeaderName)) == 0 {
		ctx = metadata.AppendToOutgoingContext(ctx, common.RequestIDHeaderName, uuid.NewString())
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

func NewGRPCClient(endpointURL string, opts ...grpc.DialOption) (*GRPCClient, error) {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(requestIDInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(endpointURL, opts...)
	if err != nil {
		return nil, err
	}
	return &GRPCClient{endpointURL: endpointURL, conn: conn, client: pb.NewCredentialsClient(conn)}, nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

// Invoke runs operation with payload on the server.
func (s *GRPCClient) Invoke(ctx context.Context, operation string, payload map[string]any) (*Response, error) {
	req, err := pb.NewRequest(operation, payload)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Invoke(ctx, req)
	if err != nil {
		return nil, s.mapError(err)
	}

	return decodeResponse(resp), nil
}

func decodeResponse(in *structpb.Struct) *Response {
	m := in.AsMap()
	r := &Response{}
	r.Success, _ = m[pb.FieldSuccess].(bool)
	r.Status, _ = m[pb.FieldStatus].(string)
	r.Message, _ = m[pb.FieldMessage].(string)
	r.Data, _ = m[pb.FieldData].(map[string]any)
	return r
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", ErrInvalidRequest, st.Message())
	case codes.NotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
