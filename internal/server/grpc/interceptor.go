package grpc

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// requestIDInterceptor takes the request id from incoming metadata or
// generates one, stores it in the context and echoes it in the header.
func (s *GRPCServer) requestIDInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {

	var requestID string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		values := md.Get(common.RequestIDHeaderName)
		if len(values) > 0 {
			requestID = values[0]
		}
	}
	if requestID == "" {
		requestID = uuid.NewString()
	}

	ctx = common.WithRequestID(ctx, requestID)
	_ = grpc.SetHeader(ctx, metadata.Pairs(common.RequestIDHeaderName, requestID))

	return handler(ctx, req)
}

func (s *GRPCServer) loggingInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {

	start := time.Now()
	resp, err := handler(ctx, req)

	s.logger.Debug(ctx, "gRPC call",
		"method", info.FullMethod,
		"request_id", common.RequestID(ctx),
		"code", status.Code(err).String(),
		"duration", time.Since(start),
	)

	return resp, err
}
