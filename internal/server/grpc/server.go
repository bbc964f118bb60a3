package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	pb "github.com/dmitrijs2005/gophauth/internal/proto"
	"github.com/dmitrijs2005/gophauth/internal/server/dispatch"
	"google.golang.org/grpc"
)

// Dispatcher runs credential operations. *dispatch.Dispatcher implements it.
type Dispatcher interface {
	Dispatch(ctx context.Context, req dispatch.Request) (dispatch.Response, error)
}

type GRPCServer struct {
	pb.UnimplementedCredentialsServer
	address    string
	dispatcher Dispatcher
	logger     logging.Logger
}

func NewGRPCServer(a string, l logging.Logger, d Dispatcher) (*GRPCServer, error) {
	return &GRPCServer{
		address:    a,
		logger:     l.With("module", "grpc_server"),
		dispatcher: d,
	}, nil
}

// newServer creates the gRPC server with interceptors and the Credentials
// service registered.
func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.requestIDInterceptor, s.loggingInterceptor))
	pb.RegisterCredentialsServer(srv, s)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", s.address)

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
