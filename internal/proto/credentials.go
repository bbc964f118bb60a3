// Package proto describes the gophauth.v1.Credentials gRPC service.
//
// The service has a single unary method, Invoke, whose request and response
// are google.protobuf.Struct values:
//
//	request:  {"operation": "register", "payload": {"email": "...", "password": "..."}}
//	response: {"success": true, "status": "created", "message": "...", "data": {...}}
package proto

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ServiceName        = "gophauth.v1.Credentials"
	Credentials_Invoke = "/gophauth.v1.Credentials/Invoke"
)

// Request and response field names.
const (
	FieldOperation = "operation"
	FieldPayload   = "payload"
	FieldSuccess   = "success"
	FieldStatus    = "status"
	FieldMessage   = "message"
	FieldData      = "data"
)

// CredentialsClient is the client API for the Credentials service.
type CredentialsClient interface {
	Invoke(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type credentialsClient struct {
	cc grpc.ClientConnInterface
}

func NewCredentialsClient(cc grpc.ClientConnInterface) CredentialsClient {
	return &credentialsClient{cc}
}

func (c *credentialsClient) Invoke(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	err := c.cc.Invoke(ctx, Credentials_Invoke, in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CredentialsServer is the server API for the Credentials service.
type CredentialsServer interface {
	Invoke(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// UnimplementedCredentialsServer can be embedded to satisfy CredentialsServer.
type UnimplementedCredentialsServer struct{}

func (UnimplementedCredentialsServer) Invoke(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Invoke not implemented")
}

func RegisterCredentialsServer(s grpc.ServiceRegistrar, srv CredentialsServer) {
	s.RegisterService(&Credentials_ServiceDesc, srv)
}

func _Credentials_Invoke_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CredentialsServer).Invoke(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: Credentials_Invoke,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CredentialsServer).Invoke(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

var Credentials_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CredentialsServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Invoke",
			Handler:    _Credentials_Invoke_Handler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "gophauth/v1/credentials.proto",
}

// NewRequest builds an Invoke request. Payload values must be accepted by
// structpb.NewValue.
func NewRequest(operation string, payload map[string]any) (*structpb.Struct, error) {
	if payload == nil {
		payload = map[string]any{}
	}
	return structpb.NewStruct(map[string]any{
		FieldOperation: operation,
		FieldPayload:   payload,
	})
}
