package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gophauth/internal/common"
	pb "github.com/dmitrijs2005/gophauth/internal/proto"
	"github.com/dmitrijs2005/gophauth/internal/server/dispatch"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

func (s *GRPCServer) Invoke(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {

	req, err := requestFromStruct(in)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	resp, err := s.dispatcher.Dispatch(ctx, req)
	if err != nil {
		return nil, statusFromError(err)
	}

	out, err := responseToStruct(resp)
	if err != nil {
		s.logger.Error(ctx, "response encoding failed", "error", err)
		return nil, status.Error(codes.Internal, "internal error")
	}

	return out, nil
}

func requestFromStruct(in *structpb.Struct) (dispatch.Request, error) {
	var req dispatch.Request
	fields := in.GetFields()

	if v, ok := fields[pb.FieldOperation]; ok {
		op, ok := v.GetKind().(*structpb.Value_StringValue)
		if !ok {
			return req, common.Validation(pb.FieldOperation, "operation must be a string")
		}
		req.Operation = op.StringValue
	}

	if v, ok := fields[pb.FieldPayload]; ok {
		switch k := v.GetKind().(type) {
		case *structpb.Value_StructValue:
			req.Payload = k.StructValue.AsMap()
		case *structpb.Value_NullValue:
		default:
			return req, common.Validation(pb.FieldPayload, "payload must be an object")
		}
	}

	return req, nil
}

func responseToStruct(resp dispatch.Response) (*structpb.Struct, error) {
	m := map[string]any{
		pb.FieldSuccess: resp.Success,
		pb.FieldStatus:  resp.Status,
	}
	if resp.Message != "" {
		m[pb.FieldMessage] = resp.Message
	}
	if len(resp.Data) > 0 {
		m[pb.FieldData] = resp.Data
	}
	return structpb.NewStruct(m)
}

// statusFromError maps classified errors onto gRPC codes. Only client errors
// carry their message; everything else is reported as an internal error.
func statusFromError(err error) error {
	var msg string
	if e, ok := asCommon(err); ok {
		msg = e.Message
	}

	switch common.KindOf(err) {
	case common.KindBadRequest, common.KindValidation:
		return status.Error(codes.InvalidArgument, msg)
	case common.KindNotFound:
		return status.Error(codes.NotFound, msg)
	}
	return status.Error(codes.Internal, common.ErrorInternal.Error())
}

func asCommon(err error) (*common.Error, bool) {
	var e *common.Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
