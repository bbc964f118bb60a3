// Package dispatch maps an operation name and a JSON-like payload onto a
// credential operation and turns its outcome into a transport-neutral
// Response. Both the gRPC and the HTTP transports go through a Dispatcher.
package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
)

// Operation names.
const (
	OpRegister       = "register"
	OpAuthenticate   = "authenticate"
	OpVerify         = "verify"
	OpForgotPassword = "forgotPassword"
	OpResetPassword  = "resetPassword"
	OpChangePassword = "changePassword"
)

// Request is an operation call as received from a transport.
type Request struct {
	Operation string         `json:"operation"`
	Payload   map[string]any `json:"payload"`
}

// Response is the outcome of a call that did not fail hard.
type Response struct {
	Success bool           `json:"success"`
	Status  string         `json:"status"`
	Message string         `json:"message,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
}

// Operations is implemented by *services.CredentialService.
type Operations interface {
	Register(ctx context.Context, req services.RegisterRequest) (services.Result, error)
	Authenticate(ctx context.Context, req services.AuthenticateRequest) (services.Result, error)
	Verify(ctx context.Context, req services.VerifyRequest) (services.Result, error)
	ForgotPassword(ctx context.Context, req services.ForgotPasswordRequest) (services.Result, error)
	ResetPassword(ctx context.Context, req services.ResetPasswordRequest) (services.Result, error)
	ChangePassword(ctx context.Context, req services.ChangePasswordRequest) (services.Result, error)
}

// Observer receives one observation per dispatched call.
type Observer interface {
	ObserveOperation(operation, outcome string, elapsed time.Duration)
}

type handler func(ctx context.Context, payload map[string]any) (services.Result, error)

type Dispatcher struct {
	handlers map[string]handler
	observer Observer
	logger   logging.Logger
	timeout  time.Duration
}

// New builds a Dispatcher. A zero timeout leaves the caller's deadline alone.
func New(ops Operations, obs Observer, l logging.Logger, timeout time.Duration) *Dispatcher {
	return &Dispatcher{
		handlers: map[string]handler{
			OpRegister:       bind(ops.Register),
			OpAuthenticate:   bind(ops.Authenticate),
			OpVerify:         bind(ops.Verify),
			OpForgotPassword: bind(ops.ForgotPassword),
			OpResetPassword:  bind(ops.ResetPassword),
			OpChangePassword: bind(ops.ChangePassword),
		},
		observer: obs,
		logger:   l.With("module", "dispatch"),
		timeout:  timeout,
	}
}

// Operations lists the supported operation names in sorted order.
func (d *Dispatcher) Operations() []string {
	names := make([]string, 0, len(d.handlers))
	for k := range d.handlers {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Dispatch runs req. Hard failures are returned as errors classified with
// common.Kind; soft rejections come back as an unsuccessful Response.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (Response, error) {
	if req.Operation == "" {
		return Response{}, &common.Error{Kind: common.KindBadRequest, Field: "operation", Message: "you must define an operation"}
	}
	h, ok := d.handlers[req.Operation]
	if !ok {
		return Response{}, &common.Error{Kind: common.KindBadRequest, Field: "operation", Message: "unknown operation: " + req.Operation}
	}
	if req.Payload == nil {
		req.Payload = map[string]any{}
	}

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	start := time.Now()
	res, err := h(ctx, req.Payload)
	elapsed := time.Since(start)

	log := d.logger.With("operation", req.Operation, "request_id", common.RequestID(ctx), "duration", elapsed)

	if err != nil {
		kind := common.KindOf(err)
		d.observer.ObserveOperation(req.Operation, string(kind), elapsed)
		if common.IsClientError(kind) {
			log.Info(ctx, "operation refused", "kind", kind, "error", err)
		} else {
			log.Error(ctx, "operation failed", "kind", kind, "error", err)
		}
		return Response{}, err
	}

	d.observer.ObserveOperation(req.Operation, string(res.Status), elapsed)
	log.Info(ctx, "operation completed", "status", res.Status)

	return Response{
		Success: res.Succeeded(),
		Status:  string(res.Status),
		Message: res.Message,
		Data:    res.Data,
	}, nil
}

func bind[T any](fn func(context.Context, T) (services.Result, error)) handler {
	return func(ctx context.Context, payload map[string]any) (services.Result, error) {
		var req T
		if err := decode(payload, &req); err != nil {
			return services.Result{}, err
		}
		return fn(ctx, req)
	}
}

// decode copies payload into the typed request through JSON so the request
// structs keep a single set of field names.
func decode(payload map[string]any, dst any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return &common.Error{Kind: common.KindBadRequest, Message: "malformed payload", Cause: err}
	}
	if err := json.Unmarshal(b, dst); err != nil {
		var te *json.UnmarshalTypeError
		if errors.As(err, &te) {
			return common.Validation(te.Field, te.Field+" must be a "+te.Type.String())
		}
		return &common.Error{Kind: common.KindBadRequest, Message: "malformed payload", Cause: err}
	}
	return nil
}
