package dispatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOps struct {
	called string
	last   any
	result services.Result
	err    error
	sawDL  bool
}

func (f *fakeOps) done(ctx context.Context, name string, req any) (services.Result, error) {
	f.called, f.last = name, req
	_, f.sawDL = ctx.Deadline()
	return f.result, f.err
}

func (f *fakeOps) Register(ctx context.Context, r services.RegisterRequest) (services.Result, error) {
	return f.done(ctx, OpRegister, r)
}
func (f *fakeOps) Authenticate(ctx context.Context, r services.AuthenticateRequest) (services.Result, error) {
	return f.done(ctx, OpAuthenticate, r)
}
func (f *fakeOps) Verify(ctx context.Context, r services.VerifyRequest) (services.Result, error) {
	return f.done(ctx, OpVerify, r)
}
func (f *fakeOps) ForgotPassword(ctx context.Context, r services.ForgotPasswordRequest) (services.Result, error) {
	return f.done(ctx, OpForgotPassword, r)
}
func (f *fakeOps) ResetPassword(ctx context.Context, r services.ResetPasswordRequest) (services.Result, error) {
	return f.done(ctx, OpResetPassword, r)
}
func (f *fakeOps) ChangePassword(ctx context.Context, r services.ChangePasswordRequest) (services.Result, error) {
	return f.done(ctx, OpChangePassword, r)
}

type observation struct{ operation, outcome string }

type fakeObserver struct{ seen []observation }

func (f *fakeObserver) ObserveOperation(op, outcome string, _ time.Duration) {
	f.seen = append(f.seen, observation{op, outcome})
}

func newDispatcher(ops *fakeOps, timeout time.Duration) (*Dispatcher, *fakeObserver) {
	obs := &fakeObserver{}
	return New(ops, obs, logging.Nop(), timeout), obs
}

func TestDispatch_RoutesEveryOperation(t *testing.T) {
	tests := []struct {
		op      string
		payload map[string]any
		want    any
	}{
		{OpRegister, map[string]any{"email": "a@b.io", "password": "p"}, services.RegisterRequest{Email: "a@b.io", Password: "p"}},
		{OpAuthenticate, map[string]any{"email": "a@b.io", "password": "p"}, services.AuthenticateRequest{Email: "a@b.io", Password: "p"}},
		{OpVerify, map[string]any{"email": "a@b.io", "token": "t"}, services.VerifyRequest{Email: "a@b.io", Token: "t"}},
		{OpForgotPassword, map[string]any{"email": "a@b.io"}, services.ForgotPasswordRequest{Email: "a@b.io"}},
		{OpResetPassword, map[string]any{"email": "a@b.io", "token": "t", "password": "p"}, services.ResetPasswordRequest{Email: "a@b.io", Token: "t", Password: "p"}},
		{OpChangePassword, map[string]any{"email": "a@b.io", "currentPassword": "c", "newPassword": "n"}, services.ChangePasswordRequest{Email: "a@b.io", CurrentPassword: "c", NewPassword: "n"}},
	}

	for _, tt := range tests {
		t.Run(tt.op, func(t *testing.T) {
			ops := &fakeOps{result: services.Result{Status: services.StatusOK}}
			d, _ := newDispatcher(ops, 0)

			_, err := d.Dispatch(context.Background(), Request{Operation: tt.op, Payload: tt.payload})
			require.NoError(t, err)
			assert.Equal(t, tt.op, ops.called)
			assert.Equal(t, tt.want, ops.last)
		})
	}
}

func TestDispatch_MissingAndUnknownOperation(t *testing.T) {
	ops := &fakeOps{}
	d, obs := newDispatcher(ops, 0)

	_, err := d.Dispatch(context.Background(), Request{})
	require.Error(t, err)
	assert.Equal(t, common.KindBadRequest, common.KindOf(err))
	assert.Contains(t, err.Error(), "you must define an operation")

	_, err = d.Dispatch(context.Background(), Request{Operation: "deleteAccount"})
	require.Error(t, err)
	assert.Equal(t, common.KindBadRequest, common.KindOf(err))
	assert.Contains(t, err.Error(), "unknown operation: deleteAccount")

	assert.Empty(t, ops.called)
	assert.Empty(t, obs.seen)
}

func TestDispatch_ResultsBecomeResponses(t *testing.T) {
	ops := &fakeOps{result: services.Result{Status: services.StatusCreated, Message: "created: a@b.io", Data: map[string]any{"email": "a@b.io"}}}
	d, obs := newDispatcher(ops, 0)

	resp, err := d.Dispatch(context.Background(), Request{Operation: OpRegister})
	require.NoError(t, err)
	assert.Equal(t, Response{Success: true, Status: "created", Message: "created: a@b.io", Data: map[string]any{"email": "a@b.io"}}, resp)

	ops.result = services.Result{Status: services.StatusRejected, Message: "incorrect password", Reason: common.KindRejected}
	resp, err = d.Dispatch(context.Background(), Request{Operation: OpAuthenticate})
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, "incorrect password", resp.Message)

	assert.Equal(t, []observation{{OpRegister, "created"}, {OpAuthenticate, "rejected"}}, obs.seen)
}

func TestDispatch_HardErrorsPropagate(t *testing.T) {
	ops := &fakeOps{err: common.Storage(errors.New("dynamo down"))}
	d, obs := newDispatcher(ops, 0)

	_, err := d.Dispatch(context.Background(), Request{Operation: OpVerify, Payload: map[string]any{"email": "a@b.io"}})
	require.Error(t, err)
	assert.Equal(t, common.KindStorage, common.KindOf(err))
	assert.Equal(t, []observation{{OpVerify, string(common.KindStorage)}}, obs.seen)
}

func TestDispatch_WrongPayloadType(t *testing.T) {
	ops := &fakeOps{}
	d, _ := newDispatcher(ops, 0)

	_, err := d.Dispatch(context.Background(), Request{Operation: OpRegister, Payload: map[string]any{"email": 42}})
	require.Error(t, err)
	assert.ErrorIs(t, err, &common.Error{Kind: common.KindValidation, Field: "email"})
	assert.Empty(t, ops.called)
}

func TestDispatch_AppliesTimeout(t *testing.T) {
	ops := &fakeOps{result: services.Result{Status: services.StatusOK}}

	d, _ := newDispatcher(ops, time.Second)
	_, err := d.Dispatch(context.Background(), Request{Operation: OpForgotPassword})
	require.NoError(t, err)
	assert.True(t, ops.sawDL)

	d, _ = newDispatcher(ops, 0)
	_, err = d.Dispatch(context.Background(), Request{Operation: OpForgotPassword})
	require.NoError(t, err)
	assert.False(t, ops.sawDL)
}

func TestOperations_Sorted(t *testing.T) {
	d, _ := newDispatcher(&fakeOps{}, 0)

	assert.Equal(t, []string{
		OpAuthenticate, OpChangePassword, OpForgotPassword, OpRegister, OpResetPassword, OpVerify,
	}, d.Operations())
}
