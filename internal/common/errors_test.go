package common

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"bad request", BadRequest("email"), KindBadRequest},
		{"validation", Validation("password", "invalid password"), KindValidation},
		{"wrapped storage", fmt.Errorf("insert: %w", Storage(errors.New("boom"))), KindStorage},
		{"plain error", errors.New("plain"), KindInternal},
		{"nil", nil, KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestError_IsMatchesKindAndField(t *testing.T) {
	err := fmt.Errorf("wrap: %w", BadRequest("token"))

	assert.True(t, errors.Is(err, &Error{Kind: KindBadRequest}))
	assert.True(t, errors.Is(err, &Error{Kind: KindBadRequest, Field: "token"}))
	assert.False(t, errors.Is(err, &Error{Kind: KindBadRequest, Field: "email"}))
	assert.False(t, errors.Is(err, &Error{Kind: KindValidation}))
}

func TestError_UnwrapsCause(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := Storage(cause)

	require.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "storage unavailable")
	assert.ErrorIs(t, NotFound("credentials"), ErrorNotFound)
}

func TestIsClientError(t *testing.T) {
	assert.True(t, IsClientError(KindBadRequest))
	assert.True(t, IsClientError(KindValidation))
	assert.True(t, IsClientError(KindNotFound))
	assert.False(t, IsClientError(KindStorage))
	assert.False(t, IsClientError(KindEntropy))
	assert.False(t, IsClientError(KindNotification))
}

func TestRequestID_RoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")

	assert.Equal(t, "req-1", RequestID(ctx))
	assert.Empty(t, RequestID(context.Background()))
}
