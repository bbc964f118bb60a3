package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/dispatch"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDispatcher struct {
	got  dispatch.Request
	ctx  context.Context
	resp dispatch.Response
	err  error
}

func (f *fakeDispatcher) Dispatch(ctx context.Context, req dispatch.Request) (dispatch.Response, error) {
	f.got = req
	f.ctx = ctx
	return f.resp, f.err
}

type observation struct {
	method, route string
	status        int
}

type fakeObserver struct {
	mu   sync.Mutex
	seen []observation
}

func (f *fakeObserver) ObserveHTTP(method, route string, status int, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen = append(f.seen, observation{method, route, status})
}

func serve(t *testing.T, h http.Handler, method, target, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	return m
}

func TestInvokeOperation_Created(t *testing.T) {
	d := &fakeDispatcher{resp: dispatch.Response{Success: true, Status: string(services.StatusCreated), Message: "created: a@b.co", Data: map[string]any{"email": "a@b.co"}}}
	obs := &fakeObserver{}
	h := NewRouter(Deps{Dispatcher: d, Observer: obs, Logger: logging.Nop()})

	rec := serve(t, h, http.MethodPost, "/v1/credentials/register", `{"email":"a@b.co","password":"Secret123"}`, nil)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "register", d.got.Operation)
	assert.Equal(t, map[string]any{"email": "a@b.co", "password": "Secret123"}, d.got.Payload)

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "created", body["status"])
	assert.Equal(t, map[string]any{"email": "a@b.co"}, body["data"])

	require.Len(t, obs.seen, 1)
	assert.Equal(t, observation{http.MethodPost, "/v1/credentials/{operation}", http.StatusCreated}, obs.seen[0])
}

func TestInvokeOperation_StatusCodeFollowsResultStatus(t *testing.T) {
	tests := []struct {
		status services.Status
		want   int
	}{
		{services.StatusCreated, http.StatusCreated},
		{services.StatusOK, http.StatusOK},
		{services.StatusRejected, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			d := &fakeDispatcher{resp: dispatch.Response{Status: string(tt.status)}}
			h := NewRouter(Deps{Dispatcher: d, Logger: logging.Nop()})

			rec := serve(t, h, http.MethodPost, "/v1/credentials/verify", `{}`, nil)

			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestInvoke_Envelope(t *testing.T) {
	d := &fakeDispatcher{resp: dispatch.Response{Success: false, Status: "rejected", Message: "invalid token"}}
	h := NewRouter(Deps{Dispatcher: d, Logger: logging.Nop()})

	rec := serve(t, h, http.MethodPost, "/v1/credentials", `{"operation":"verify","payload":{"email":"a@b.co","token":"x"}}`, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "verify", d.got.Operation)
	assert.Equal(t, "x", d.got.Payload["token"])

	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "invalid token", body["message"])
}

func TestInvokeOperation_EmptyBody(t *testing.T) {
	d := &fakeDispatcher{err: common.BadRequest("email")}
	h := NewRouter(Deps{Dispatcher: d, Logger: logging.Nop()})

	rec := serve(t, h, http.MethodPost, "/v1/credentials/forgotPassword", "", nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "forgotPassword", d.got.Operation)

	body := decodeBody(t, rec)
	assert.Equal(t, "missing email", body["message"])
	assert.Equal(t, "email", body["field"])
}

func TestInvoke_ErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{"validation", common.Validation("password", "invalid password"), http.StatusBadRequest, "invalid password"},
		{"not found", common.NotFound("credentials"), http.StatusNotFound, "credentials not found"},
		{"storage", common.Storage(errors.New("timeout")), http.StatusInternalServerError, "internal error"},
		{"token issuance", common.TokenIssuance(errors.New("cognito")), http.StatusInternalServerError, "internal error"},
		{"unclassified", errors.New("boom"), http.StatusInternalServerError, "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewRouter(Deps{Dispatcher: &fakeDispatcher{err: tt.err}, Logger: logging.Nop()})

			rec := serve(t, h, http.MethodPost, "/v1/credentials/authenticate", `{}`, nil)

			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, tt.message, decodeBody(t, rec)["message"])
		})
	}
}

func TestInvoke_MalformedBody(t *testing.T) {
	d := &fakeDispatcher{}
	h := NewRouter(Deps{Dispatcher: d, Logger: logging.Nop()})

	rec := serve(t, h, http.MethodPost, "/v1/credentials/register", `{"email":`, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, d.got.Operation)
}

func TestRequestID(t *testing.T) {
	d := &fakeDispatcher{resp: dispatch.Response{Success: true, Status: "ok"}}
	h := NewRouter(Deps{Dispatcher: d, Logger: logging.Nop()})

	rec := serve(t, h, http.MethodPost, "/v1/credentials/verify", `{}`, map[string]string{common.RequestIDHeaderName: "req-7"})
	assert.Equal(t, "req-7", rec.Header().Get(common.RequestIDHeaderName))
	assert.Equal(t, "req-7", common.RequestID(d.ctx))

	rec = serve(t, h, http.MethodPost, "/v1/credentials/verify", `{}`, nil)
	_, err := uuid.Parse(rec.Header().Get(common.RequestIDHeaderName))
	assert.NoError(t, err)
}

func TestHealthzAndMetrics(t *testing.T) {
	metricsHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("# metrics"))
	})
	h := NewRouter(Deps{Dispatcher: &fakeDispatcher{}, Metrics: metricsHandler, Logger: logging.Nop()})

	rec := serve(t, h, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody(t, rec)["status"])

	rec = serve(t, h, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "# metrics", rec.Body.String())

	rec = serve(t, h, http.MethodGet, "/v1/credentials/register", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHTTPServer_StopsOnContextCancel(t *testing.T) {
	s := NewHTTPServer("127.0.0.1:0", logging.Nop(), http.NotFoundHandler())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop after context cancel")
	}
}

func TestHTTPServer_BadAddress(t *testing.T) {
	s := NewHTTPServer("127.0.0.1:99999", logging.Nop(), http.NotFoundHandler())
	assert.Error(t, s.Run(context.Background()))
}
