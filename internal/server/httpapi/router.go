// Package httpapi exposes the credential operations over HTTP.
//
//	POST /v1/credentials              body: {"operation": "...", "payload": {...}}
//	POST /v1/credentials/{operation}  body: the payload
//	GET  /healthz
//	GET  /metrics
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/dispatch"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

type Dispatcher interface {
	Dispatch(ctx context.Context, req dispatch.Request) (dispatch.Response, error)
}

// Observer records one observation per served request.
type Observer interface {
	ObserveHTTP(method, route string, status int, elapsed time.Duration)
}

type Deps struct {
	Dispatcher Dispatcher
	Observer   Observer
	Metrics    http.Handler
	Logger     logging.Logger
}

func NewRouter(deps Deps) http.Handler {
	h := &handler{dispatcher: deps.Dispatcher, logger: deps.Logger}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.Recoverer)
	if deps.Observer != nil {
		r.Use(observe(deps.Observer))
	}

	r.Get("/healthz", h.healthz)
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	r.Post("/v1/credentials", h.invoke)
	r.Post("/v1/credentials/{operation}", h.invokeOperation)

	return r
}
