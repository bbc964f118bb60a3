package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/dispatch"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"github.com/go-chi/chi/v5"
)

type handler struct {
	dispatcher Dispatcher
	logger     logging.Logger
}

type errorResponse struct {
	Success bool   `json:"success"`
	Status  string `json:"status"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func (h *handler) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) invoke(w http.ResponseWriter, r *http.Request) {
	var req dispatch.Request
	if err := readJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.run(w, r, req)
}

func (h *handler) invokeOperation(w http.ResponseWriter, r *http.Request) {
	req := dispatch.Request{Operation: chi.URLParam(r, "operation")}
	if err := readJSON(w, r, &req.Payload); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.run(w, r, req)
}

func (h *handler) run(w http.ResponseWriter, r *http.Request, req dispatch.Request) {
	resp, err := h.dispatcher.Dispatch(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	code := http.StatusOK
	if resp.Status == string(services.StatusCreated) {
		code = http.StatusCreated
	}
	writeJSON(w, code, resp)
}

func (h *handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	body := errorResponse{Status: "error", Message: common.ErrorInternal.Error()}
	code := http.StatusInternalServerError

	var e *common.Error
	if errors.As(err, &e) && common.IsClientError(e.Kind) {
		body.Message = e.Message
		body.Field = e.Field
		code = http.StatusBadRequest
		if e.Kind == common.KindNotFound {
			code = http.StatusNotFound
		}
	} else if h.logger != nil {
		h.logger.Error(r.Context(), "request failed", "request_id", common.RequestID(r.Context()), "error", err)
	}

	writeJSON(w, code, body)
}

// readJSON decodes the body into dst. An empty body leaves dst untouched.
func readJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return &common.Error{Kind: common.KindBadRequest, Message: "malformed JSON body", Cause: err}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
