package services

import "github.com/dmitrijs2005/gophauth/internal/common"

// Status tags the outcome of an operation that did not fail hard.
type Status string

const (
	StatusOK       Status = "ok"
	StatusCreated  Status = "created"
	StatusRejected Status = "rejected"
)

// Result is the outcome of an operation that ran to completion. A negative
// business outcome (wrong password, stale token, duplicate user) is a
// Result with StatusRejected; failures that stopped the operation are
// returned as errors instead.
type Result struct {
	Status  Status
	Message string
	Data    map[string]any
	// Reason is KindConflict or KindRejected when Status is StatusRejected.
	Reason common.Kind
}

func ok(message string, data map[string]any) Result {
	return Result{Status: StatusOK, Message: message, Data: data}
}

func created(message string, data map[string]any) Result {
	return Result{Status: StatusCreated, Message: message, Data: data}
}

func rejected(reason common.Kind, message string) Result {
	return Result{Status: StatusRejected, Message: message, Reason: reason}
}

// Succeeded reports whether r is an OK or Created result.
func (r Result) Succeeded() bool {
	return r.Status == StatusOK || r.Status == StatusCreated
}
