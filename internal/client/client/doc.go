// Package client talks to the gophauth gRPC endpoint on behalf of the CLI.
//
// GRPCClient wraps the Credentials/Invoke method: it builds the
// {operation, payload} request, tags each call with a request id, decodes
// the {success, status, message, data} response and maps gRPC status codes
// to sentinel errors (ErrInvalidRequest, ErrNotFound, ErrUnavailable).
package client
