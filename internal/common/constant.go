package common

// RequestIDHeaderName is the gRPC metadata / HTTP header key that carries the
// request id assigned at the transport edge.
const RequestIDHeaderName = "x-request-id"
