// Package cli provides the gophauth command-line client.
//
// Each invocation runs one command against the gRPC endpoint:
//
//	gophauth-cli [-a addr] [-t seconds] <command>
//
// Commands: register, login, verify, forgot, reset, change. Emails and
// tokens are read from stdin; passwords are read without echo.
package cli
