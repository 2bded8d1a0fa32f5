// Package client talks to the authkeeper gRPC endpoint and keeps the token
// pair of the current session.
package client
