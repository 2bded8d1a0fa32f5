// Package proto holds the generated AuthService messages and gRPC stubs.
package proto

//go:generate protoc -I ../../api --go_out=. --go_opt=paths=source_relative --go-grpc_out=. --go-grpc_opt=paths=source_relative authkeeper.proto
