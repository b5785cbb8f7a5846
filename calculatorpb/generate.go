// Package calculatorpb holds the protobuf contract of the Calculator service.
package calculatorpb

//go:generate protoc --go_out=. --go_opt=paths=source_relative --go-grpc_out=. --go-grpc_opt=paths=source_relative -I.. calculatorpb/calculator.proto
