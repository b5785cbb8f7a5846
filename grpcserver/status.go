package grpcserver

import (
	calcrpc "github.com/xizhibei/go-calc-rpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// CodeFromStatus maps a core response status to a gRPC code.
func CodeFromStatus(s int) codes.Code {
	switch s {
	case calcrpc.RPCStatusOK:
		return codes.OK
	case calcrpc.RPCStatusClientError:
		return codes.InvalidArgument
	case calcrpc.RPCStatusNotFound:
		return codes.Unimplemented
	case calcrpc.RPCStatusRequestTimeout:
		return codes.DeadlineExceeded
	case calcrpc.RPCStatusTooManyRequests:
		return codes.ResourceExhausted
	}
	return codes.Internal
}

func responseError(res *calcrpc.Response) error {
	if res == nil {
		return status.Error(codes.Internal, calcrpc.ErrNoReply.Error())
	}
	if res.Error == nil && res.Status == calcrpc.RPCStatusOK {
		return nil
	}
	msg := "request failed"
	if res.Error != nil {
		msg = res.Error.Error()
	}
	return status.Error(CodeFromStatus(res.Status), msg)
}
