package grpcserver

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	calcrpc "github.com/xizhibei/go-calc-rpc"
	"google.golang.org/grpc/peer"
	"google.golang.org/protobuf/proto"
)

var (
	// ErrRequestNotProto is returned by Bind for targets that are not protobuf messages.
	ErrRequestNotProto = errors.New("[CALC] request type is not protobuf message")
)

// GRPCContext is the gRPC channel of one unary call. Replies are recorded by
// the core and read back once Call returns, so Reply has nothing to send.
type GRPCContext struct {
	id     string
	method string
	peer   string
	req    proto.Message
}

func newGRPCContext(ctx context.Context, method string, req proto.Message) *GRPCContext {
	addr := "unknown"
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		addr = p.Addr.String()
	}
	return &GRPCContext{
		id:     uuid.NewString(),
		method: method,
		peer:   addr,
		req:    req,
	}
}

// ID returns a generated identifier for the call.
func (c *GRPCContext) ID() *calcrpc.ID {
	return &calcrpc.ID{Str: c.id}
}

// Method returns the full gRPC method name.
func (c *GRPCContext) Method() string {
	return c.method
}

// ReplyDesc returns the peer address the reply goes to.
func (c *GRPCContext) ReplyDesc() string {
	return "grpc " + c.peer + c.method
}

// Bind copies the decoded request into request, which must be the same
// message type.
func (c *GRPCContext) Bind(request interface{}) error {
	m, ok := request.(proto.Message)
	if !ok {
		return ErrRequestNotProto
	}
	want := c.req.ProtoReflect().Descriptor().FullName()
	if got := m.ProtoReflect().Descriptor().FullName(); got != want {
		return errors.Newf("[CALC] type %s does not match request type %s", got, want)
	}
	proto.Reset(m)
	proto.Merge(m, c.req)
	return nil
}

// Reply is a no-op, see GRPCContext.
func (c *GRPCContext) Reply(res *calcrpc.Response) bool {
	return true
}
