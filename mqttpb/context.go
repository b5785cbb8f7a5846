package mqttpb

import (
	"github.com/cockroachdb/errors"
	calcrpc "github.com/xizhibei/go-calc-rpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/anypb"
)

var (
	// ErrRequestNotProto is returned by Bind for targets that are not protobuf messages.
	ErrRequestNotProto = errors.New("[CALC] request type is not protobuf message")

	// ErrEmptyBody is returned by Bind when the request carries no body.
	ErrEmptyBody = errors.New("[CALC] request body is empty")
)

// MQTTContext is the MQTT channel of one request. Replies are published to
// the response topic matching the request topic.
type MQTTContext struct {
	req        *Request
	replyTopic string
	svc        *Server
}

func newMQTTContext(req *Request, replyTopic string, svc *Server) *MQTTContext {
	return &MQTTContext{
		req:        req,
		replyTopic: replyTopic,
		svc:        svc,
	}
}

// ID returns the request id chosen by the caller.
func (c *MQTTContext) ID() *calcrpc.ID {
	return &calcrpc.ID{Num: c.req.GetId()}
}

// Method returns the requested method.
func (c *MQTTContext) Method() string {
	return c.req.GetMethod()
}

// ReplyDesc returns the response topic.
func (c *MQTTContext) ReplyDesc() string {
	return c.replyTopic
}

// Bind unpacks the request body into request, which must be the message type
// the body was packed from.
func (c *MQTTContext) Bind(request interface{}) error {
	m, ok := request.(proto.Message)
	if !ok {
		return ErrRequestNotProto
	}
	body := c.req.GetBody()
	if body == nil {
		return ErrEmptyBody
	}
	if !body.MessageIs(m) {
		return errors.Newf("[CALC] type %s does not match body type %s",
			m.ProtoReflect().Descriptor().FullName(), body.GetTypeUrl())
	}
	return body.UnmarshalTo(m)
}

// Reply publishes res to the response topic.
func (c *MQTTContext) Reply(res *calcrpc.Response) bool {
	out := &Response{
		Id:       c.req.GetId(),
		Status:   int32(res.Status),
		Encoding: c.req.GetEncoding(),
	}

	if res.Error != nil {
		out.ErrorMessage = res.Error.Error()
	} else if result, ok := res.Result.(proto.Message); ok {
		body, err := anypb.New(result)
		if err != nil {
			out.Status = calcrpc.RPCStatusServerError
			out.ErrorMessage = err.Error()
		} else {
			out.Body = body
		}
	}

	if err := c.svc.reply(c.replyTopic, out); err != nil {
		c.svc.log.Errorf("Reply to %s: %v", c.replyTopic, err)
		return false
	}
	return true
}
