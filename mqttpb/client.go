package mqttpb

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	calcrpc "github.com/xizhibei/go-calc-rpc"
	"github.com/xizhibei/go-calc-rpc/calculator"
	"github.com/xizhibei/go-calc-rpc/calculatorpb"
	"github.com/xizhibei/go-calc-rpc/mqttadapter"
	"github.com/xizhibei/go-calc-rpc/telemetry"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/atomic"
	"go.uber.org/zap"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/anypb"
)

// ResponseError is a non-OK response from the server.
type ResponseError struct {
	Status  int
	Message string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("[CALC] status %d: %s", e.Status, e.Message)
}

// Client calls methods on devices served by mqttpb.Server. The adapter must
// be connected by the caller.
type Client struct {
	client    mqttadapter.MQTTClientAdapter
	codec     *ClientCodec
	telemetry telemetry.Telemetry
	log       *zap.SugaredLogger
	nextID    atomic.Uint64

	topicPrefix string
}

// NewClient creates a Client publishing under topicPrefix.
func NewClient(client mqttadapter.MQTTClientAdapter, topicPrefix string) *Client {
	tel, _ := telemetry.NewNoop()

	return &Client{
		client:      client,
		codec:       NewClientCodec(nil),
		telemetry:   tel,
		log:         zap.S().With("module", "calcrpc.mqttpb.client"),
		topicPrefix: topicPrefix,
	}
}

// SetTelemetry sets the telemetry used to trace calls.
func (c *Client) SetTelemetry(tel telemetry.Telemetry) {
	c.telemetry = tel
}

// IsConnected reports whether the broker connection is open.
func (c *Client) IsConnected() bool {
	return c.client.IsConnected()
}

// Close disconnects from the broker.
func (c *Client) Close() error {
	c.client.Disconnect()
	return nil
}

type callOpt struct {
	encoding ContentEncoding
}

// CallOption customizes one call.
type CallOption func(o *callOpt)

// WithEncoding compresses the request body with encoding. The server answers
// with the same encoding.
func WithEncoding(encoding ContentEncoding) CallOption {
	return func(o *callOpt) {
		o.encoding = encoding
	}
}

type callResult struct {
	res *Response
	err error
}

// Call sends args to method on deviceID and waits for the reply or ctx.
func (c *Client) Call(ctx context.Context, deviceID, method string, args, reply proto.Message, opts ...CallOption) error {
	var o callOpt
	for _, opt := range opts {
		opt(&o)
	}

	ctx, span := c.telemetry.StartSpan(ctx, "CalcRPC.Client.Call "+method, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	err := c.call(ctx, deviceID, method, args, reply, &o)
	if err != nil {
		span.RecordError(err)
	}
	return err
}

func (c *Client) call(ctx context.Context, deviceID, method string, args, reply proto.Message, o *callOpt) error {
	body, err := anypb.New(args)
	if err != nil {
		return errors.Wrap(err, "pack request")
	}

	req := &Request{
		Id:       c.nextID.Inc(),
		Method:   method,
		Encoding: o.encoding,
		Body:     body,
		Metadata: map[string]string{},
	}
	telemetry.InjectMap(ctx, req.Metadata)

	data, err := c.codec.Marshal(req)
	if err != nil {
		return err
	}

	id := uuid.NewString()
	requestTopic := RequestTopic(c.topicPrefix, deviceID, id)
	responseTopic := ResponseTopic(c.topicPrefix, deviceID, id)

	done := make(chan callResult, 1)
	err = c.client.SubscribeWait(ctx, responseTopic, calcrpc.DefaultQoS, func(_ mqttadapter.MQTTClientAdapter, m mqttadapter.Message) {
		var res Response
		err := c.codec.Unmarshal(m.Payload(), &res)
		select {
		case done <- callResult{res: &res, err: err}:
		default:
		}
	})
	if err != nil {
		return errors.Wrapf(err, "subscribe %s", responseTopic)
	}
	defer c.client.Unsubscribe(context.Background(), responseTopic)

	c.log.Debugf("Call %s on %s", method, requestTopic)
	if err := c.client.PublishBytesWait(ctx, requestTopic, calcrpc.DefaultQoS, false, data); err != nil {
		return errors.Wrapf(err, "publish %s", requestTopic)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case r := <-done:
		if r.err != nil {
			return r.err
		}
		return decodeReply(r.res, reply)
	}
}

func decodeReply(res *Response, reply proto.Message) error {
	if res.GetStatus() != calcrpc.RPCStatusOK {
		return &ResponseError{Status: int(res.GetStatus()), Message: res.GetErrorMessage()}
	}
	if res.GetBody() == nil {
		return errors.Wrap(calcrpc.ErrNoReply, "missing response body")
	}
	return res.GetBody().UnmarshalTo(reply)
}

// Calculate asks deviceID to apply op to a and b.
func (c *Client) Calculate(ctx context.Context, deviceID string, op calculator.Operation, a, b float64, opts ...CallOption) (float64, error) {
	req := calculator.NewRequest(op, a, b)
	if err := req.Validate(); err != nil {
		return 0, err
	}

	var res calculatorpb.CalculationResult
	if err := c.Call(ctx, deviceID, calculator.Method, req.Proto(), &res, opts...); err != nil {
		return 0, err
	}
	return res.GetResult(), nil
}
