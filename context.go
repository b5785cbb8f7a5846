package calcrpc

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/atomic"
)

// ID identifies a request on its transport. MQTT requests carry a numeric id,
// gRPC requests are identified by a generated string.
type ID struct {
	Num uint64
	Str string
}

// String returns Str when set, otherwise Num in decimal.
func (id *ID) String() string {
	if id.Str != "" {
		return id.Str
	}
	return strconv.FormatUint(id.Num, 10)
}

// Response is the outcome of one handled request.
type Response struct {
	Result interface{}
	Error  error
	Status int
}

// Context is what a Handler sees of a request.
type Context interface {
	// ID returns the transport identifier of the request.
	ID() *ID

	// Method returns the full method name, e.g. /calculator.Calculator/Calculate.
	Method() string

	// Ctx returns the request scoped context.Context.
	Ctx() context.Context

	// ReplyDesc describes where the reply goes, for logging.
	ReplyDesc() string

	// Bind decodes the request payload into request.
	Bind(request interface{}) error

	// Reply sends res. Only the first reply of a request is sent, later
	// calls return false.
	Reply(res *Response) bool

	// ReplyOK replies with status 200 and data as the result.
	ReplyOK(data interface{}) bool

	// ReplyError replies with the given status and error.
	ReplyError(status int, err error) bool

	// GetResponse returns the response sent so far, or nil.
	GetResponse() *Response

	// PrometheusLabels returns the labels used by Server.RegisterMetrics.
	PrometheusLabels() prometheus.Labels
}

// BaseContext implements the reply bookkeeping shared by all transports.
type BaseContext struct {
	res       *Response
	resMu     sync.Mutex
	replied   atomic.Bool
	BaseReply func(res *Response)
	ctx       context.Context
}

// Ctx returns the request context, or context.Background when none was set.
func (c *BaseContext) Ctx() context.Context {
	if c.ctx == nil {
		return context.Background()
	}
	return c.ctx
}

// Reply records res and hands it to BaseReply. It returns false if the
// request was already replied to.
func (c *BaseContext) Reply(res *Response) bool {
	if !c.replied.CompareAndSwap(false, true) {
		return false
	}

	c.setResponse(res)

	if c.BaseReply != nil {
		c.BaseReply(res)
	}

	return true
}

// ReplyOK replies with status 200 and data as the result.
func (c *BaseContext) ReplyOK(data interface{}) bool {
	return c.Reply(&Response{
		Status: RPCStatusOK,
		Result: data,
	})
}

// ReplyError replies with the given status and error.
func (c *BaseContext) ReplyError(status int, err error) bool {
	return c.Reply(&Response{
		Status: status,
		Error:  err,
	})
}

func (c *BaseContext) setResponse(res *Response) {
	c.resMu.Lock()
	defer c.resMu.Unlock()
	c.res = res
}

// GetResponse returns the recorded response.
func (c *BaseContext) GetResponse() *Response {
	c.resMu.Lock()
	defer c.resMu.Unlock()
	return c.res
}

// ChannelContext is the transport specific half of a request context.
// Transports implement it and wrap it with NewRequestContext.
type ChannelContext interface {
	ID() *ID
	Method() string
	ReplyDesc() string
	Bind(request interface{}) error
	Reply(res *Response) bool
}

// RequestContext joins a ChannelContext with BaseContext so that the reply
// bookkeeping is done once for every transport.
type RequestContext struct {
	BaseContext
	ch ChannelContext
}

// NewRequestContext returns a Context for ch scoped to ctx.
func NewRequestContext(ctx context.Context, ch ChannelContext) *RequestContext {
	c := &RequestContext{ch: ch}
	c.ctx = ctx
	c.BaseReply = func(res *Response) {
		ch.Reply(res)
	}
	return c
}

// ID returns the transport identifier of the request.
func (c *RequestContext) ID() *ID {
	return c.ch.ID()
}

// Method returns the requested method.
func (c *RequestContext) Method() string {
	return c.ch.Method()
}

// ReplyDesc returns the reply description of the underlying channel.
func (c *RequestContext) ReplyDesc() string {
	return c.ch.ReplyDesc()
}

// Bind decodes the request payload through the underlying channel.
func (c *RequestContext) Bind(request interface{}) error {
	return c.ch.Bind(request)
}

// Channel returns the transport specific context.
func (c *RequestContext) Channel() ChannelContext {
	return c.ch
}

// PrometheusLabels returns the method label.
func (c *RequestContext) PrometheusLabels() prometheus.Labels {
	return prometheus.Labels{
		"method": c.Method(),
	}
}

// Handler serves one method.
// Timeout bounds how long Method may run, zero means the server default.
type Handler struct {
	Method  func(c Context)
	Timeout time.Duration
}
