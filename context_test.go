package calcrpc

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
)

func TestIDString(t *testing.T) {
	assert.Equal(t, "42", (&ID{Num: 42}).String())
	assert.Equal(t, "abc", (&ID{Num: 42, Str: "abc"}).String())
}

func TestBaseContextReplyOnce(t *testing.T) {
	var sent []*Response
	c := &BaseContext{
		BaseReply: func(res *Response) {
			sent = append(sent, res)
		},
	}

	assert.Nil(t, c.GetResponse())
	assert.True(t, c.ReplyOK(5.0))
	assert.False(t, c.ReplyError(RPCStatusServerError, errors.New("late")))

	assert.Len(t, sent, 1)
	assert.Equal(t, RPCStatusOK, c.GetResponse().Status)
	assert.Equal(t, 5.0, c.GetResponse().Result)
}

func TestBaseContextDefaultCtx(t *testing.T) {
	c := &BaseContext{}
	assert.Equal(t, context.Background(), c.Ctx())
}

type stubChannel struct {
	replied *Response
}

func (s *stubChannel) ID() *ID                        { return &ID{Num: 7} }
func (s *stubChannel) Method() string                 { return "/calculator.Calculator/Calculate" }
func (s *stubChannel) ReplyDesc() string              { return "stub" }
func (s *stubChannel) Bind(request interface{}) error { return nil }
func (s *stubChannel) Reply(res *Response) bool {
	s.replied = res
	return true
}

func TestRequestContext(t *testing.T) {
	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "v")
	ch := &stubChannel{}
	c := NewRequestContext(ctx, ch)

	assert.Equal(t, "7", c.ID().String())
	assert.Equal(t, "/calculator.Calculator/Calculate", c.Method())
	assert.Equal(t, "stub", c.ReplyDesc())
	assert.Equal(t, "v", c.Ctx().Value(key{}))
	assert.Equal(t, "/calculator.Calculator/Calculate", c.PrometheusLabels()["method"])
	assert.Same(t, ch, c.Channel())

	assert.True(t, c.ReplyError(RPCStatusClientError, errors.New("bad")))
	assert.Equal(t, RPCStatusClientError, ch.replied.Status)
}
