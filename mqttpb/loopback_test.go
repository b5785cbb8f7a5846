package mqttpb_test

import (
	"context"
	"strings"
	"sync"

	"github.com/xizhibei/go-calc-rpc/mqttadapter"
	mock_mqttadapter "github.com/xizhibei/go-calc-rpc/mqttadapter/mock"
	"go.uber.org/mock/gomock"
)

type message struct {
	topic   string
	payload []byte
}

func (m *message) Duplicate() bool   { return false }
func (m *message) Qos() byte         { return 0 }
func (m *message) Retained() bool    { return false }
func (m *message) Topic() string     { return m.topic }
func (m *message) MessageID() uint16 { return 0 }
func (m *message) Payload() []byte   { return m.payload }
func (m *message) Ack()              {}

// loopback is an in-memory broker behind a mocked adapter. Every message
// published through the adapter is delivered to the matching subscriptions.
type loopback struct {
	mu      sync.Mutex
	subs    map[string]mqttadapter.MessageCallback
	adapter *mock_mqttadapter.MockMQTTClientAdapter
}

func newLoopback(ctrl *gomock.Controller) *loopback {
	l := &loopback{
		subs:    make(map[string]mqttadapter.MessageCallback),
		adapter: mock_mqttadapter.NewMockMQTTClientAdapter(ctrl),
	}

	a := l.adapter
	a.EXPECT().EnsureConnected().AnyTimes()
	a.EXPECT().IsConnected().Return(true).AnyTimes()
	a.EXPECT().Disconnect().AnyTimes()
	a.EXPECT().OffConnect(gomock.Any()).AnyTimes()
	a.EXPECT().OnConnect(gomock.Any()).
		DoAndReturn(func(cb mqttadapter.OnConnectCallback) int {
			cb()
			return 0
		}).
		AnyTimes()
	a.EXPECT().SubscribeWait(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, topic string, _ byte, cb mqttadapter.MessageCallback) error {
			l.subscribe(topic, cb)
			return nil
		}).
		AnyTimes()
	a.EXPECT().Unsubscribe(gomock.Any(), gomock.Any()).
		Do(func(_ context.Context, topic string) {
			l.unsubscribe(topic)
		}).
		AnyTimes()
	a.EXPECT().PublishBytes(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Do(func(_ context.Context, topic string, _ byte, _ bool, data []byte) {
			l.publish(topic, data)
		}).
		AnyTimes()
	a.EXPECT().PublishBytesWait(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, topic string, _ byte, _ bool, data []byte) error {
			l.publish(topic, data)
			return nil
		}).
		AnyTimes()

	return l
}

func (l *loopback) subscribe(filter string, cb mqttadapter.MessageCallback) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.subs[filter] = cb
}

func (l *loopback) unsubscribe(filter string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.subs, filter)
}

func (l *loopback) subscribed(filter string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.subs[filter]
	return ok
}

func (l *loopback) publish(topic string, data []byte) {
	l.mu.Lock()
	var cbs []mqttadapter.MessageCallback
	for filter, cb := range l.subs {
		if topicMatches(filter, topic) {
			cbs = append(cbs, cb)
		}
	}
	l.mu.Unlock()

	for _, cb := range cbs {
		go cb(l.adapter, &message{topic: topic, payload: data})
	}
}

// topicMatches supports the single level wildcard only.
func topicMatches(filter, topic string) bool {
	fs := strings.Split(filter, "/")
	ts := strings.Split(topic, "/")
	if len(fs) != len(ts) {
		return false
	}
	for i := range fs {
		if fs[i] != "+" && fs[i] != ts[i] {
			return false
		}
	}
	return true
}
