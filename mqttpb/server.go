// Package mqttpb serves and calls calculator methods over MQTT, with a
// protobuf envelope on per-request topics:
//
//	<prefix>/<device>/request/<id>   caller -> server
//	<prefix>/<device>/response/<id>  server -> caller
package mqttpb

import (
	"context"
	"path"
	"strings"
	"time"

	calcrpc "github.com/xizhibei/go-calc-rpc"
	"github.com/xizhibei/go-calc-rpc/mqttadapter"
	"github.com/xizhibei/go-calc-rpc/telemetry"
	"go.uber.org/zap"
)

const subscribeTimeout = 10 * time.Second

// RequestTopic returns the topic a request with id is published on.
func RequestTopic(prefix, deviceID, id string) string {
	return path.Join(prefix, deviceID, "request", id)
}

// ResponseTopic returns the topic the response to id is published on.
func ResponseTopic(prefix, deviceID, id string) string {
	return path.Join(prefix, deviceID, "response", id)
}

// Server serves requests published to <prefix>/<device>/request/+.
type Server struct {
	*calcrpc.Server
	ownsCore bool

	client mqttadapter.MQTTClientAdapter
	codec  *ServerCodec
	log    *zap.SugaredLogger

	topicPrefix    string
	deviceID       string
	subscribeTopic string
	onConnectIdx   int
}

var _ calcrpc.RPCServer = (*Server)(nil)

// NewServer creates a Server with its own core server built from options.
func NewServer(client mqttadapter.MQTTClientAdapter, topicPrefix, deviceID string, options ...calcrpc.ServerOption) *Server {
	s := NewServerWithCore(client, topicPrefix, deviceID, calcrpc.NewServer(options...))
	s.ownsCore = true
	return s
}

// NewServerWithCore creates a Server dispatching to core, which may be shared
// with other transports. Close does not close a shared core.
//
// The adapter is connected in the background and the request topic is
// subscribed on every connect.
func NewServerWithCore(client mqttadapter.MQTTClientAdapter, topicPrefix, deviceID string, core *calcrpc.Server) *Server {
	s := &Server{
		Server:         core,
		client:         client,
		codec:          NewServerCodec(nil),
		log:            zap.S().With("module", "calcrpc.mqttpb.server"),
		topicPrefix:    topicPrefix,
		deviceID:       deviceID,
		subscribeTopic: RequestTopic(topicPrefix, deviceID, "+"),
	}

	client.EnsureConnected()

	s.onConnectIdx = client.OnConnect(func() {
		if err := s.subscribe(); err != nil {
			s.log.Errorf("Subscribe %s: %v", s.subscribeTopic, err)
		}
	})
	return s
}

// SubscribeTopic returns the topic filter requests are received on.
func (s *Server) SubscribeTopic() string {
	return s.subscribeTopic
}

// IsConnected reports whether the broker connection is open.
func (s *Server) IsConnected() bool {
	return s.client.IsConnected()
}

// Close disconnects from the broker, and closes the core when it is not shared.
func (s *Server) Close() error {
	s.client.OffConnect(s.onConnectIdx)
	s.client.Disconnect()
	if s.ownsCore {
		return s.Server.Close()
	}
	return nil
}

func (s *Server) subscribe() error {
	ctx, cancel := context.WithTimeout(context.Background(), subscribeTimeout)
	defer cancel()
	return s.client.SubscribeWait(ctx, s.subscribeTopic, calcrpc.DefaultQoS, s.onRequest)
}

// replyTopic maps .../request/<id> to .../response/<id>.
func (s *Server) replyTopic(requestTopic string) string {
	id := requestTopic[strings.LastIndex(requestTopic, "/")+1:]
	return ResponseTopic(s.topicPrefix, s.deviceID, id)
}

func (s *Server) onRequest(_ mqttadapter.MQTTClientAdapter, m mqttadapter.Message) {
	topic := m.Topic()
	replyTopic := s.replyTopic(topic)

	var req Request
	if err := s.codec.Unmarshal(m.Payload(), &req); err != nil {
		s.log.Errorf("Parse request on %s: %+v", topic, err)
		_ = s.reply(replyTopic, &Response{
			Id:           req.GetId(),
			Status:       calcrpc.RPCStatusClientError,
			ErrorMessage: err.Error(),
		})
		return
	}

	s.log.Debugf("Request on %s, method %s", topic, req.GetMethod())

	ctx := telemetry.ExtractMap(context.Background(), req.GetMetadata())
	c := calcrpc.NewRequestContext(ctx, newMQTTContext(&req, replyTopic, s))

	go s.Server.Call(c)
}

func (s *Server) reply(topic string, res *Response) error {
	if res.Status != calcrpc.RPCStatusOK {
		s.log.Debugf("Error response to %s: [%d] %s", topic, res.Status, res.ErrorMessage)
	}
	data, err := s.codec.Marshal(res)
	if err != nil {
		return err
	}
	s.client.PublishBytes(context.Background(), topic, calcrpc.DefaultQoS, false, data)
	return nil
}
