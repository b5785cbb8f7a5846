// Package mqttadapter wraps the paho MQTT client behind a mockable interface
// used by the MQTT transport of the calculator.
package mqttadapter

//go:generate mockgen -source=interface.go -destination=mock/mock_mqttadapter.go
//go:generate mockgen -package mock_mqtt -destination=mock/mqtt/mock_mqtt_client.go github.com/eclipse/paho.mqtt.golang Client,Token,Message

import (
	"context"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Message represents a message in the MQTT protocol.
type Message = mqtt.Message

// MessageCallback handles a message received on a subscription.
type MessageCallback func(MQTTClientAdapter, Message)

// OnConnectCallback is called when a connection is established.
type OnConnectCallback func()

// OnConnectLostCallback is called with the reason when the connection is lost.
type OnConnectLostCallback func(err error)

// MQTTClientAdapter is the MQTT client surface the transport depends on.
type MQTTClientAdapter interface {
	// GetMqttClient returns the underlying MQTT client.
	GetMqttClient() mqtt.Client

	// OnConnect adds a callback run on every connect, and immediately when
	// already connected. The returned index removes it with OffConnect.
	OnConnect(cb OnConnectCallback) int

	// OffConnect removes the callback registered under idx.
	OffConnect(idx int)

	// OnConnectLost adds a callback run whenever the connection is lost.
	OnConnectLost(cb OnConnectLostCallback) int

	// OffConnectLost removes the callback registered under idx.
	OffConnectLost(idx int)

	// Connect makes one connection attempt.
	Connect(ctx context.Context) error

	// EnsureConnected connects in the background, retrying until it succeeds
	// or Disconnect is called.
	EnsureConnected()

	// Disconnect closes the connection and stops retrying.
	Disconnect()

	// IsConnected reports whether the connection is open.
	IsConnected() bool

	// Subscribe subscribes to topic without waiting for the broker.
	Subscribe(ctx context.Context, topic string, qos byte, onMsg MessageCallback)

	// SubscribeWait subscribes to topic and waits for the broker to confirm.
	SubscribeWait(ctx context.Context, topic string, qos byte, onMsg MessageCallback) error

	// Unsubscribe unsubscribes from topic without waiting.
	Unsubscribe(ctx context.Context, topic string)

	// UnsubscribeWait unsubscribes from topic and waits for the broker to confirm.
	UnsubscribeWait(ctx context.Context, topic string) error

	// PublishBytes publishes data without waiting.
	PublishBytes(ctx context.Context, topic string, qos byte, retained bool, data []byte)

	// PublishBytesWait publishes data and waits for the publish to complete.
	PublishBytesWait(ctx context.Context, topic string, qos byte, retained bool, data []byte) error
}
