package mqttadapter

import (
	"crypto/tls"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// ClientOptions are the paho options plus the adapter's own settings.
type ClientOptions struct {
	*mqtt.ClientOptions
	enableStatus  bool
	enableDebug   bool
	onlineTopic   string
	onlinePayload []byte
	retryInterval time.Duration
}

// Option configures the adapter.
type Option func(o *ClientOptions)

// WithDebug routes paho's internal logs to stderr.
func WithDebug(debug bool) Option {
	return func(o *ClientOptions) {
		o.enableDebug = debug
	}
}

// WithUserPass sets the broker credentials.
func WithUserPass(user, pass string) Option {
	return func(o *ClientOptions) {
		o.SetUsername(user)
		o.SetPassword(pass)
	}
}

// WithKeepAlive sets the keepalive interval.
func WithKeepAlive(keepalive time.Duration) Option {
	return func(o *ClientOptions) {
		o.SetKeepAlive(keepalive)
	}
}

// WithTLSConfig sets the TLS config used for ssl:// and tls:// brokers.
func WithTLSConfig(cfg *tls.Config) Option {
	return func(o *ClientOptions) {
		o.SetTLSConfig(cfg)
	}
}

// WithRetryInterval sets how long EnsureConnected waits between attempts.
func WithRetryInterval(d time.Duration) Option {
	return func(o *ClientOptions) {
		o.retryInterval = d
	}
}

// WithStatus publishes onlinePayload retained to onlineTopic on every connect
// and registers offlinePayload as the will on offlineTopic.
func WithStatus(
	onlineTopic string, onlinePayload []byte,
	offlineTopic string, offlinePayload []byte,
) Option {
	return func(o *ClientOptions) {
		o.enableStatus = true
		o.onlineTopic = onlineTopic
		o.onlinePayload = onlinePayload
		o.SetBinaryWill(offlineTopic, offlinePayload, 1, true)
	}
}
