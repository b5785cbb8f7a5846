// Package config loads the server configuration from the environment.
package config

import (
	"crypto/tls"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	calcrpc "github.com/xizhibei/go-calc-rpc"
	"github.com/xizhibei/go-calc-rpc/grpcserver"
	"github.com/xizhibei/go-calc-rpc/telemetry"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("[CALC] invalid config")

// Server is the configuration of calc-server.
type Server struct {
	Port     int    `env:"PORT" envDefault:"50051" validate:"min=1,max=65535"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`

	WorkerNum      int           `env:"WORKER_NUM" envDefault:"0" validate:"min=0"`
	HandlerTimeout time.Duration `env:"HANDLER_TIMEOUT" envDefault:"5s" validate:"gt=0"`

	// RateLimit is in requests per second, 0 disables the limiter.
	RateLimit float64 `env:"RATE_LIMIT" envDefault:"0" validate:"min=0"`
	RateBurst int     `env:"RATE_BURST" envDefault:"10" validate:"min=1"`

	TLSCertFile string `env:"TLS_CERT_FILE" validate:"required_with=TLSKeyFile"`
	TLSKeyFile  string `env:"TLS_KEY_FILE" validate:"required_with=TLSCertFile"`

	MetricsPort     int           `env:"METRICS_PORT" envDefault:"0" validate:"min=0,max=65535"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s" validate:"gt=0"`

	MQTT MQTT

	Telemetry Telemetry
}

// MQTT configures the optional MQTT transport.
type MQTT struct {
	Broker      string `env:"MQTT_BROKER" validate:"omitempty,url"`
	ClientID    string `env:"MQTT_CLIENT_ID" envDefault:"calc-server"`
	DeviceID    string `env:"MQTT_DEVICE_ID" envDefault:"calculator" validate:"excludesall=/+#"`
	TopicPrefix string `env:"MQTT_TOPIC_PREFIX" envDefault:"calc" validate:"excludesall=+#"`
	Username    string `env:"MQTT_USERNAME"`
	Password    string `env:"MQTT_PASSWORD"`
}

// Enabled reports whether a broker is configured.
func (m *MQTT) Enabled() bool {
	return m.Broker != ""
}

// Telemetry configures OpenTelemetry export.
type Telemetry struct {
	Enabled     bool   `env:"OTEL_ENABLED" envDefault:"false"`
	Debug       bool   `env:"OTEL_DEBUG" envDefault:"false"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Endpoint    string `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4317"`
}

// Config returns the telemetry.Config for serviceName.
func (t *Telemetry) Config(serviceName, serviceVersion string) telemetry.Config {
	return telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: serviceVersion,
		Environment:    t.Environment,
		OTLPEndpoint:   t.Endpoint,
		Debug:          t.Debug,
		Enabled:        t.Enabled,
	}
}

// Load reads the configuration from the process environment.
func Load() (*Server, error) {
	return parse(env.Options{})
}

// LoadFrom reads the configuration from environ instead of the process
// environment.
func LoadFrom(environ map[string]string) (*Server, error) {
	return parse(env.Options{Environment: environ})
}

func parse(opts env.Options) (*Server, error) {
	cfg, err := env.ParseAsWithOptions[Server](opts)
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "parse environment"), ErrInvalidConfig)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "validate config"), ErrInvalidConfig)
	}
	return &cfg, nil
}

// ListenAddr returns the address the gRPC server binds.
func (c *Server) ListenAddr() string {
	return fmt.Sprintf("[::]:%d", c.Port)
}

// MetricsAddr returns the address of the metrics endpoint, empty when disabled.
func (c *Server) MetricsAddr() string {
	if c.MetricsPort == 0 {
		return ""
	}
	return fmt.Sprintf(":%d", c.MetricsPort)
}

// TLSEnabled reports whether both certificate and key are configured.
func (c *Server) TLSEnabled() bool {
	return c.TLSCertFile != "" && c.TLSKeyFile != ""
}

// TLSConfig loads the configured key pair, or returns nil when TLS is off.
func (c *Server) TLSConfig() (*tls.Config, error) {
	if !c.TLSEnabled() {
		return nil, nil
	}
	return grpcserver.LoadTLSConfig(c.TLSCertFile, c.TLSKeyFile)
}

// CoreOptions returns the options of the transport independent server.
func (c *Server) CoreOptions(name string) []calcrpc.ServerOption {
	opts := []calcrpc.ServerOption{
		calcrpc.WithServerName(name),
		calcrpc.WithWorkerNum(c.WorkerNum),
		calcrpc.WithHandlerTimeout(c.HandlerTimeout),
	}
	if c.RateLimit > 0 {
		opts = append(opts,
			calcrpc.WithLimiter(time.Duration(float64(time.Second)/c.RateLimit), c.RateBurst),
			calcrpc.WithLimiterReject(),
		)
	}
	return opts
}
