package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xizhibei/go-calc-rpc/config"
	"github.com/xizhibei/go-calc-rpc/telemetry"
	"go.uber.org/atomic"
)

type countingTelemetry struct {
	telemetry.Telemetry
	shutdowns atomic.Int32
}

func (t *countingTelemetry) Shutdown(ctx context.Context) error {
	t.shutdowns.Inc()
	return t.Telemetry.Shutdown(ctx)
}

func withCountingTelemetry(t *testing.T) *countingTelemetry {
	t.Helper()

	tt := telemetry.NewTestTelemetry(t)
	counting := &countingTelemetry{Telemetry: tt.Telemetry()}

	prev := newTelemetry
	newTelemetry = func(context.Context, telemetry.Config) (telemetry.Telemetry, error) {
		return counting, nil
	}
	t.Cleanup(func() { newTelemetry = prev })
	return counting
}

func TestNewAppReleasesTelemetryOnError(t *testing.T) {
	cases := map[string]map[string]string{
		"tls material": {
			"TLS_CERT_FILE": "/nonexistent/cert.pem",
			"TLS_KEY_FILE":  "/nonexistent/key.pem",
		},
		"mqtt broker": {
			"MQTT_BROKER": "tcp:broker",
		},
	}

	for name, environ := range cases {
		t.Run(name, func(t *testing.T) {
			tel := withCountingTelemetry(t)

			cfg, err := config.LoadFrom(environ)
			require.NoError(t, err)

			app, err := NewApp(context.Background(), cfg, nil)
			assert.Error(t, err)
			assert.Nil(t, app)
			assert.Equal(t, int32(1), tel.shutdowns.Load())
		})
	}
}
