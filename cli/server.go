package cli

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	calcrpc "github.com/xizhibei/go-calc-rpc"
	"github.com/xizhibei/go-calc-rpc/calculator"
	"github.com/xizhibei/go-calc-rpc/config"
	"github.com/xizhibei/go-calc-rpc/grpcserver"
	"github.com/xizhibei/go-calc-rpc/mqttadapter"
	"github.com/xizhibei/go-calc-rpc/mqttpb"
	"github.com/xizhibei/go-calc-rpc/telemetry"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Version is reported to telemetry, set at build time with -ldflags.
var Version = "dev"

const serviceName = "calc-server"

var newTelemetry = func(ctx context.Context, cfg telemetry.Config) (telemetry.Telemetry, error) {
	return telemetry.New(ctx, cfg)
}

// Serve handles the calc-server command.
type Serve struct{}

// Command creates the cobra command of calc-server. It takes no arguments,
// the configuration comes from the environment.
func (s Serve) Command() *cobra.Command {
	return &cobra.Command{
		Use:           "calc-server",
		Short:         "Serve the calculator over gRPC, and over MQTT when MQTT_BROKER is set.",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			cmd.SilenceUsage = true

			if err := setupLogger(cfg.LogLevel, false); err != nil {
				return err
			}
			defer func() {
				_ = zap.L().Sync()
			}()

			return s.Exec(cmd.Context(), cfg)
		},
	}
}

// Exec runs the server until SIGINT or SIGTERM, then shuts it down within
// cfg.ShutdownTimeout.
func (s Serve) Exec(ctx context.Context, cfg *config.Server) error {
	app, err := NewApp(ctx, cfg, nil)
	if err != nil {
		return err
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- app.Serve()
	}()

	wait := gfshutdown.GracefulShutdown(context.Background(), cfg.ShutdownTimeout, map[string]gfshutdown.Operation{
		serviceName: app.Shutdown,
	})

	select {
	case code := <-wait:
		if code != 0 {
			return errors.Newf("[CALC] shutdown finished with code %d", code)
		}
		return <-serveErr
	case err := <-serveErr:
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return errors.CombineErrors(err, app.Shutdown(shutdownCtx))
	}
}

// App is a configured calc-server: the gRPC server, the optional MQTT
// transport sharing its handlers, the metrics endpoint and telemetry.
type App struct {
	cfg       *config.Server
	log       *zap.SugaredLogger
	lis       net.Listener
	grpc      *grpcserver.Server
	mqtt      *mqttpb.Server
	metrics   *http.Server
	registry  *prometheus.Registry
	telemetry telemetry.Telemetry
}

// NewApp builds the server from cfg. lis is used when given, otherwise the
// server listens on cfg.ListenAddr().
func NewApp(ctx context.Context, cfg *config.Server, lis net.Listener) (*App, error) {
	log := zap.S().With("module", "calcrpc.cli")

	tel, err := newTelemetry(ctx, cfg.Telemetry.Config(serviceName, Version))
	if err != nil {
		return nil, errors.Wrap(err, "init telemetry")
	}

	tlsConfig, err := cfg.TLSConfig()
	if err != nil {
		_ = tel.Shutdown(context.Background())
		return nil, err
	}

	grpcOpts := []grpcserver.Option{
		grpcserver.WithCoreOptions(cfg.CoreOptions(serviceName)...),
	}
	if tlsConfig != nil {
		grpcOpts = append(grpcOpts, grpcserver.WithTLSConfig(tlsConfig))
	}

	app := &App{
		cfg:       cfg,
		log:       log,
		grpc:      grpcserver.New(grpcOpts...),
		registry:  prometheus.NewRegistry(),
		telemetry: tel,
	}
	app.grpc.SetTelemetry(tel)
	calculator.Register(app.grpc, 0)

	responseTime, errorCount := calcrpc.NewMetrics("calc")
	app.registry.MustRegister(
		responseTime,
		errorCount,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	app.grpc.RegisterMetrics(responseTime, errorCount)

	if cfg.MQTT.Enabled() {
		var mqttOpts []mqttadapter.Option
		if cfg.MQTT.Username != "" {
			mqttOpts = append(mqttOpts, mqttadapter.WithUserPass(cfg.MQTT.Username, cfg.MQTT.Password))
		}
		statusTopic := cfg.MQTT.TopicPrefix + "/" + cfg.MQTT.DeviceID + "/status"
		mqttOpts = append(mqttOpts, mqttadapter.WithStatus(statusTopic, []byte("online"), statusTopic, []byte("offline")))

		adapter, err := mqttadapter.New(cfg.MQTT.Broker, cfg.MQTT.ClientID, mqttOpts...)
		if err != nil {
			app.closeAll()
			return nil, err
		}
		app.mqtt = mqttpb.NewServerWithCore(adapter, cfg.MQTT.TopicPrefix, cfg.MQTT.DeviceID, app.grpc.Server)
		log.Infof("Serving MQTT on %s", app.mqtt.SubscribeTopic())
	}

	if addr := cfg.MetricsAddr(); addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(app.registry, promhttp.HandlerOpts{}))
		app.metrics = &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
	}

	addr := cfg.ListenAddr()
	if lis == nil {
		lis, err = net.Listen("tcp", addr)
		if err != nil {
			app.closeAll()
			return nil, errors.Wrapf(err, "listen on %s", addr)
		}
	} else {
		addr = lis.Addr().String()
	}
	app.lis = lis

	log.Infof("Listening on %s", addr)
	return app, nil
}

// Addr returns the address the gRPC server accepts connections on.
func (a *App) Addr() net.Addr {
	return a.lis.Addr()
}

// Registry returns the registry served on /metrics.
func (a *App) Registry() *prometheus.Registry {
	return a.registry
}

// Serve blocks until the servers stop. It returns the first serving error.
func (a *App) Serve() error {
	var g errgroup.Group

	g.Go(func() error {
		return a.grpc.Serve(a.lis)
	})

	if a.metrics != nil {
		g.Go(func() error {
			a.log.Infof("Metrics on %s/metrics", a.metrics.Addr)
			if err := a.metrics.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return errors.Wrap(err, "metrics server")
			}
			return nil
		})
	}

	return g.Wait()
}

// Shutdown stops taking requests, waits for in-flight ones until ctx is done
// and flushes telemetry.
func (a *App) Shutdown(ctx context.Context) error {
	a.log.Info("Shutting down")

	var err error
	if a.mqtt != nil {
		err = errors.CombineErrors(err, a.mqtt.Close())
	}
	err = errors.CombineErrors(err, a.grpc.Shutdown(ctx))
	if a.metrics != nil {
		err = errors.CombineErrors(err, a.metrics.Shutdown(ctx))
	}
	err = errors.CombineErrors(err, a.telemetry.Shutdown(ctx))
	return err
}

func (a *App) closeAll() {
	if a.mqtt != nil {
		_ = a.mqtt.Close()
	}
	_ = a.grpc.Close()
	_ = a.telemetry.Shutdown(context.Background())
}
