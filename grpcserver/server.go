// Package grpcserver serves the calculator over gRPC, dispatching every call
// through the calcrpc core server.
package grpcserver

import (
	"context"
	"crypto/tls"
	"net"

	"github.com/cockroachdb/errors"
	calcrpc "github.com/xizhibei/go-calc-rpc"
	"github.com/xizhibei/go-calc-rpc/calculatorpb"
	"github.com/xizhibei/go-calc-rpc/telemetry"
	"go.uber.org/atomic"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	// Registers the deflate and brotli compressors so compressed calls decode.
	_ "github.com/xizhibei/go-calc-rpc/compressor"
)

type options struct {
	tlsConfig   *tls.Config
	coreOptions []calcrpc.ServerOption
	grpcOptions []grpc.ServerOption
	reflection  bool
}

// Option configures a Server.
type Option func(o *options)

// WithTLSConfig serves TLS with cfg. Without it the server is plaintext.
func WithTLSConfig(cfg *tls.Config) Option {
	return func(o *options) {
		o.tlsConfig = cfg
	}
}

// WithCoreOptions passes options to the underlying calcrpc.Server.
func WithCoreOptions(opts ...calcrpc.ServerOption) Option {
	return func(o *options) {
		o.coreOptions = append(o.coreOptions, opts...)
	}
}

// WithGRPCOptions passes options to grpc.NewServer.
func WithGRPCOptions(opts ...grpc.ServerOption) Option {
	return func(o *options) {
		o.grpcOptions = append(o.grpcOptions, opts...)
	}
}

// WithReflection toggles the server reflection service, on by default.
func WithReflection(enabled bool) Option {
	return func(o *options) {
		o.reflection = enabled
	}
}

// LoadTLSConfig reads a PEM certificate and key pair.
func LoadTLSConfig(certFile, keyFile string) (*tls.Config, error) {
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, errors.Wrap(err, "load tls key pair")
	}
	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}, nil
}

// Server is the gRPC transport of the calculator.
type Server struct {
	calculatorpb.UnimplementedCalculatorServer
	*calcrpc.Server

	grpcServer *grpc.Server
	health     *health.Server
	serving    atomic.Bool
	log        *zap.SugaredLogger
}

var _ calcrpc.RPCServer = (*Server)(nil)

// New creates a Server with the Calculator, health and reflection services
// registered. Handlers are added with Register.
func New(opts ...Option) *Server {
	o := options{reflection: true}
	for _, opt := range opts {
		opt(&o)
	}

	grpcOpts := o.grpcOptions
	if o.tlsConfig != nil {
		grpcOpts = append(grpcOpts, grpc.Creds(credentials.NewTLS(o.tlsConfig)))
	}

	s := &Server{
		Server:     calcrpc.NewServer(o.coreOptions...),
		grpcServer: grpc.NewServer(grpcOpts...),
		health:     health.NewServer(),
		log:        zap.S().With("module", "calcrpc.grpcserver"),
	}

	calculatorpb.RegisterCalculatorServer(s.grpcServer, s)
	healthpb.RegisterHealthServer(s.grpcServer, s.health)
	if o.reflection {
		reflection.Register(s.grpcServer)
	}

	return s
}

// GRPCServer returns the underlying grpc.Server.
func (s *Server) GRPCServer() *grpc.Server {
	return s.grpcServer
}

// Serve accepts connections on lis until the server is stopped.
func (s *Server) Serve(lis net.Listener) error {
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	s.health.SetServingStatus(calculatorpb.Calculator_ServiceDesc.ServiceName, healthpb.HealthCheckResponse_SERVING)
	s.serving.Store(true)
	defer s.serving.Store(false)

	s.log.Debugf("Serving on %s", lis.Addr())
	err := s.grpcServer.Serve(lis)
	if errors.Is(err, grpc.ErrServerStopped) {
		return nil
	}
	return err
}

// IsConnected reports whether Serve is running.
func (s *Server) IsConnected() bool {
	return s.serving.Load()
}

// Shutdown marks the server NOT_SERVING and waits for in-flight calls. When
// ctx is done first, remaining calls are cancelled.
func (s *Server) Shutdown(ctx context.Context) error {
	s.health.Shutdown()

	done := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(done)
	}()

	var err error
	select {
	case <-done:
	case <-ctx.Done():
		s.grpcServer.Stop()
		<-done
		err = ctx.Err()
	}

	if cerr := s.Server.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

// Close stops the server immediately.
func (s *Server) Close() error {
	s.health.Shutdown()
	s.grpcServer.Stop()
	return s.Server.Close()
}

// Calculate implements calculatorpb.CalculatorServer.
func (s *Server) Calculate(ctx context.Context, req *calculatorpb.BinaryOperationRequest) (*calculatorpb.CalculationResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, status.FromContextError(err).Err()
	}

	ctx = telemetry.ExtractIncoming(ctx)
	c := calcrpc.NewRequestContext(ctx, newGRPCContext(ctx, calculatorpb.Calculator_Calculate_FullMethodName, req))
	s.Server.Call(c)

	res := c.GetResponse()
	if err := responseError(res); err != nil {
		return nil, err
	}

	result, ok := res.Result.(*calculatorpb.CalculationResult)
	if !ok {
		return nil, status.Errorf(codes.Internal, "unexpected result type %T", res.Result)
	}
	return result, nil
}
