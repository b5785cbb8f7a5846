// Package grpcclient is the gRPC client of the calculator service.
package grpcclient

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/xizhibei/go-calc-rpc/calculator"
	"github.com/xizhibei/go-calc-rpc/calculatorpb"
	"github.com/xizhibei/go-calc-rpc/compressor"
	"github.com/xizhibei/go-calc-rpc/telemetry"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
)

type options struct {
	plaintext   bool
	tlsConfig   *tls.Config
	caFile      string
	compressor  string
	telemetry   telemetry.Telemetry
	dialOptions []grpc.DialOption
}

// Option configures a Client.
type Option func(o *options)

// WithPlaintext disables TLS on the channel.
func WithPlaintext(plaintext bool) Option {
	return func(o *options) {
		o.plaintext = plaintext
	}
}

// WithTLSConfig sets the TLS configuration. The default trusts the system roots.
func WithTLSConfig(cfg *tls.Config) Option {
	return func(o *options) {
		o.tlsConfig = cfg
	}
}

// WithCAFile adds the PEM certificates in path to the trusted roots.
func WithCAFile(path string) Option {
	return func(o *options) {
		o.caFile = path
	}
}

// WithCompressor compresses requests with the named encoding: identity, gzip,
// deflate or brotli.
func WithCompressor(name string) Option {
	return func(o *options) {
		o.compressor = name
	}
}

// WithTelemetry traces each call.
func WithTelemetry(tel telemetry.Telemetry) Option {
	return func(o *options) {
		o.telemetry = tel
	}
}

// WithDialOptions passes extra options to grpc.NewClient.
func WithDialOptions(opts ...grpc.DialOption) Option {
	return func(o *options) {
		o.dialOptions = append(o.dialOptions, opts...)
	}
}

// Client calls Calculator/Calculate on one channel. Close releases it.
type Client struct {
	conn      *grpc.ClientConn
	client    calculatorpb.CalculatorClient
	callOpts  []grpc.CallOption
	telemetry telemetry.Telemetry
	log       *zap.SugaredLogger
}

// Dial creates a client for target (host:port). The connection is made lazily
// on the first call, so transport errors surface from Calculate.
func Dial(target string, opts ...Option) (*Client, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	creds, err := transportCredentials(&o)
	if err != nil {
		return nil, err
	}

	encoding, err := compressor.ParseContentEncoding(o.compressor)
	if err != nil {
		return nil, err
	}

	dialOpts := append([]grpc.DialOption{grpc.WithTransportCredentials(creds)}, o.dialOptions...)
	conn, err := grpc.NewClient(target, dialOpts...)
	if err != nil {
		return nil, errors.Wrapf(err, "create channel to %s", target)
	}

	tel := o.telemetry
	if tel == nil {
		noop, err := telemetry.NewNoop()
		if err != nil {
			_ = conn.Close()
			return nil, err
		}
		tel = noop
	}

	var callOpts []grpc.CallOption
	if name := compressor.GRPCName(encoding); name != "" {
		callOpts = append(callOpts, grpc.UseCompressor(name))
	}

	return &Client{
		conn:      conn,
		client:    calculatorpb.NewCalculatorClient(conn),
		callOpts:  callOpts,
		telemetry: tel,
		log:       zap.S().With("module", "calcrpc.grpcclient"),
	}, nil
}

func transportCredentials(o *options) (credentials.TransportCredentials, error) {
	if o.plaintext {
		return insecure.NewCredentials(), nil
	}

	cfg, err := ClientTLSConfig(o.tlsConfig, o.caFile)
	if err != nil {
		return nil, err
	}
	return credentials.NewTLS(cfg), nil
}

// ClientTLSConfig returns a copy of base, or a TLS 1.2 minimum config when
// base is nil, that also trusts the certificates in caFile on top of the
// system roots. An empty caFile trusts the system roots only.
func ClientTLSConfig(base *tls.Config, caFile string) (*tls.Config, error) {
	cfg := base
	if cfg == nil {
		cfg = &tls.Config{MinVersion: tls.VersionTLS12}
	} else {
		cfg = cfg.Clone()
	}

	if caFile == "" {
		return cfg, nil
	}

	pem, err := os.ReadFile(caFile)
	if err != nil {
		return nil, errors.Wrap(err, "read ca file")
	}
	pool := cfg.RootCAs
	if pool == nil {
		pool, err = x509.SystemCertPool()
		if err != nil {
			pool = x509.NewCertPool()
		}
	}
	if !pool.AppendCertsFromPEM(pem) {
		return nil, errors.Newf("[CALC] no certificates found in %s", caFile)
	}
	cfg.RootCAs = pool
	return cfg, nil
}

// Calculate asks the server to apply op to a and b.
func (c *Client) Calculate(ctx context.Context, op calculator.Operation, a, b float64) (float64, error) {
	req := calculator.NewRequest(op, a, b)
	if err := req.Validate(); err != nil {
		return 0, err
	}

	ctx, span := c.telemetry.StartSpan(ctx, "CalcRPC.Client.Calculate", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	ctx = telemetry.InjectOutgoing(ctx)

	c.log.Debugf("Calculate %s %v %v", op, a, b)
	res, err := c.client.Calculate(ctx, req.Proto(), c.callOpts...)
	if err != nil {
		span.RecordError(err)
		return 0, err
	}
	return res.GetResult(), nil
}

// Close releases the channel.
func (c *Client) Close() error {
	return c.conn.Close()
}
