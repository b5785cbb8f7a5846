package cli

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/xizhibei/go-calc-rpc/calculator"
	"github.com/xizhibei/go-calc-rpc/grpcclient"
	"github.com/xizhibei/go-calc-rpc/mqttadapter"
	"github.com/xizhibei/go-calc-rpc/mqttpb"
	"go.uber.org/zap"
)

// ErrInvalidArgument marks command line arguments rejected before any call.
var ErrInvalidArgument = errors.New("[CALC] invalid argument")

// CalculateRequest contains the arguments and flags of calc-client.
type CalculateRequest struct {
	// Server is the host:port of the server, or of the broker with --mqtt-device.
	Server string `validate:"required,server_addr"`
	// Operation is add or subtract.
	Operation calculator.Operation
	// FirstOperand and SecondOperand are the operands.
	FirstOperand  float64
	SecondOperand float64

	Plaintext       bool
	Timeout         time.Duration `validate:"gt=0"`
	CAFile          string        `validate:"omitempty,file"`
	Compression     string        `validate:"oneof=identity gzip deflate brotli"`
	MQTTDevice      string        `validate:"excludesall=/+#"`
	MQTTTopicPrefix string        `validate:"excludesall=+#"`
	LogLevel        string        `validate:"oneof=debug info warn error"`
}

var validate = newValidator()

var newMQTTAdapter = mqttadapter.New

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("server_addr", func(fl validator.FieldLevel) bool {
		addr := fl.Field().String()
		host, port, err := net.SplitHostPort(addr)
		if err != nil {
			return false
		}
		if net.ParseIP(host) != nil {
			n, err := strconv.Atoi(port)
			return err == nil && n >= 1 && n <= 65535
		}
		return v.Var(addr, "hostname_port") == nil
	})
	return v
}

// Calculate handles the calc-client command.
type Calculate struct{}

// Command creates the cobra command of calc-client. Flags may come before,
// between or after the positional arguments. Operands such as -3 are read as
// numbers, not as flags.
func (c Calculate) Command() *cobra.Command {
	request := &CalculateRequest{}
	cmd := &cobra.Command{
		Use:   "calc-client [flags] SERVER OPERATION A B",
		Short: "Ask a calculator server to add or subtract two numbers and print the result.",
		Long: "Ask a calculator server to add or subtract two numbers and print the result.\n" +
			"OPERATION is one of: add, subtract.",
		DisableFlagParsing: true,
		SilenceErrors:      true,
		SilenceUsage:       true,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			err := flags.Parse(operandsLast(flags, args))
			if errors.Is(err, pflag.ErrHelp) {
				return cmd.Help()
			}
			if err != nil {
				return usageError(cmd, errors.Mark(err, ErrInvalidArgument))
			}
			if help, _ := flags.GetBool("help"); help {
				return cmd.Help()
			}

			if err := request.parseArgs(flags.Args()); err != nil {
				return usageError(cmd, err)
			}

			if err := setupLogger(request.LogLevel, true); err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), request.Timeout)
			defer cancel()

			result, err := c.Exec(ctx, request)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%v\n", result)
			return err
		},
	}

	flags := cmd.Flags()
	flags.BoolVarP(&request.Plaintext, "plaintext", "k", false, "Use a plaintext channel instead of TLS")
	flags.DurationVar(&request.Timeout, "timeout", 10*time.Second, "Deadline of the call")
	flags.StringVar(&request.CAFile, "ca-file", "", "PEM file with extra certificates to trust")
	flags.StringVar(&request.Compression, "compression", "identity", "Request compression: identity, gzip, deflate or brotli")
	flags.StringVar(&request.MQTTDevice, "mqtt-device", "", "Call this device over MQTT, SERVER is then the broker host:port")
	flags.StringVar(&request.MQTTTopicPrefix, "mqtt-topic-prefix", "calc", "Topic prefix used with --mqtt-device")
	flags.StringVar(&request.LogLevel, "log-level", "warn", "Log level: debug, info, warn or error")
	return cmd
}

// usageError prints the usage to stderr so stdout only ever carries a result.
func usageError(cmd *cobra.Command, err error) error {
	cmd.PrintErr(cmd.UsageString())
	return err
}

// operandsLast moves positional arguments behind "--", keeping flags and
// their values in front, so that negative numbers reach parseArgs.
func operandsLast(flags *pflag.FlagSet, args []string) []string {
	var flagArgs, positional []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--":
			positional = append(positional, args[i+1:]...)
			return append(append(flagArgs, "--"), positional...)
		case len(arg) < 2 || arg[0] != '-' || isNumber(arg):
			positional = append(positional, arg)
		default:
			flagArgs = append(flagArgs, arg)
			if takesValue(flags, arg) && i+1 < len(args) {
				i++
				flagArgs = append(flagArgs, args[i])
			}
		}
	}
	return append(append(flagArgs, "--"), positional...)
}

func isNumber(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// takesValue reports whether arg is a flag whose value is the next argument.
func takesValue(flags *pflag.FlagSet, arg string) bool {
	if strings.Contains(arg, "=") {
		return false
	}
	var f *pflag.Flag
	if name, ok := strings.CutPrefix(arg, "--"); ok {
		f = flags.Lookup(name)
	} else if len(arg) == 2 {
		f = flags.ShorthandLookup(arg[1:])
	}
	return f != nil && f.NoOptDefVal == ""
}

func (r *CalculateRequest) parseArgs(args []string) error {
	if len(args) != 4 {
		return errors.Mark(errors.Newf("[CALC] accepts 4 arguments, received %d", len(args)), ErrInvalidArgument)
	}
	r.Server = args[0]

	op, err := calculator.ParseOperation(args[1])
	if err != nil {
		return errors.Mark(err, ErrInvalidArgument)
	}
	r.Operation = op

	if r.FirstOperand, err = parseOperand(args[2]); err != nil {
		return err
	}
	if r.SecondOperand, err = parseOperand(args[3]); err != nil {
		return err
	}

	if err := validate.Struct(r); err != nil {
		return errors.Mark(errors.Wrap(err, "invalid arguments"), ErrInvalidArgument)
	}
	return nil
}

func parseOperand(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.Mark(errors.Newf("[CALC] operand %q is not a number", s), ErrInvalidArgument)
	}
	return v, nil
}

// Exec makes one call and returns its result.
func (c Calculate) Exec(ctx context.Context, request *CalculateRequest) (float64, error) {
	if request.MQTTDevice != "" {
		return c.execMQTT(ctx, request)
	}

	opts := []grpcclient.Option{
		grpcclient.WithPlaintext(request.Plaintext),
		grpcclient.WithCAFile(request.CAFile),
		grpcclient.WithCompressor(request.Compression),
	}
	client, err := grpcclient.Dial(request.Server, opts...)
	if err != nil {
		return 0, err
	}
	defer client.Close()

	return client.Calculate(ctx, request.Operation, request.FirstOperand, request.SecondOperand)
}

func (c Calculate) execMQTT(ctx context.Context, request *CalculateRequest) (float64, error) {
	encoding, err := mqttpb.EncodingFromName(request.Compression)
	if err != nil {
		return 0, err
	}

	scheme := "ssl"
	var opts []mqttadapter.Option
	if request.Plaintext {
		scheme = "tcp"
	} else {
		tlsConfig, err := grpcclient.ClientTLSConfig(nil, request.CAFile)
		if err != nil {
			return 0, err
		}
		opts = append(opts, mqttadapter.WithTLSConfig(tlsConfig))
	}

	adapter, err := newMQTTAdapter(scheme+"://"+request.Server, "calc-client-"+uuid.NewString(), opts...)
	if err != nil {
		return 0, err
	}
	client := mqttpb.NewClient(adapter, request.MQTTTopicPrefix)
	defer client.Close()

	if err := adapter.Connect(ctx); err != nil {
		return 0, errors.Wrapf(err, "connect to broker %s", request.Server)
	}

	zap.S().Debugf("Calling %s over MQTT", request.MQTTDevice)
	return client.Calculate(ctx, request.MQTTDevice, request.Operation,
		request.FirstOperand, request.SecondOperand, mqttpb.WithEncoding(encoding))
}
