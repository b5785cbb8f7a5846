package cli

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/xizhibei/go-calc-rpc/calculator"
	"github.com/xizhibei/go-calc-rpc/calculatorpb"
	"github.com/xizhibei/go-calc-rpc/mqttadapter"
	mock_mqttadapter "github.com/xizhibei/go-calc-rpc/mqttadapter/mock"
	mock_mqtt "github.com/xizhibei/go-calc-rpc/mqttadapter/mock/mqtt"
	"github.com/xizhibei/go-calc-rpc/mqttpb"
	"go.uber.org/mock/gomock"
	"google.golang.org/protobuf/types/known/anypb"
)

func TestOperandsLast(t *testing.T) {
	flags := Calculate{}.Command().Flags()

	cases := []struct {
		args []string
		want []string
	}{
		{
			[]string{"-k", "host:1", "subtract", "2", "-3"},
			[]string{"-k", "--", "host:1", "subtract", "2", "-3"},
		},
		{
			[]string{"host:1", "add", "-2.5", "1", "--timeout", "2s", "-k"},
			[]string{"--timeout", "2s", "-k", "--", "host:1", "add", "-2.5", "1"},
		},
		{
			[]string{"--compression=gzip", "host:1", "add", "-Inf", "-1e3"},
			[]string{"--compression=gzip", "--", "host:1", "add", "-Inf", "-1e3"},
		},
		{
			[]string{"--log-level", "debug", "--", "host:1", "add", "1", "-k"},
			[]string{"--log-level", "debug", "--", "host:1", "add", "1", "-k"},
		},
	}

	for _, c := range cases {
		assert.Equal(t, c.want, operandsLast(flags, c.args), strings.Join(c.args, " "))
	}
}

type ExecMQTTTestSuite struct {
	suite.Suite
	mockCtrl *gomock.Controller
	adapter  *mock_mqttadapter.MockMQTTClientAdapter
	uri      string
	restore  func()
	request  *CalculateRequest
}

func (suite *ExecMQTTTestSuite) SetupTest() {
	suite.mockCtrl = gomock.NewController(suite.T())
	suite.adapter = mock_mqttadapter.NewMockMQTTClientAdapter(suite.mockCtrl)

	prev := newMQTTAdapter
	newMQTTAdapter = func(uri, clientID string, options ...mqttadapter.Option) (mqttadapter.MQTTClientAdapter, error) {
		suite.uri = uri
		return suite.adapter, nil
	}
	suite.restore = func() { newMQTTAdapter = prev }

	suite.request = &CalculateRequest{
		Server:          "localhost:1883",
		Operation:       calculator.Subtract,
		FirstOperand:    2,
		SecondOperand:   -3,
		Plaintext:       true,
		Timeout:         time.Second,
		Compression:     "identity",
		MQTTDevice:      "dev1",
		MQTTTopicPrefix: "calc",
	}
}

func (suite *ExecMQTTTestSuite) TearDownTest() {
	suite.restore()
}

func (suite *ExecMQTTTestSuite) TestConnectErrorDisconnects() {
	gomock.InOrder(
		suite.adapter.EXPECT().Connect(gomock.Any()).Return(errors.New("connection refused")),
		suite.adapter.EXPECT().Disconnect(),
	)

	_, err := Calculate{}.Exec(context.Background(), suite.request)
	suite.ErrorContains(err, "connection refused")
	suite.Equal("tcp://localhost:1883", suite.uri)
}

func (suite *ExecMQTTTestSuite) TestConnectDeadlineDisconnects() {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	gomock.InOrder(
		suite.adapter.EXPECT().Connect(gomock.Any()).DoAndReturn(func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		}),
		suite.adapter.EXPECT().Disconnect(),
	)

	_, err := Calculate{}.Exec(ctx, suite.request)
	suite.True(errors.Is(err, context.DeadlineExceeded))
}

func (suite *ExecMQTTTestSuite) TestCallDisconnects() {
	var onResponse mqttadapter.MessageCallback
	codec := mqttpb.NewServerCodec(nil)

	gomock.InOrder(
		suite.adapter.EXPECT().Connect(gomock.Any()).Return(nil),
		suite.adapter.EXPECT().
			SubscribeWait(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, topic string, _ byte, cb mqttadapter.MessageCallback) error {
				suite.True(strings.HasPrefix(topic, "calc/dev1/response/"))
				onResponse = cb
				return nil
			}),
		suite.adapter.EXPECT().
			PublishBytesWait(gomock.Any(), gomock.Any(), gomock.Any(), false, gomock.Any()).
			DoAndReturn(func(_ context.Context, topic string, _ byte, _ bool, data []byte) error {
				var req mqttpb.Request
				suite.Require().NoError(codec.Unmarshal(data, &req))

				var args calculatorpb.BinaryOperationRequest
				suite.Require().NoError(req.Body.UnmarshalTo(&args))

				body, err := anypb.New(&calculatorpb.CalculationResult{Result: args.FirstOperand - args.SecondOperand})
				suite.Require().NoError(err)
				payload, err := codec.Marshal(&mqttpb.Response{Id: req.Id, Status: 200, Body: body})
				suite.Require().NoError(err)

				msg := mock_mqtt.NewMockMessage(suite.mockCtrl)
				msg.EXPECT().Payload().Return(payload).AnyTimes()
				go onResponse(suite.adapter, msg)
				return nil
			}),
		suite.adapter.EXPECT().Unsubscribe(gomock.Any(), gomock.Any()),
		suite.adapter.EXPECT().Disconnect(),
	)

	result, err := Calculate{}.Exec(context.Background(), suite.request)
	suite.Require().NoError(err)
	suite.Equal(float64(5), result)
}

func TestExecMQTT(t *testing.T) {
	suite.Run(t, new(ExecMQTTTestSuite))
}
