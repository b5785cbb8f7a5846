package mqttpb_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/suite"
	"github.com/xizhibei/go-calc-rpc/calculator"
	"github.com/xizhibei/go-calc-rpc/calculatorpb"
	"github.com/xizhibei/go-calc-rpc/mqttadapter"
	mock_mqttadapter "github.com/xizhibei/go-calc-rpc/mqttadapter/mock"
	"github.com/xizhibei/go-calc-rpc/mqttpb"
	"go.uber.org/mock/gomock"
	"google.golang.org/protobuf/types/known/anypb"
)

type MQTTPBClientTestSuite struct {
	suite.Suite
	mockCtrl   *gomock.Controller
	mqttClient *mock_mqttadapter.MockMQTTClientAdapter
	client     *mqttpb.Client
}

func (suite *MQTTPBClientTestSuite) SetupTest() {
	suite.mockCtrl = gomock.NewController(suite.T())
	suite.mqttClient = mock_mqttadapter.NewMockMQTTClientAdapter(suite.mockCtrl)
	suite.client = mqttpb.NewClient(suite.mqttClient, topicPrefix)
}

func (suite *MQTTPBClientTestSuite) ctx() context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	suite.T().Cleanup(cancel)
	return ctx
}

func (suite *MQTTPBClientTestSuite) TestCallFlow() {
	var onResponse mqttadapter.MessageCallback
	var responseTopic string

	gomock.InOrder(
		suite.mqttClient.EXPECT().
			SubscribeWait(gomock.Any(), gomock.Any(), byte(0), gomock.Any()).
			DoAndReturn(func(_ context.Context, topic string, _ byte, cb mqttadapter.MessageCallback) error {
				suite.True(strings.HasPrefix(topic, "calc/dev1/response/"))
				responseTopic = topic
				onResponse = cb
				return nil
			}),
		suite.mqttClient.EXPECT().
			PublishBytesWait(gomock.Any(), gomock.Any(), byte(0), false, gomock.Any()).
			DoAndReturn(func(_ context.Context, topic string, _ byte, _ bool, data []byte) error {
				suite.Equal(strings.Replace(responseTopic, "/response/", "/request/", 1), topic)

				var req mqttpb.Request
				suite.Require().NoError(mqttpb.NewServerCodec(nil).Unmarshal(data, &req))
				suite.Equal(calculator.Method, req.Method)
				suite.Equal(mqttpb.ContentEncoding_DEFLATE, req.Encoding)

				var args calculatorpb.BinaryOperationRequest
				suite.Require().NoError(req.Body.UnmarshalTo(&args))
				suite.Equal(float64(2), args.FirstOperand)
				suite.Equal(calculatorpb.Operation_SUBTRACT, args.Operation)

				body, err := anypb.New(&calculatorpb.CalculationResult{Result: -1})
				suite.Require().NoError(err)
				payload, err := mqttpb.NewServerCodec(nil).Marshal(&mqttpb.Response{
					Id:       req.Id,
					Status:   200,
					Encoding: req.Encoding,
					Body:     body,
				})
				suite.Require().NoError(err)

				go onResponse(suite.mqttClient, &message{topic: responseTopic, payload: payload})
				return nil
			}),
		suite.mqttClient.EXPECT().
			Unsubscribe(gomock.Any(), gomock.Any()).
			Do(func(_ context.Context, topic string) {
				suite.Equal(responseTopic, topic)
			}),
	)

	result, err := suite.client.Calculate(suite.ctx(), deviceID, calculator.Subtract, 2, 3,
		mqttpb.WithEncoding(mqttpb.ContentEncoding_DEFLATE))
	suite.Require().NoError(err)
	suite.Equal(float64(-1), result)
}

func (suite *MQTTPBClientTestSuite) TestSubscribeError() {
	suite.mqttClient.EXPECT().
		SubscribeWait(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(errors.New("not connected"))

	_, err := suite.client.Calculate(suite.ctx(), deviceID, calculator.Add, 1, 2)
	suite.ErrorContains(err, "not connected")
}

func (suite *MQTTPBClientTestSuite) TestPublishError() {
	suite.mqttClient.EXPECT().
		SubscribeWait(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil)
	suite.mqttClient.EXPECT().
		PublishBytesWait(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(errors.New("broker gone"))
	suite.mqttClient.EXPECT().
		Unsubscribe(gomock.Any(), gomock.Any())

	_, err := suite.client.Calculate(suite.ctx(), deviceID, calculator.Add, 1, 2)
	suite.ErrorContains(err, "broker gone")
}

func (suite *MQTTPBClientTestSuite) TestConnectionState() {
	suite.mqttClient.EXPECT().IsConnected().Return(false)
	suite.False(suite.client.IsConnected())

	suite.mqttClient.EXPECT().Disconnect()
	suite.NoError(suite.client.Close())
}

func TestMQTTPBClient(t *testing.T) {
	suite.Run(t, new(MQTTPBClientTestSuite))
}

func TestResponseError(t *testing.T) {
	err := &mqttpb.ResponseError{Status: 400, Message: "bad operand"}
	if got, want := err.Error(), "[CALC] status 400: bad operand"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
