package mqttpb_test

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	calcrpc "github.com/xizhibei/go-calc-rpc"
	"github.com/xizhibei/go-calc-rpc/calculator"
	"github.com/xizhibei/go-calc-rpc/calculatorpb"
	"github.com/xizhibei/go-calc-rpc/mqttadapter"
	"github.com/xizhibei/go-calc-rpc/mqttpb"
	"github.com/xizhibei/go-calc-rpc/telemetry"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/anypb"
)

const (
	topicPrefix = "calc"
	deviceID    = "dev1"
)

type MQTTPBServerTestSuite struct {
	suite.Suite
	mockCtrl *gomock.Controller
	broker   *loopback
	server   *mqttpb.Server
	client   *mqttpb.Client
}

func (suite *MQTTPBServerTestSuite) SetupSuite() {
	log, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	zap.ReplaceGlobals(log)
}

func (suite *MQTTPBServerTestSuite) SetupTest() {
	suite.mockCtrl = gomock.NewController(suite.T())
	suite.broker = newLoopback(suite.mockCtrl)

	suite.server = mqttpb.NewServer(suite.broker.adapter, topicPrefix, deviceID,
		calcrpc.WithServerName("mqtt-test"),
		calcrpc.WithLogResponse(true),
	)
	calculator.Register(suite.server, 0)

	suite.client = mqttpb.NewClient(suite.broker.adapter, topicPrefix)
}

func (suite *MQTTPBServerTestSuite) TearDownTest() {
	suite.NoError(suite.server.Close())
}

func (suite *MQTTPBServerTestSuite) ctx() context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	suite.T().Cleanup(cancel)
	return ctx
}

// rawCall publishes req as is and returns the decoded response.
func (suite *MQTTPBServerTestSuite) rawCall(payload []byte) *mqttpb.Response {
	id := "raw"
	resCh := make(chan []byte, 1)
	err := suite.broker.adapter.SubscribeWait(suite.ctx(), mqttpb.ResponseTopic(topicPrefix, deviceID, id), 0,
		func(_ mqttadapter.MQTTClientAdapter, m mqttadapter.Message) {
			resCh <- m.Payload()
		})
	suite.Require().NoError(err)

	suite.broker.adapter.PublishBytes(suite.ctx(), mqttpb.RequestTopic(topicPrefix, deviceID, id), 0, false, payload)

	select {
	case data := <-resCh:
		var res mqttpb.Response
		suite.Require().NoError(mqttpb.NewClientCodec(nil).Unmarshal(data, &res))
		return &res
	case <-time.After(5 * time.Second):
		suite.FailNow("no response")
	}
	return nil
}

func (suite *MQTTPBServerTestSuite) encodeRequest(method string, body proto.Message) []byte {
	anyBody, err := anypb.New(body)
	suite.Require().NoError(err)
	data, err := mqttpb.NewClientCodec(nil).Marshal(&mqttpb.Request{
		Id:     42,
		Method: method,
		Body:   anyBody,
	})
	suite.Require().NoError(err)
	return data
}

func (suite *MQTTPBServerTestSuite) TestSubscribesOnConnect() {
	suite.Equal("calc/dev1/request/+", suite.server.SubscribeTopic())
	suite.True(suite.broker.subscribed("calc/dev1/request/+"))
	suite.True(suite.server.IsConnected())
}

func (suite *MQTTPBServerTestSuite) TestAdd() {
	result, err := suite.client.Calculate(suite.ctx(), deviceID, calculator.Add, 2, 3)
	suite.Require().NoError(err)
	suite.Equal(float64(5), result)
}

func (suite *MQTTPBServerTestSuite) TestSubtract() {
	result, err := suite.client.Calculate(suite.ctx(), deviceID, calculator.Subtract, 2, 3)
	suite.Require().NoError(err)
	suite.Equal(float64(-1), result)
}

func (suite *MQTTPBServerTestSuite) TestOverflow() {
	result, err := suite.client.Calculate(suite.ctx(), deviceID, calculator.Add, 1e308, 1e308)
	suite.Require().NoError(err)
	suite.True(math.IsInf(result, 1))
}

func (suite *MQTTPBServerTestSuite) TestEncodings() {
	for _, e := range encodings {
		result, err := suite.client.Calculate(suite.ctx(), deviceID, calculator.Add, 40, 2, mqttpb.WithEncoding(e))
		suite.NoError(err, e)
		suite.Equal(float64(42), result, e)
	}
}

func (suite *MQTTPBServerTestSuite) TestResponseTopicIsReleased() {
	_, err := suite.client.Calculate(suite.ctx(), deviceID, calculator.Add, 1, 1)
	suite.Require().NoError(err)

	suite.broker.mu.Lock()
	defer suite.broker.mu.Unlock()
	suite.Len(suite.broker.subs, 1)
}

func (suite *MQTTPBServerTestSuite) TestUnsupportedOperation() {
	res := suite.rawCall(suite.encodeRequest(calculator.Method, &calculatorpb.BinaryOperationRequest{
		FirstOperand:  1,
		SecondOperand: 2,
		Operation:     calculatorpb.Operation(5),
	}))
	suite.Equal(uint64(42), res.Id)
	suite.Equal(int32(calcrpc.RPCStatusClientError), res.Status)
	suite.Contains(res.ErrorMessage, "unsupported operation")
	suite.Nil(res.Body)
}

func (suite *MQTTPBServerTestSuite) TestWrongBodyType() {
	res := suite.rawCall(suite.encodeRequest(calculator.Method, &calculatorpb.CalculationResult{Result: 1}))
	suite.Equal(int32(calcrpc.RPCStatusClientError), res.Status)
	suite.Contains(res.ErrorMessage, "does not match")
}

func (suite *MQTTPBServerTestSuite) TestGarbagePayload() {
	res := suite.rawCall([]byte{0xff, 0xff, 0xff})
	suite.Equal(int32(calcrpc.RPCStatusClientError), res.Status)
	suite.NotEmpty(res.ErrorMessage)
}

func (suite *MQTTPBServerTestSuite) TestUnknownMethod() {
	var res calculatorpb.CalculationResult
	err := suite.client.Call(suite.ctx(), deviceID, "/calculator.Calculator/Multiply",
		calculator.NewRequest(calculator.Add, 1, 2).Proto(), &res)

	var resErr *mqttpb.ResponseError
	suite.Require().ErrorAs(err, &resErr)
	suite.Equal(calcrpc.RPCStatusNotFound, resErr.Status)
	suite.Contains(resErr.Error(), "unknown method")
}

func (suite *MQTTPBServerTestSuite) TestUnsupportedOperationIsRejectedLocally() {
	_, err := suite.client.Calculate(suite.ctx(), deviceID, calculator.Operation(9), 1, 2)
	suite.ErrorIs(err, calculator.ErrUnsupportedOperation)
}

func (suite *MQTTPBServerTestSuite) TestNoServerTimesOut() {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := suite.client.Calculate(ctx, "other-device", calculator.Add, 1, 2)
	suite.ErrorIs(err, context.DeadlineExceeded)
}

func (suite *MQTTPBServerTestSuite) TestTelemetry() {
	testTel := telemetry.NewTestTelemetry(suite.T())
	defer testTel.Shutdown(context.Background())

	suite.client.SetTelemetry(testTel.Telemetry())
	suite.server.SetTelemetry(testTel.Telemetry())

	_, err := suite.client.Calculate(suite.ctx(), deviceID, calculator.Add, 1, 1)
	suite.Require().NoError(err)

	suite.Eventually(func() bool {
		var client, server bool
		for _, span := range testTel.Ended() {
			switch span.Name() {
			case "CalcRPC.Client.Call " + calculator.Method:
				client = true
			case "CalcRPC.Server.Call " + calculator.Method:
				server = true
			}
		}
		return client && server
	}, time.Second, 10*time.Millisecond)
}

func TestMQTTPBServer(t *testing.T) {
	suite.Run(t, new(MQTTPBServerTestSuite))
}

func TestSharedCore(t *testing.T) {
	ctrl := gomock.NewController(t)
	broker := newLoopback(ctrl)

	core := calcrpc.NewServer()
	calculator.Register(core, 0)

	server := mqttpb.NewServerWithCore(broker.adapter, topicPrefix, deviceID, core)
	client := mqttpb.NewClient(broker.adapter, topicPrefix)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := client.Calculate(ctx, deviceID, calculator.Subtract, 10, 4)
	if err != nil {
		t.Fatal(err)
	}
	if result != 6 {
		t.Fatalf("got %v, want 6", result)
	}

	// Closing the transport leaves a shared core running.
	if err := server.Close(); err != nil {
		t.Fatal(err)
	}
	server = mqttpb.NewServerWithCore(broker.adapter, topicPrefix, deviceID, core)
	defer core.Close()
	defer server.Close()

	result, err = client.Calculate(ctx, deviceID, calculator.Add, 10, 4)
	if err != nil {
		t.Fatal(err)
	}
	if result != 14 {
		t.Fatalf("got %v, want 14", result)
	}
}
