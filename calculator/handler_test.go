package calculator_test

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/suite"
	calcrpc "github.com/xizhibei/go-calc-rpc"
	"github.com/xizhibei/go-calc-rpc/calculator"
	"github.com/xizhibei/go-calc-rpc/calculatorpb"
	"go.uber.org/zap"
	"google.golang.org/protobuf/proto"
)

type protoChannel struct {
	req proto.Message
}

func (c *protoChannel) ID() *calcrpc.ID                 { return &calcrpc.ID{Str: "handler-test"} }
func (c *protoChannel) Method() string                  { return calculator.Method }
func (c *protoChannel) ReplyDesc() string               { return "handler-test" }
func (c *protoChannel) Reply(res *calcrpc.Response) bool { return true }

func (c *protoChannel) Bind(request interface{}) error {
	m, ok := request.(proto.Message)
	if !ok {
		return errors.New("not a proto message")
	}
	if m.ProtoReflect().Descriptor().FullName() != c.req.ProtoReflect().Descriptor().FullName() {
		return errors.New("type mismatch")
	}
	proto.Merge(m, c.req)
	return nil
}

type HandlerTestSuite struct {
	suite.Suite
	server *calcrpc.Server
}

func (suite *HandlerTestSuite) SetupSuite() {
	log, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	zap.ReplaceGlobals(log)

	suite.server = calcrpc.NewServer()
	calculator.Register(suite.server, 0)
}

func (suite *HandlerTestSuite) TearDownSuite() {
	suite.NoError(suite.server.Close())
}

func (suite *HandlerTestSuite) call(req proto.Message) *calcrpc.Response {
	c := calcrpc.NewRequestContext(context.Background(), &protoChannel{req: req})
	suite.server.Call(c)
	return c.GetResponse()
}

func (suite *HandlerTestSuite) TestAdd() {
	res := suite.call(&calculatorpb.BinaryOperationRequest{
		FirstOperand:  2,
		SecondOperand: 3,
		Operation:     calculatorpb.Operation_ADD,
	})
	suite.Equal(calcrpc.RPCStatusOK, res.Status)
	suite.Equal(float64(5), res.Result.(*calculatorpb.CalculationResult).GetResult())
}

func (suite *HandlerTestSuite) TestSubtract() {
	res := suite.call(&calculatorpb.BinaryOperationRequest{
		FirstOperand:  2,
		SecondOperand: 3,
		Operation:     calculatorpb.Operation_SUBTRACT,
	})
	suite.Equal(calcrpc.RPCStatusOK, res.Status)
	suite.Equal(float64(-1), res.Result.(*calculatorpb.CalculationResult).GetResult())
}

func (suite *HandlerTestSuite) TestUnsupportedOperation() {
	res := suite.call(&calculatorpb.BinaryOperationRequest{
		FirstOperand:  2,
		SecondOperand: 3,
		Operation:     calculatorpb.Operation(2),
	})
	suite.Equal(calcrpc.RPCStatusClientError, res.Status)
	suite.True(errors.Is(res.Error, calculator.ErrUnsupportedOperation))
}

func (suite *HandlerTestSuite) TestBindError() {
	res := suite.call(&calculatorpb.CalculationResult{Result: 1})
	suite.Equal(calcrpc.RPCStatusClientError, res.Status)
	suite.Error(res.Error)
}

func TestHandler(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}
