package calculator

import (
	"time"

	calcrpc "github.com/xizhibei/go-calc-rpc"
	"github.com/xizhibei/go-calc-rpc/calculatorpb"
	"go.uber.org/zap"
)

// Method is the full method name the handler is registered under.
const Method = calculatorpb.Calculator_Calculate_FullMethodName

// Registrar is anything handlers can be registered on.
type Registrar interface {
	Register(method string, hdl *calcrpc.Handler)
}

// NewHandler returns the Calculate handler. A zero timeout uses the server default.
func NewHandler(timeout time.Duration) *calcrpc.Handler {
	log := zap.S().With("module", "calculator")

	return &calcrpc.Handler{
		Timeout: timeout,
		Method: func(c calcrpc.Context) {
			var req calculatorpb.BinaryOperationRequest
			if err := c.Bind(&req); err != nil {
				c.ReplyError(calcrpc.RPCStatusClientError, err)
				return
			}

			log.Infof("Calculate request id=%s first_operand=%v second_operand=%v operation=%s",
				c.ID(), req.GetFirstOperand(), req.GetSecondOperand(), req.GetOperation())

			r, err := RequestFromProto(&req)
			if err != nil {
				log.Warnf("Reject request id=%s: %v", c.ID(), err)
				c.ReplyError(calcrpc.RPCStatusClientError, err)
				return
			}

			result, err := r.Calculate()
			if err != nil {
				c.ReplyError(calcrpc.RPCStatusClientError, err)
				return
			}

			c.ReplyOK(&calculatorpb.CalculationResult{Result: result})
		},
	}
}

// Register registers the Calculate handler on r.
func Register(r Registrar, timeout time.Duration) {
	r.Register(Method, NewHandler(timeout))
}
