// Package calculator implements the arithmetic behind Calculator/Calculate and
// the handler that serves it on a calcrpc server.
package calculator

import (
	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/xizhibei/go-calc-rpc/calculatorpb"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("operation", func(fl validator.FieldLevel) bool {
		op, ok := fl.Field().Interface().(Operation)
		return ok && op.Valid()
	})
	return v
}

// Calculate applies op to a and b with IEEE-754 float64 semantics.
// Overflow yields ±Inf and NaN operands propagate, neither is an error.
func Calculate(op Operation, a, b float64) (float64, error) {
	switch op {
	case Add:
		return a + b, nil
	case Subtract:
		return a - b, nil
	}
	return 0, errors.Wrapf(ErrUnsupportedOperation, "%d", int32(op))
}

// Request is a decoded BinaryOperationRequest.
type Request struct {
	FirstOperand  float64
	SecondOperand float64
	Operation     Operation `validate:"operation"`
}

// NewRequest builds a Request.
func NewRequest(op Operation, a, b float64) *Request {
	return &Request{
		FirstOperand:  a,
		SecondOperand: b,
		Operation:     op,
	}
}

// RequestFromProto decodes and validates a wire request.
func RequestFromProto(req *calculatorpb.BinaryOperationRequest) (*Request, error) {
	r := NewRequest(Operation(req.GetOperation()), req.GetFirstOperand(), req.GetSecondOperand())
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Validate checks that the operation is supported.
func (r *Request) Validate() error {
	if err := validate.Struct(r); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return errors.Wrapf(ErrUnsupportedOperation, "%d", int32(r.Operation))
		}
		return err
	}
	return nil
}

// Proto encodes r for the wire.
func (r *Request) Proto() *calculatorpb.BinaryOperationRequest {
	return &calculatorpb.BinaryOperationRequest{
		FirstOperand:  r.FirstOperand,
		SecondOperand: r.SecondOperand,
		Operation:     r.Operation.Proto(),
	}
}

// Calculate evaluates r.
func (r *Request) Calculate() (float64, error) {
	return Calculate(r.Operation, r.FirstOperand, r.SecondOperand)
}
