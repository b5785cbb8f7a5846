package calculator

import (
	"math"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xizhibei/go-calc-rpc/calculatorpb"
)

func TestCalculate(t *testing.T) {
	cases := []struct {
		name string
		op   Operation
		a, b float64
		want float64
	}{
		{"add", Add, 2, 3, 5},
		{"subtract", Subtract, 2, 3, -1},
		{"add negatives", Add, -1.5, -2.25, -3.75},
		{"subtract to zero", Subtract, 0.1, 0.1, 0},
		{"overflow", Add, 1e308, 1e308, math.Inf(1)},
		{"negative overflow", Subtract, -1e308, 1e308, math.Inf(-1)},
		{"inf minus inf", Subtract, math.Inf(1), math.Inf(1), math.NaN()},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Calculate(tc.op, tc.a, tc.b)
			require.NoError(t, err)
			if math.IsNaN(tc.want) {
				assert.True(t, math.IsNaN(got))
				return
			}
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCalculateMatchesNativeArithmetic(t *testing.T) {
	operands := []float64{0, -0.0, 1, -1, 0.1, 0.2, 1e-308, 5e-324, 1e308, math.MaxFloat64, math.SmallestNonzeroFloat64, 3.141592653589793}
	for _, a := range operands {
		for _, b := range operands {
			sum, err := Calculate(Add, a, b)
			require.NoError(t, err)
			assert.Equal(t, math.Float64bits(a+b), math.Float64bits(sum))

			diff, err := Calculate(Subtract, a, b)
			require.NoError(t, err)
			assert.Equal(t, math.Float64bits(a-b), math.Float64bits(diff))
		}
	}
}

func TestCalculateIsIdempotent(t *testing.T) {
	first, err := Calculate(Add, 0.1, 0.2)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := Calculate(Add, 0.1, 0.2)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestCalculateUnsupported(t *testing.T) {
	_, err := Calculate(Operation(2), 1, 2)
	assert.True(t, errors.Is(err, ErrUnsupportedOperation))

	_, err = Calculate(Operation(-1), 1, 2)
	assert.True(t, errors.Is(err, ErrUnsupportedOperation))
}

func TestParseOperation(t *testing.T) {
	op, err := ParseOperation("add")
	require.NoError(t, err)
	assert.Equal(t, Add, op)

	op, err = ParseOperation("subtract")
	require.NoError(t, err)
	assert.Equal(t, Subtract, op)

	_, err = ParseOperation("multiply")
	assert.True(t, errors.Is(err, ErrUnsupportedOperation))
	assert.Contains(t, err.Error(), "add, subtract")

	for _, name := range []string{"ADD", "Subtract", " subtract ", ""} {
		_, err = ParseOperation(name)
		assert.True(t, errors.Is(err, ErrUnsupportedOperation), name)
	}
}

func TestOperationProto(t *testing.T) {
	assert.Equal(t, calculatorpb.Operation_ADD, Add.Proto())
	assert.Equal(t, calculatorpb.Operation_SUBTRACT, Subtract.Proto())

	op, err := OperationFromProto(calculatorpb.Operation_SUBTRACT)
	require.NoError(t, err)
	assert.Equal(t, Subtract, op)

	_, err = OperationFromProto(calculatorpb.Operation(2))
	assert.True(t, errors.Is(err, ErrUnsupportedOperation))
}

func TestOperationString(t *testing.T) {
	assert.Equal(t, "add", Add.String())
	assert.Equal(t, "subtract", Subtract.String())
	assert.Equal(t, "operation(7)", Operation(7).String())
	assert.Equal(t, []string{"add", "subtract"}, OperationNames())
}

func TestRequestFromProto(t *testing.T) {
	r, err := RequestFromProto(&calculatorpb.BinaryOperationRequest{
		FirstOperand:  2,
		SecondOperand: 3,
		Operation:     calculatorpb.Operation_SUBTRACT,
	})
	require.NoError(t, err)
	assert.Equal(t, NewRequest(Subtract, 2, 3), r)

	result, err := r.Calculate()
	require.NoError(t, err)
	assert.Equal(t, float64(-1), result)

	// An unset operation decodes as ADD.
	r, err = RequestFromProto(&calculatorpb.BinaryOperationRequest{FirstOperand: 2, SecondOperand: 3})
	require.NoError(t, err)
	assert.Equal(t, Add, r.Operation)

	_, err = RequestFromProto(&calculatorpb.BinaryOperationRequest{Operation: calculatorpb.Operation(2)})
	assert.True(t, errors.Is(err, ErrUnsupportedOperation))
}

func TestRequestProtoRoundTrip(t *testing.T) {
	r := NewRequest(Subtract, math.SmallestNonzeroFloat64, -math.MaxFloat64)
	back, err := RequestFromProto(r.Proto())
	require.NoError(t, err)
	assert.Equal(t, math.Float64bits(r.FirstOperand), math.Float64bits(back.FirstOperand))
	assert.Equal(t, math.Float64bits(r.SecondOperand), math.Float64bits(back.SecondOperand))
	assert.Equal(t, r.Operation, back.Operation)
}
