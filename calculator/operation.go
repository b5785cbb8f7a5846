package calculator

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/xizhibei/go-calc-rpc/calculatorpb"
)

// Operation is one of the arithmetic operations the service supports.
// Its numeric values match calculatorpb.Operation on the wire.
type Operation int32

const (
	Add      Operation = Operation(calculatorpb.Operation_ADD)
	Subtract Operation = Operation(calculatorpb.Operation_SUBTRACT)
)

var (
	// ErrUnsupportedOperation is returned for any operation other than Add and Subtract.
	ErrUnsupportedOperation = errors.New("[CALC] unsupported operation")
)

var operationNames = map[Operation]string{
	Add:      "add",
	Subtract: "subtract",
}

// OperationNames lists the names accepted by ParseOperation.
func OperationNames() []string {
	return []string{operationNames[Add], operationNames[Subtract]}
}

// String returns the CLI name of the operation.
func (o Operation) String() string {
	if name, ok := operationNames[o]; ok {
		return name
	}
	return "operation(" + strconv.FormatInt(int64(o), 10) + ")"
}

// Valid reports whether o is Add or Subtract.
func (o Operation) Valid() bool {
	_, ok := operationNames[o]
	return ok
}

// Proto returns the wire value of o.
func (o Operation) Proto() calculatorpb.Operation {
	return calculatorpb.Operation(o)
}

// ParseOperation parses exactly "add" or "subtract".
func ParseOperation(name string) (Operation, error) {
	switch name {
	case operationNames[Add]:
		return Add, nil
	case operationNames[Subtract]:
		return Subtract, nil
	}
	return 0, errors.Wrapf(ErrUnsupportedOperation, "%q, must be one of %s", name, strings.Join(OperationNames(), ", "))
}

// OperationFromProto converts a wire value. Values outside the enum are an error.
func OperationFromProto(op calculatorpb.Operation) (Operation, error) {
	o := Operation(op)
	if !o.Valid() {
		return 0, errors.Wrapf(ErrUnsupportedOperation, "%d", int32(op))
	}
	return o, nil
}
