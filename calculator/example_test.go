package calculator_test

import (
	"fmt"

	"github.com/xizhibei/go-calc-rpc/calculator"
)

func ExampleCalculate() {
	sum, _ := calculator.Calculate(calculator.Add, 2, 3)
	diff, _ := calculator.Calculate(calculator.Subtract, 2, 3)
	fmt.Println(sum, diff)

	_, err := calculator.Calculate(calculator.Operation(7), 2, 3)
	fmt.Println(err != nil)
	// Output:
	// 5 -1
	// true
}

func ExampleParseOperation() {
	op, err := calculator.ParseOperation("subtract")
	fmt.Println(op, err)
	// Output: subtract <nil>
}
