package main

import (
	"fmt"
	"os"

	"github.com/xizhibei/go-calc-rpc/cli"
)

func main() {
	if err := (cli.Serve{}).Command().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "calc-server: %v\n", err)
		os.Exit(1)
	}
}
