package main

import (
	"fmt"
	"os"

	"github.com/Calder-Labs/gitrun/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "gitrun:", err)
		os.Exit(1)
	}
}
