package main

import (
	"os"

	"github.com/jakartamandarin/jm_finance/cmd/jmctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
