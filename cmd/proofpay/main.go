package main

import (
	"os"

	"github.com/proofpay/proofpay-ibc/cmd/proofpay/cmd"
)

func main() {
	if err := cmd.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
