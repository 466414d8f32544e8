package main

import (
	"os"

	"github.com/haloguard/haloguard-cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
