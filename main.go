package main

import (
	"os"

	"github.com/go-i2p/go-beam/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
