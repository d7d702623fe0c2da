package main

import (
	"os"

	"github.com/arushs/Formly-sub001/internal/adapters/driving/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
