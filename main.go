package main

import (
	"os"

	"github.com/carmarket/carmarket/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
