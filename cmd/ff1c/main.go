package main

import (
	"os"

	"github.com/bnema/ff1c/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
