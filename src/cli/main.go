package main

import (
	"os"

	"github.com/panekj/setup-buildx-action/src/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
