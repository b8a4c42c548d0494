package main

import (
	"os"

	"github.com/avivsinai/rustlator/cmd/rl/root"
)

func main() {
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
