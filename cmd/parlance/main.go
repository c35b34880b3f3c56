package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/parlancehq/parlance/internal/cli"
)

func main() {
	// A .env in the working directory is a convenient place for API keys.
	// Not having one is fine.
	_ = godotenv.Load()

	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
