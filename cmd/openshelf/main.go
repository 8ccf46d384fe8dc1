package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/openshelf/openshelf/app"
	"github.com/openshelf/openshelf/config"
)

func main() {
	_ = godotenv.Load() //nolint:errcheck
	cfg := config.NewConfig()

	if err := app.Run(cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
