// Command storyreeld runs the storyreel daemon: the workflow manager plus
// the HTTP API, processing queued jobs until terminated.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"storyreel/internal/config"
	"storyreel/internal/daemonrun"
)

func main() {
	var configPath string
	var logLevel string
	flag.StringVar(&configPath, "config", "", "Configuration file path")
	flag.StringVar(&logLevel, "log-level", "", "Override the configured log level")
	flag.Parse()

	// API keys may live in a .env next to the working directory; load it
	// before the config reads the environment.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "warn: load .env: %v\n", err)
	}

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	if err := daemonrun.Run(context.Background(), cfg, daemonrun.Options{LogLevel: logLevel}); err != nil {
		log.Fatalf("storyreeld: %v", err)
	}
}
