// Command bookfinder is a terminal front end for the BookFinder API.
package main

import (
	"os"

	"bookfinder/internal/config"
	"bookfinder/internal/logger"
)

func main() {
	config.LoadEnvFiles()
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.PrettyLog)
	defer func() { _ = log.Sync() }()

	a := newCLI(cfg, log, os.Stdin, os.Stdout, os.Stderr)
	if err := a.root().Execute(); err != nil {
		os.Exit(1)
	}
}
