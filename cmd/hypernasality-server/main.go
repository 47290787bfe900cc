package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"hypernasality-server-go/internal/bootstrap"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML configuration file (defaults apply when empty)")
	flag.Parse()

	if err := bootstrap.Run(context.Background(), *configPath); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "hypernasality-server failed: %v\n", err)
		os.Exit(1)
	}
}
