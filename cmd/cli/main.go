package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/cybermorph/morphcli/internal/client/cli"
	"github.com/cybermorph/morphcli/internal/client/config"
	"github.com/cybermorph/morphcli/internal/logging"
)

func main() {
	cfg := config.LoadConfig()
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	ctx := context.Background()

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(ctx)
}
