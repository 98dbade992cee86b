package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/brandpulse/brandpulse-demo/models/common"
	"github.com/brandpulse/brandpulse-demo/util/cli"
	"github.com/brandpulse/brandpulse-demo/web"
)

func main() {
	help := false
	flag.BoolVar(&help, "help", false, "Print help message")
	flag.Parse()
	if help {
		printHelp()
		os.Exit(0)
	}

	// If the config file can't be read, this panics.
	_context := common.NewContext()
	if err := _context.ConfigError(); err != nil {
		// Keep serving so the form and /health can show what's wrong.
		_context.Logger.Errorf("Configuration problems: %s", err.Error())
	}
	server := web.NewServer(_context)
	if server.Uploader != nil && !server.Uploader.TestConnection(context.Background()) {
		_context.Logger.Warning("Storage check failed. Reference-mode submissions will fail until it passes.")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := server.Run(ctx); err != nil {
		_context.Logger.Errorf("Server exited: %s", err.Error())
		os.Exit(1)
	}
}

func printHelp() {
	message := `
brandpulse_demo serves the player tracking demo: an upload form at /,
a JSON API at /api/v1/submissions, and a health check at /health.

Each submission sends a game video, up to four player images, and up to
two jersey images to the processing API, either directly as multipart
form data (WIRE_MODE=multipart) or by uploading them to S3 first and
sending their URLs (WIRE_MODE=reference).
`
	fmt.Println(message)
	fmt.Println(cli.EnvMessage)
}
