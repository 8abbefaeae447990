package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/andrebq/authbox/cmd/authbox/serve"
	"github.com/andrebq/authbox/cmd/authbox/users"
	"github.com/andrebq/authbox/internal/cmdflags"
	"github.com/andrebq/authbox/internal/logutil"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func main() {
	logLevel := "info"
	app := &cli.App{
		Name:  "authbox",
		Usage: "Basic and session authentication for small HTTP APIs",
		Flags: []cli.Flag{
			cmdflags.LogLevel(&logLevel),
		},
		Before: func(ctx *cli.Context) error {
			level, err := zerolog.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			log.Logger = logutil.New(os.Stderr, level)
			ctx.Context = logutil.WithLogger(ctx.Context, log.Logger)
			return nil
		},
		Commands: []*cli.Command{
			serve.Cmd(),
			users.Cmd(),
		},
	}
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	err := app.RunContext(ctx, os.Args)
	if err != nil {
		log.Error().Err(err).Msg("Application failed")
		os.Exit(1)
	}
}
