// Package main provides the Flowbot API server.
package main

import (
	"context"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	cli "github.com/urfave/cli/v3"

	"github.com/flowbotio/flowbot/pkg/cmd"
	"github.com/flowbotio/flowbot/pkg/engine"
	"github.com/flowbotio/flowbot/pkg/log"
	"github.com/flowbotio/flowbot/pkg/metrics"
	"github.com/flowbotio/flowbot/pkg/registry"
	"github.com/flowbotio/flowbot/pkg/web"
)

const defaultPort = 9080

func main() {
	logger := log.WithModule("api")

	command := &cli.Command{
		Name:                  "flowbot-api",
		Usage:                 "Run and inspect bot flow executions over HTTP",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Persistence URL (file://, postgres:// or redis://)",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus provider (gochannel or kafka://brokers)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger.InfoContext(ctx, "Initializing Flowbot API")

			store, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
			if err != nil {
				return err
			}

			defer func() {
				if err := store.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			bus, err := cmd.NewEventBus(logger, command.String("event-bus"))
			if err != nil {
				return err
			}

			defer func() {
				if err := bus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			promRegistry := prometheus.NewRegistry()
			executors := registry.NewWithDefaults(log.WithModule("registry"))

			runner, err := engine.New(engine.Config{
				Loader:    store,
				Lifecycle: store,
				Registry:  executors,
				Logger:    log.WithModule("engine"),
				Publisher: bus,
				Metrics:   metrics.New(promRegistry),
			})
			if err != nil {
				return err
			}

			handlers := web.NewAPIHandlers(
				logger,
				runner,
				store,
				executors,
				validator.New(validator.WithRequiredStructEnabled()),
			)

			app := web.NewApp(handlers, promRegistry)

			return app.Listen(":" + strconv.Itoa(command.Int("port")))
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		logger.Error("Failed to run flowbot-api", "error", err)
		os.Exit(1)
	}
}
