// Package main provides a CLI for running and validating agent flows,
// useful for local development and debugging without the API server.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/go-playground/validator/v10"
	cli "github.com/urfave/cli/v3"

	"github.com/flowbotio/flowbot/pkg/cmd"
	"github.com/flowbotio/flowbot/pkg/engine"
	"github.com/flowbotio/flowbot/pkg/log"
	"github.com/flowbotio/flowbot/pkg/models"
	"github.com/flowbotio/flowbot/pkg/registry"
)

func main() {
	logger := log.WithModule("runner")

	command := &cli.Command{
		Name:                  "flowbot-runner",
		Usage:                 "Run and validate agent bot flows from the command line",
		EnableShellCompletion: true,
		Commands: []*cli.Command{
			runCommand(logger),
			validateCommand(logger),
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		logger.Error("Failed to run flowbot-runner", "error", err)
		os.Exit(1)
	}
}

func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "agent-id",
			Usage:    "Agent whose flow should be used",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "database-url",
			Usage:    "Persistence URL (file://, postgres:// or redis://)",
			Required: true,
			Sources:  cli.EnvVars("DATABASE_URL"),
		},
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "Log level (debug, info, warn, error)",
			Value:   "info",
			Sources: cli.EnvVars("LOG_LEVEL"),
		},
	}
}

func runCommand(logger *slog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Execute an agent's bot flow once and print the result",
		Flags: append(commonFlags(),
			&cli.StringFlag{
				Name:    "organization-id",
				Usage:   "Organization the agent belongs to",
				Value:   "local",
				Sources: cli.EnvVars("ORGANIZATION_ID"),
			},
			&cli.StringFlag{
				Name:  "input",
				Usage: "Trigger payload as a JSON object",
				Value: "{}",
			},
			&cli.StringFlag{
				Name:  "trigger-node",
				Usage: "Explicit trigger node ID (default: first trigger in the flow)",
			},
		),
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			var input map[string]any
			if err := json.Unmarshal([]byte(command.String("input")), &input); err != nil {
				return fmt.Errorf("invalid input payload: %w", err)
			}

			store, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
			if err != nil {
				return err
			}

			defer func() {
				if err := store.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			runner, err := engine.New(engine.Config{
				Loader:    store,
				Lifecycle: store,
				Registry:  registry.NewWithDefaults(log.WithModule("registry")),
				Logger:    log.WithModule("engine"),
			})
			if err != nil {
				return err
			}

			result := runner.Execute(ctx, engine.Request{
				AgentID:        command.String("agent-id"),
				OrganizationID: command.String("organization-id"),
				Input:          input,
				TriggeredBy:    "cli",
				TriggerNodeID:  command.String("trigger-node"),
			})

			if err := printJSON(result); err != nil {
				return err
			}

			if !result.Success {
				os.Exit(1)
			}

			return nil
		},
	}
}

func validateCommand(logger *slog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "validate",
		Usage: "Validate an agent's persisted flow and print the findings",
		Flags: commonFlags(),
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			store, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
			if err != nil {
				return err
			}

			defer func() {
				if err := store.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			flow, err := store.LoadFlow(ctx, command.String("agent-id"))
			if err != nil {
				return fmt.Errorf("failed to load flow: %w", err)
			}

			reg := registry.NewWithDefaults(log.WithModule("registry"))
			validationErrors := reg.ValidateFlow(validator.New(validator.WithRequiredStructEnabled()), flow)

			report := struct {
				Valid  bool                     `json:"valid"`
				Errors []models.ValidationError `json:"errors,omitempty"`
			}{
				Valid:  len(validationErrors) == 0,
				Errors: validationErrors,
			}

			if err := printJSON(report); err != nil {
				return err
			}

			if !report.Valid {
				os.Exit(1)
			}

			return nil
		},
	}
}

func printJSON(value any) error {
	encoded, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}

	fmt.Println(string(encoded))

	return nil
}
