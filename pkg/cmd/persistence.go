// Package cmd holds wiring helpers shared by the flowbot binaries.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/flowbotio/flowbot/pkg/persistence"
	"github.com/flowbotio/flowbot/pkg/persistence/file"
	"github.com/flowbotio/flowbot/pkg/persistence/postgres"
	"github.com/flowbotio/flowbot/pkg/persistence/redis"
)

// NewPersistence builds a persistence backend from a connection URL. The
// scheme selects the backend: file://, postgres:// or redis://.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (persistence.Persistence, error) {
	switch provider(databaseURL) {
	case "postgres", "postgresql":
		return postgres.NewPersistence(ctx, logger, databaseURL)
	case "redis", "rediss":
		return redis.NewPersistence(ctx, databaseURL)
	case "file":
		return file.NewPersistence(databaseURL)
	default:
		return nil, fmt.Errorf("unsupported persistence provider in %q", databaseURL)
	}
}

func provider(databaseURL string) string {
	scheme, _, found := strings.Cut(databaseURL, "://")
	if !found {
		return "file"
	}

	return scheme
}
