// Package cmd provides shared factory helpers for the automation binaries.
package cmd

import (
	"context"
	"log/slog"
	"strings"

	"github.com/talentlane/automation/pkg/persistence"
	"github.com/talentlane/automation/pkg/persistence/file"
	"github.com/talentlane/automation/pkg/persistence/postgresql"
)

// NewPersistence builds a persistence layer from a database URL. The URL
// scheme selects the backend: postgres for production, anything else falls
// back to file storage.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (persistence.Persistence, error) {
	switch parseProvider(databaseURL) {
	case "postgres", "postgresql":
		return postgresql.NewPersistence(ctx, logger, databaseURL)
	default:
		return file.NewPersistence(databaseURL), nil
	}
}

func parseProvider(databaseURL string) string {
	provider, _, found := strings.Cut(databaseURL, "://")
	if !found {
		return "file"
	}

	return provider
}
