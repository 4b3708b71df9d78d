package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
)

// SessionCleaner prunes expired sessions from the session stores.
type SessionCleaner interface {
	CleanupExpired(ctx context.Context, dryRun bool) (int64, error)
}

// RunCleanExpiredSessions deletes sessions whose refresh window has passed
// and ephemeral sessions older than their TTL. Supports dry-run mode to
// preview the deletion count and both text/JSON output formats.
//
// Requirements: Database must be migrated and accessible.
func RunCleanExpiredSessions(
	ctx context.Context,
	sessions SessionCleaner,
	logger *slog.Logger,
	w io.Writer,
	dryRun bool,
	format string,
) error {
	logger.Info("cleaning expired sessions", slog.Bool("dry_run", dryRun))

	count, err := sessions.CleanupExpired(ctx, dryRun)
	if err != nil {
		return fmt.Errorf("failed to cleanup expired sessions: %w", err)
	}

	if format == "json" {
		outputCleanSessionsJSON(w, count, dryRun)
	} else {
		outputCleanSessionsText(w, count, dryRun)
	}

	logger.Info("cleanup completed", slog.Int64("count", count), slog.Bool("dry_run", dryRun))

	return nil
}

// outputCleanSessionsText outputs the result in human-readable text format.
func outputCleanSessionsText(w io.Writer, count int64, dryRun bool) {
	if dryRun {
		fmt.Fprintf(w, "Dry-run mode: Would delete %d expired session(s)\n", count)
	} else {
		fmt.Fprintf(w, "Successfully deleted %d expired session(s)\n", count)
	}
}

// outputCleanSessionsJSON outputs the result in JSON format for machine consumption.
func outputCleanSessionsJSON(w io.Writer, count int64, dryRun bool) {
	result := map[string]interface{}{
		"count":   count,
		"dry_run": dryRun,
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintf(w, "failed to marshal JSON: %v\n", err)
		return
	}

	fmt.Fprintln(w, string(jsonBytes))
}
