package analyze

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	embedsql "github.com/gyeh/denialstats/internal/sql"
)

// Cleanup deletes the session's staging rows, leaving the summary in place.
func Cleanup(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, sessionID uuid.UUID) error {
	start := time.Now()

	tag, err := pool.Exec(ctx, embedsql.DeleteStaging, sessionID)
	if err != nil {
		return err
	}

	log.Info().
		Int64("rows_deleted", tag.RowsAffected()).
		Dur("duration", time.Since(start)).
		Msg("staging cleanup complete")

	return nil
}

// DeleteSession removes everything a session left behind: staging rows,
// summary rows, and upload records. Used when a new upload replaces the
// active session.
func DeleteSession(ctx context.Context, pool *pgxpool.Pool, sessionID uuid.UUID) error {
	_, err := pool.Exec(ctx, embedsql.DeleteSession, sessionID)
	return err
}
