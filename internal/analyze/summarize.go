package analyze

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/gyeh/denialstats/internal/model"
	embedsql "github.com/gyeh/denialstats/internal/sql"
)

// SummarizeResult holds metrics from the aggregation phase.
type SummarizeResult struct {
	Groups         int64
	DistinctVisits int64
	Duration       time.Duration
}

// Summarize executes the INSERT..SELECT that groups staged rows by
// (normalized code, final description) with a distinct-visit count.
func Summarize(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, sessionID uuid.UUID) (*SummarizeResult, error) {
	start := time.Now()

	tag, err := pool.Exec(ctx, embedsql.SummarizeSession, sessionID)
	if err != nil {
		return nil, fmt.Errorf("summarize session: %w", err)
	}
	groups := tag.RowsAffected()

	var distinctVisits int64
	if err := pool.QueryRow(ctx, embedsql.DistinctVisits, sessionID).Scan(&distinctVisits); err != nil {
		return nil, fmt.Errorf("count distinct visits: %w", err)
	}

	dur := time.Since(start)
	log.Info().
		Int64("groups", groups).
		Int64("distinct_visits", distinctVisits).
		Str("duration", dur.String()).
		Msg("summarize complete")

	return &SummarizeResult{
		Groups:         groups,
		DistinctVisits: distinctVisits,
		Duration:       dur,
	}, nil
}

// SummaryRows returns the session's aggregated groups, sorted by
// distinct claims descending.
func SummaryRows(ctx context.Context, pool *pgxpool.Pool, sessionID uuid.UUID) ([]model.SummaryRow, error) {
	rows, err := pool.Query(ctx, embedsql.SelectSummary, sessionID)
	if err != nil {
		return nil, fmt.Errorf("select summary: %w", err)
	}
	defer rows.Close()

	var out []model.SummaryRow
	for rows.Next() {
		var r model.SummaryRow
		if err := rows.Scan(&r.NormalizedCode, &r.FinalDescription, &r.DistinctClaims); err != nil {
			return nil, fmt.Errorf("scan summary row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate summary rows: %w", err)
	}
	return out, nil
}
