package analyze

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/gyeh/denialstats/internal/db"
	"github.com/gyeh/denialstats/internal/model"
)

const stageChanDepth = 256

// StageResult holds metrics from the staging phase.
type StageResult struct {
	RowsStaged int64
	Duration   time.Duration
}

// Stage COPY-loads the cleaned rows into the staging table via a
// channel-backed CopyFromSource.
func Stage(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, rows []model.CleanedRow) (*StageResult, error) {
	start := time.Now()

	ch := make(chan *model.CleanedRow, stageChanDepth)
	errCh := make(chan error, 1)

	go func() {
		defer close(ch)
		for i := range rows {
			select {
			case ch <- &rows[i]:
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			}
		}
		errCh <- nil
	}()

	source := db.NewChannelSource(ch)
	rowsStaged, err := pool.CopyFrom(ctx,
		pgx.Identifier{"denial", "stage_denial_rows"},
		model.StagingColumns(),
		source,
	)

	prodErr := <-errCh
	if prodErr != nil {
		return nil, fmt.Errorf("stage producer: %w", prodErr)
	}
	if err != nil {
		return nil, fmt.Errorf("stage copy: %w", err)
	}

	dur := time.Since(start)
	log.Info().
		Int64("rows_staged", rowsStaged).
		Str("duration", dur.String()).
		Msg("staging complete")

	return &StageResult{RowsStaged: rowsStaged, Duration: dur}, nil
}
