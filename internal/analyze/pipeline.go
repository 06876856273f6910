package analyze

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/gyeh/denialstats/internal/model"
	"github.com/gyeh/denialstats/internal/rules"
)

// PhaseError wraps an error with the pipeline phase where it occurred.
type PhaseError struct {
	Phase string
	Err   error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Phase, e.Err)
}

func (e *PhaseError) Unwrap() error {
	return e.Err
}

// Options control a single analysis run.
type Options struct {
	// Inputs are the uploaded workbooks, merged in order.
	Inputs []Input
	// KeepStaging skips the staging cleanup after summarize.
	KeepStaging bool
}

// Run executes the full analysis pipeline over the uploaded workbooks:
// preflight → clean → stage → summarize → cleanup.
func Run(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, rs *rules.RuleSet, opts Options) (*model.AnalysisSummary, error) {
	totalStart := time.Now()

	// Phase 1: Preflight
	log.Info().Int("workbooks", len(opts.Inputs)).Msg("starting preflight")
	pf, err := Preflight(ctx, pool, log, opts.Inputs)
	if err != nil {
		return nil, &PhaseError{Phase: "preflight", Err: err}
	}

	// Phase 2: Clean — derive the four rule fields for every merged row.
	parseStart := time.Now()
	merged := make([]model.DenialRow, 0, pf.RowsRead)
	for _, t := range pf.Tables {
		merged = append(merged, t.Rows...)
	}
	cleaned := rs.Clean(merged)
	for i := range cleaned {
		cleaned[i].SessionID = pf.SessionID
	}
	parseDur := time.Since(parseStart)
	log.Info().
		Int("rows", len(cleaned)).
		Dur("duration", parseDur).
		Msg("cleaning complete")

	// Phase 3: Stage
	stageResult, err := Stage(ctx, pool, log, cleaned)
	if err != nil {
		return nil, &PhaseError{Phase: "stage", Err: err}
	}

	// Phase 4: Summarize
	sumResult, err := Summarize(ctx, pool, log, pf.SessionID)
	if err != nil {
		return nil, &PhaseError{Phase: "summarize", Err: err}
	}

	// Phase 5: Cleanup staging
	if !opts.KeepStaging {
		if err := Cleanup(ctx, pool, log, pf.SessionID); err != nil {
			log.Warn().Err(err).Msg("staging cleanup failed (non-fatal)")
		}
	}

	summary := &model.AnalysisSummary{
		SessionID:         pf.SessionID.String(),
		Uploads:           pf.Uploads,
		RowsRead:          pf.RowsRead,
		RowsStaged:        stageResult.RowsStaged,
		Groups:            sumResult.Groups,
		DistinctVisits:    sumResult.DistinctVisits,
		CompletedAt:       time.Now().UTC(),
		DurationParse:     parseDur,
		DurationCopy:      stageResult.Duration,
		DurationSummarize: sumResult.Duration,
		DurationTotal:     time.Since(totalStart),
	}

	log.Info().
		Str("session_id", summary.SessionID).
		Int64("rows_read", summary.RowsRead).
		Int64("rows_staged", summary.RowsStaged).
		Int64("groups", summary.Groups).
		Int64("distinct_visits", summary.DistinctVisits).
		Str("total_duration", summary.DurationTotal.String()).
		Msg("analysis pipeline complete")

	return summary, nil
}
