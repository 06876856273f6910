package server

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/gyeh/denialstats/internal/analyze"
	"github.com/gyeh/denialstats/internal/model"
	"github.com/gyeh/denialstats/internal/rules"
)

// ErrNoSession is returned when no analysis has been run yet.
var ErrNoSession = errors.New("no active analysis session")

// Service is the dashboard's view of the analysis pipeline. Handlers
// depend on this interface so tests can swap in a fake.
type Service interface {
	// Analyze runs the pipeline over two uploaded workbooks and makes
	// the result the active session, replacing any previous one.
	Analyze(ctx context.Context, inputs []analyze.Input) (*model.AnalysisSummary, error)
	// Session returns the active session's metrics.
	Session(ctx context.Context) (*model.AnalysisSummary, error)
	// Summary returns the active session's aggregated table.
	Summary(ctx context.Context) ([]model.SummaryRow, error)
}

// AnalysisService runs analyses against Postgres and tracks the single
// active session. One analyst at a time: runs are serialized.
type AnalysisService struct {
	pool        *pgxpool.Pool
	log         zerolog.Logger
	rules       *rules.RuleSet
	keepStaging bool

	mu        sync.Mutex
	sessionID uuid.UUID
	current   *model.AnalysisSummary
}

// NewAnalysisService wires the pipeline dependencies.
func NewAnalysisService(pool *pgxpool.Pool, log zerolog.Logger, rs *rules.RuleSet, keepStaging bool) *AnalysisService {
	return &AnalysisService{pool: pool, log: log, rules: rs, keepStaging: keepStaging}
}

func (s *AnalysisService) Analyze(ctx context.Context, inputs []analyze.Input) (*model.AnalysisSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	summary, err := analyze.Run(ctx, s.pool, s.log, s.rules, analyze.Options{
		Inputs:      inputs,
		KeepStaging: s.keepStaging,
	})
	if err != nil {
		return nil, err
	}

	newID, err := uuid.Parse(summary.SessionID)
	if err != nil {
		return nil, err
	}

	// Drop the replaced session's rows; failure leaves orphans behind
	// but the new session is already live.
	if s.current != nil {
		if err := analyze.DeleteSession(ctx, s.pool, s.sessionID); err != nil {
			s.log.Warn().Err(err).Str("session_id", s.sessionID.String()).
				Msg("failed to delete replaced session")
		}
	}

	s.sessionID = newID
	s.current = summary
	return summary, nil
}

func (s *AnalysisService) Session(ctx context.Context) (*model.AnalysisSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil, ErrNoSession
	}
	return s.current, nil
}

func (s *AnalysisService) Summary(ctx context.Context) ([]model.SummaryRow, error) {
	s.mu.Lock()
	sessionID := s.sessionID
	active := s.current != nil
	s.mu.Unlock()

	if !active {
		return nil, ErrNoSession
	}
	return analyze.SummaryRows(ctx, s.pool, sessionID)
}

var _ Service = (*AnalysisService)(nil)
