package analyze

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/gyeh/denialstats/internal/model"
	embedsql "github.com/gyeh/denialstats/internal/sql"
	"github.com/gyeh/denialstats/internal/xlsxread"
)

// Input is one uploaded workbook held in memory. Exports for a single
// analyst session are small enough that buffering them whole is fine.
type Input struct {
	Name string
	Data []byte
}

// InputFromFile reads a workbook from disk into an Input.
func InputFromFile(path string) (Input, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Input{}, fmt.Errorf("read workbook: %w", err)
	}
	return Input{Name: filepath.Base(path), Data: data}, nil
}

// PreflightResult holds all context resolved during the preflight phase.
type PreflightResult struct {
	// SessionID is a freshly generated UUIDv4 identifying this analysis
	// run, used to tag staged rows and the resulting summary.
	SessionID uuid.UUID
	// Uploads describes each registered workbook.
	Uploads []model.UploadInfo
	// Tables are the parsed workbooks in upload order.
	Tables []*xlsxread.Table
	// RowsRead is the total row count across all workbooks.
	RowsRead int64
}

// Preflight hashes and parses every uploaded workbook, validates the
// required columns, and registers the uploads under a new session.
func Preflight(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, inputs []Input) (*PreflightResult, error) {
	start := time.Now()

	if len(inputs) != 2 {
		return nil, fmt.Errorf("expected 2 workbooks, got %d", len(inputs))
	}

	pf := &PreflightResult{SessionID: uuid.New()}
	for _, in := range inputs {
		sha := fmt.Sprintf("%x", sha256.Sum256(in.Data))

		table, err := xlsxread.Read(bytes.NewReader(in.Data), in.Name)
		if err != nil {
			return nil, err
		}

		info := model.UploadInfo{
			FileName:  in.Name,
			SHA256:    sha,
			SizeBytes: int64(len(in.Data)),
			RowsRead:  int64(len(table.Rows)),
		}

		var uploadID int64
		err = pool.QueryRow(ctx, embedsql.RegisterUpload,
			pf.SessionID, info.FileName, info.SHA256, info.SizeBytes, info.RowsRead,
		).Scan(&uploadID)
		if err != nil {
			return nil, fmt.Errorf("register upload %s: %w", in.Name, err)
		}

		pf.Uploads = append(pf.Uploads, info)
		pf.Tables = append(pf.Tables, table)
		pf.RowsRead += info.RowsRead

		log.Info().
			Str("file", info.FileName).
			Str("sha256", info.SHA256).
			Int64("rows", info.RowsRead).
			Int64("upload_id", uploadID).
			Msg("workbook registered")
	}

	log.Info().
		Str("session_id", pf.SessionID.String()).
		Int64("rows", pf.RowsRead).
		Dur("duration", time.Since(start)).
		Msg("preflight complete")

	return pf, nil
}
