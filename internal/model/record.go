package model

import "github.com/google/uuid"

// DenialRow is one record as parsed from an uploaded workbook, before
// any cleaning. Codes and descriptions are the raw delimited strings.
type DenialRow struct {
	SourceFile      string
	SourceRowNumber int64

	RawCodes        string
	RawDescriptions string
	VisitID         string
}

// CleanedRow is the staged, DB-ready representation of a denial record:
// the raw row plus the four derived fields produced by the cleaning rules.
type CleanedRow struct {
	SessionID uuid.UUID

	SourceFile      string
	SourceRowNumber int64
	VisitID         string

	RawCodes        string
	RawDescriptions string

	CleanedCode        string
	CleanedDescription string
	NormalizedCode     string
	FinalDescription   string
}

// StagingColumns returns the ordered column names for COPY into
// denial.stage_denial_rows.
func StagingColumns() []string {
	return []string{
		"session_id",
		"source_file",
		"source_row_number",
		"visit_id",
		"raw_codes",
		"raw_descriptions",
		"cleaned_code",
		"cleaned_description",
		"normalized_code",
		"final_description",
	}
}

// CopyValues returns the row values in the same order as StagingColumns(),
// suitable for pgx CopyFromSource.
func (r *CleanedRow) CopyValues() []any {
	return []any{
		r.SessionID,
		r.SourceFile,
		r.SourceRowNumber,
		r.VisitID,
		r.RawCodes,
		r.RawDescriptions,
		r.CleanedCode,
		r.CleanedDescription,
		r.NormalizedCode,
		r.FinalDescription,
	}
}
