package model

import "time"

// SummaryRow is one aggregated group of the final report: a normalized
// denial code, its resolved description, and the distinct claim count.
type SummaryRow struct {
	NormalizedCode   string `json:"normalized_code"`
	FinalDescription string `json:"final_description"`
	DistinctClaims   int64  `json:"distinct_claims"`
}

// UploadInfo describes one registered workbook within an analysis session.
type UploadInfo struct {
	FileName  string `json:"file_name"`
	SHA256    string `json:"sha256"`
	SizeBytes int64  `json:"size_bytes"`
	RowsRead  int64  `json:"rows_read"`
}

// AnalysisSummary captures metrics from a single analysis run.
type AnalysisSummary struct {
	SessionID string       `json:"session_id"`
	Uploads   []UploadInfo `json:"uploads"`

	RowsRead       int64 `json:"rows_read"`
	RowsStaged     int64 `json:"rows_staged"`
	Groups         int64 `json:"groups"`
	DistinctVisits int64 `json:"distinct_visits"`

	CompletedAt time.Time `json:"completed_at"`

	DurationParse     time.Duration `json:"-"`
	DurationCopy      time.Duration `json:"-"`
	DurationSummarize time.Duration `json:"-"`
	DurationTotal     time.Duration `json:"-"`
}
