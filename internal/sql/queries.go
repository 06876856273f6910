package sql

import "embed"

// Migrations holds the schema files applied by db.ApplyMigrations.
//
//go:embed migrations
var Migrations embed.FS

//go:embed queries/register_upload.sql
var RegisterUpload string

//go:embed queries/summarize_session.sql
var SummarizeSession string

//go:embed queries/select_summary.sql
var SelectSummary string

//go:embed queries/distinct_visits.sql
var DistinctVisits string

//go:embed queries/delete_session.sql
var DeleteSession string

//go:embed queries/delete_staging.sql
var DeleteStaging string
