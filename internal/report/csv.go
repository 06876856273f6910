package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/gyeh/denialstats/internal/model"
)

// SummaryFileName is the download name of the exported summary.
const SummaryFileName = "cleaned_denial_summary.csv"

// WriteCSV writes the summary table with its three-column header.
func WriteCSV(w io.Writer, rows []model.SummaryRow) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"Normalized Code", "Final Description", "Distinct Claims"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range rows {
		record := []string{r.NormalizedCode, r.FinalDescription, strconv.FormatInt(r.DistinctClaims, 10)}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
