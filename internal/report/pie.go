package report

import (
	"fmt"
	"io"

	chart "github.com/wcharczuk/go-chart/v2"

	"github.com/gyeh/denialstats/internal/model"
)

// DefaultTopN is the number of pie slices shown before the remainder
// collapses into "Others".
const DefaultTopN = 10

const (
	// OthersLabel names the aggregated remainder slice.
	OthersLabel = "Others"
	// OthersDescription is the remainder slice's description.
	OthersDescription = "All remaining reasons"
)

// TopWithOthers keeps the first topN summary rows (already sorted by
// distinct claims descending) and folds the rest into a single Others
// row. The Others row appears only when rows beyond topN carry claims.
func TopWithOthers(rows []model.SummaryRow, topN int) []model.SummaryRow {
	if topN <= 0 {
		topN = DefaultTopN
	}
	if len(rows) <= topN {
		return rows
	}

	var rest int64
	for _, r := range rows[topN:] {
		rest += r.DistinctClaims
	}

	out := make([]model.SummaryRow, 0, topN+1)
	out = append(out, rows[:topN]...)
	if rest > 0 {
		out = append(out, model.SummaryRow{
			NormalizedCode:   OthersLabel,
			FinalDescription: OthersDescription,
			DistinctClaims:   rest,
		})
	}
	return out
}

// RenderPie renders the top-N-plus-Others pie chart as a PNG.
func RenderPie(w io.Writer, rows []model.SummaryRow, topN int) error {
	slices := TopWithOthers(rows, topN)
	if len(slices) == 0 {
		return fmt.Errorf("no summary rows to chart")
	}

	values := make([]chart.Value, len(slices))
	for i, s := range slices {
		values[i] = chart.Value{
			Label: fmt.Sprintf("%s (%d)", s.NormalizedCode, s.DistinctClaims),
			Value: float64(s.DistinctClaims),
		}
	}

	pie := chart.PieChart{
		Title:  "Top Denial Reasons by Distinct Claims",
		Width:  800,
		Height: 800,
		Values: values,
	}
	if err := pie.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render pie chart: %w", err)
	}
	return nil
}
