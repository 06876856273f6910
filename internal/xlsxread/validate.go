package xlsxread

import (
	"fmt"
	"strings"
)

// Column headers expected at the header row of each export.
const (
	ColReasonCodes            = "Reason Codes"
	ColReasonCodeDescriptions = "Reason Code Descriptions"
	ColVisit                  = "Visit #"
)

// RequiredColumns lists the headers every workbook must carry.
func RequiredColumns() []string {
	return []string{ColReasonCodes, ColReasonCodeDescriptions, ColVisit}
}

// ValidateHeader checks the header row for all required columns and
// returns a canonical-name→index map. Matching ignores case and
// surrounding whitespace.
func ValidateHeader(header []string) (map[string]int, error) {
	byName := make(map[string]int, len(header))
	for i, h := range header {
		byName[strings.ToLower(strings.TrimSpace(h))] = i
	}

	cols := make(map[string]int, len(RequiredColumns()))
	var missing []string
	for _, want := range RequiredColumns() {
		idx, ok := byName[strings.ToLower(want)]
		if !ok {
			missing = append(missing, want)
			continue
		}
		cols[want] = idx
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return cols, nil
}
