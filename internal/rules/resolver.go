package rules

import (
	"strings"

	"github.com/gyeh/denialstats/internal/model"
)

// BuildDescriptionIndex builds the canonical code→description map from
// cleaned rows, restricted to CO-prefixed cleaned codes. The first
// occurrence of a code wins; codes are already uppercased by cleaning.
func BuildDescriptionIndex(rows []model.CleanedRow) map[string]string {
	idx := make(map[string]string)
	for i := range rows {
		code := rows[i].CleanedCode
		if !strings.HasPrefix(code, "CO") {
			continue
		}
		if _, ok := idx[code]; !ok {
			idx[code] = rows[i].CleanedDescription
		}
	}
	return idx
}

// ResolveDescriptions fills each row's FinalDescription: the canonical
// description for its normalized code when one exists, else the row's
// own cleaned description.
func ResolveDescriptions(rows []model.CleanedRow) {
	idx := BuildDescriptionIndex(rows)
	for i := range rows {
		if desc, ok := idx[rows[i].NormalizedCode]; ok {
			rows[i].FinalDescription = desc
		} else {
			rows[i].FinalDescription = rows[i].CleanedDescription
		}
	}
}

// Clean derives all four rule fields for every parsed row: selected
// code and description, normalized code, and the resolved final
// description.
func (rs *RuleSet) Clean(rows []model.DenialRow) []model.CleanedRow {
	cleaned := make([]model.CleanedRow, len(rows))
	for i := range rows {
		code, desc := rs.SelectCode(rows[i].RawCodes, rows[i].RawDescriptions)
		cleaned[i] = model.CleanedRow{
			SourceFile:         rows[i].SourceFile,
			SourceRowNumber:    rows[i].SourceRowNumber,
			VisitID:            rows[i].VisitID,
			RawCodes:           rows[i].RawCodes,
			RawDescriptions:    rows[i].RawDescriptions,
			CleanedCode:        code,
			CleanedDescription: desc,
			NormalizedCode:     NormalizePrefix(code),
		}
	}
	ResolveDescriptions(cleaned)
	return cleaned
}
