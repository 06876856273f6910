package rules

import (
	"testing"

	"github.com/gyeh/denialstats/internal/model"
)

func TestBuildDescriptionIndex_FirstOccurrenceWins(t *testing.T) {
	rows := []model.CleanedRow{
		{CleanedCode: "CO50", CleanedDescription: "Non-covered service"},
		{CleanedCode: "CO50", CleanedDescription: "A later variant"},
		{CleanedCode: "PR45", CleanedDescription: "Patient responsibility"},
		{CleanedCode: "CO97", CleanedDescription: "Included in allowance"},
	}
	idx := BuildDescriptionIndex(rows)

	if got := idx["CO50"]; got != "Non-covered service" {
		t.Errorf("CO50: got %q, want first occurrence", got)
	}
	if got := idx["CO97"]; got != "Included in allowance" {
		t.Errorf("CO97: got %q", got)
	}
	if _, ok := idx["PR45"]; ok {
		t.Error("non-CO cleaned code should not enter the index")
	}
}

func TestResolveDescriptions_CanonicalWins(t *testing.T) {
	rows := []model.CleanedRow{
		{CleanedCode: "CO97", CleanedDescription: "Included in allowance", NormalizedCode: "CO97"},
		{CleanedCode: "OA97", CleanedDescription: "Other adjustment variant", NormalizedCode: "CO97"},
		{CleanedCode: "XX12", CleanedDescription: "Unmapped group", NormalizedCode: "XX12"},
	}
	ResolveDescriptions(rows)

	if rows[0].FinalDescription != "Included in allowance" {
		t.Errorf("row 0: got %q", rows[0].FinalDescription)
	}
	// The OA97 row normalizes to CO97, so it inherits the canonical
	// description seen on the CO97 row.
	if rows[1].FinalDescription != "Included in allowance" {
		t.Errorf("row 1: got %q, want canonical CO97 description", rows[1].FinalDescription)
	}
	if rows[2].FinalDescription != "Unmapped group" {
		t.Errorf("row 2: got %q, want own cleaned description", rows[2].FinalDescription)
	}
}

func TestClean_EndToEnd(t *testing.T) {
	rs := Default()
	rows := []model.DenialRow{
		{
			SourceFile:      "a.xlsx",
			SourceRowNumber: 3,
			RawCodes:        "OA97",
			RawDescriptions: "Other adjustment variant",
			VisitID:         "V1",
		},
		{
			SourceFile:      "a.xlsx",
			SourceRowNumber: 4,
			RawCodes:        "CO97,PR1",
			RawDescriptions: "Included in allowance,Deductible",
			VisitID:         "V2",
		},
		{
			SourceFile:      "b.xlsx",
			SourceRowNumber: 3,
			RawCodes:        "",
			RawDescriptions: "",
			VisitID:         "V3",
		},
	}

	cleaned := rs.Clean(rows)
	if len(cleaned) != 3 {
		t.Fatalf("got %d cleaned rows", len(cleaned))
	}

	if cleaned[0].NormalizedCode != "CO97" {
		t.Errorf("row 0 normalized: got %q", cleaned[0].NormalizedCode)
	}
	if cleaned[1].NormalizedCode != "CO97" {
		t.Errorf("row 1 normalized: got %q", cleaned[1].NormalizedCode)
	}
	// Both rows collapse to the canonical CO97 description taken from
	// the cleaned CO97 occurrence.
	if cleaned[0].FinalDescription != "Included in allowance" {
		t.Errorf("row 0 final desc: got %q", cleaned[0].FinalDescription)
	}
	if cleaned[1].FinalDescription != "Included in allowance" {
		t.Errorf("row 1 final desc: got %q", cleaned[1].FinalDescription)
	}

	if cleaned[2].CleanedCode != Missing || cleaned[2].NormalizedCode != Missing {
		t.Errorf("empty row: got code %q normalized %q", cleaned[2].CleanedCode, cleaned[2].NormalizedCode)
	}
	if cleaned[2].VisitID != "V3" {
		t.Errorf("visit id not carried through: %q", cleaned[2].VisitID)
	}
}
