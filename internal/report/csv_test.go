package report

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/gyeh/denialstats/internal/model"
)

func TestWriteCSV(t *testing.T) {
	rows := []model.SummaryRow{
		{NormalizedCode: "CO45", FinalDescription: "Exceeds fee schedule", DistinctClaims: 42},
		{NormalizedCode: "CO97", FinalDescription: "Included, in allowance", DistinctClaims: 7},
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, rows); err != nil {
		t.Fatal(err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want header + 2 rows", len(records))
	}

	header := strings.Join(records[0], "|")
	if header != "Normalized Code|Final Description|Distinct Claims" {
		t.Errorf("header: got %q", header)
	}
	if records[1][2] != "42" {
		t.Errorf("claims column: got %q", records[1][2])
	}
	// A comma inside a description survives the round trip.
	if records[2][1] != "Included, in allowance" {
		t.Errorf("quoted description: got %q", records[2][1])
	}
}

func TestWriteCSV_EmptySummary(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatal(err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Errorf("empty summary should still carry the header, got %d records", len(records))
	}
}
