package export_test

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/moedaspro/conversor/internal/conversor/export"
	"github.com/moedaspro/conversor/internal/entities"
	"github.com/shopspring/decimal"
)

func sampleConversions(t *testing.T) []entities.Conversion {
	t.Helper()

	pair, err := entities.NewRatePair("USD", "BRL")
	if err != nil {
		t.Fatalf("NewRatePair: %v", err)
	}

	return []entities.Conversion{
		{
			ID:          uuid.New(),
			Pair:        pair,
			Amount:      decimal.NewFromInt(100),
			Result:      decimal.RequireFromString("507.00"),
			Rate:        decimal.RequireFromString("5.07"),
			InverseRate: decimal.NewFromInt(1).Div(decimal.RequireFromString("5.07")),
			Source:      "frankfurter",
			Timestamp:   time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC),
			Notes:       "vacation budget",
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, sampleConversions(t)); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("reading back csv: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected header plus 1 record, got %d rows", len(records))
	}
	if records[0][0] != "id" || records[0][8] != "timestamp" {
		t.Fatalf("unexpected header: %v", records[0])
	}

	row := records[1]
	if row[1] != "USD" || row[2] != "BRL" {
		t.Fatalf("unexpected pair columns: %v", row)
	}
	if row[4] != "507.00" {
		t.Fatalf("expected fixed 2-decimal result, got %q", row[4])
	}
	if _, err := time.Parse(time.RFC3339, row[8]); err != nil {
		t.Fatalf("timestamp not RFC3339: %v", err)
	}
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, nil); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected header only, got %d lines", len(lines))
	}
}

func TestWriteJSON(t *testing.T) {
	conversions := sampleConversions(t)

	var buf bytes.Buffer
	if err := export.WriteJSON(&buf, conversions); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	var decoded []entities.Conversion
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decoding back: %v", err)
	}
	if len(decoded) != 1 {
		t.Fatalf("expected 1 conversion, got %d", len(decoded))
	}
	if decoded[0].ID != conversions[0].ID {
		t.Fatalf("expected id %s, got %s", conversions[0].ID, decoded[0].ID)
	}
	if !decoded[0].Result.Equal(conversions[0].Result) {
		t.Fatalf("expected result %s, got %s", conversions[0].Result, decoded[0].Result)
	}
}

func TestWriteJSONNilSliceEncodesEmptyArray(t *testing.T) {
	var buf bytes.Buffer
	if err := export.WriteJSON(&buf, nil); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != "[]" {
		t.Fatalf("expected empty array, got %q", got)
	}
}
