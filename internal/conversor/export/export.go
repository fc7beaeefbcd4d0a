// Package export renders conversion history for download.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"time"

	"github.com/moedaspro/conversor/internal/entities"
	"github.com/pkg/errors"
)

var csvHeader = []string{
	"id", "origin", "destination", "amount", "result",
	"rate", "inverse_rate", "source", "timestamp", "notes",
}

// WriteCSV renders the conversions as CSV with a header row.
func WriteCSV(w io.Writer, conversions []entities.Conversion) error {
	const op = "export.WriteCSV"

	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return errors.Wrap(err, op)
	}

	for _, c := range conversions {
		record := []string{
			c.ID.String(),
			string(c.Pair.Origin),
			string(c.Pair.Destination),
			c.Amount.String(),
			c.Result.StringFixed(2),
			c.Rate.String(),
			c.InverseRate.String(),
			c.Source,
			c.Timestamp.Format(time.RFC3339),
			c.Notes,
		}
		if err := cw.Write(record); err != nil {
			return errors.Wrap(err, op)
		}
	}

	cw.Flush()

	return errors.Wrap(cw.Error(), op)
}

// WriteJSON renders the conversions as an indented JSON array.
func WriteJSON(w io.Writer, conversions []entities.Conversion) error {
	const op = "export.WriteJSON"

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if conversions == nil {
		conversions = []entities.Conversion{}
	}

	return errors.Wrap(enc.Encode(conversions), op)
}
