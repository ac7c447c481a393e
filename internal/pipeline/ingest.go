package pipeline

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"ridepulse/internal/models"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Ingest parses delimited text into a raw string-typed dataframe,
// normalizes header names, and verifies the required columns are all
// present. Every cell stays a string here; type coercion belongs to
// Clean so that malformed cells degrade instead of failing the read.
func Ingest(r io.Reader) (dataframe.DataFrame, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("parse input: %w", err)
	}
	if len(records) <= 1 {
		return dataframe.DataFrame{}, ErrEmptyInput
	}

	// Ragged rows are padded so every row matches the header width.
	records = padRecords(records)

	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Error() != nil {
		return dataframe.DataFrame{}, fmt.Errorf("load records: %w", df.Error())
	}

	df = normalizeHeaders(df)

	if missing := missingRequired(df); len(missing) > 0 {
		return dataframe.DataFrame{}, &SchemaError{Missing: missing}
	}

	return df, nil
}

func padRecords(records [][]string) [][]string {
	width := len(records[0])
	for i, row := range records {
		switch {
		case len(row) < width:
			padded := make([]string, width)
			copy(padded, row)
			records[i] = padded
		case len(row) > width:
			records[i] = row[:width]
		}
	}
	return records
}

// normalizeHeaders trims header whitespace and renames lower-case
// variants of the canonical columns (e.g. "booking value") to their
// canonical form.
func normalizeHeaders(df dataframe.DataFrame) dataframe.DataFrame {
	canonical := map[string]string{}
	for _, name := range append(models.RequiredColumns,
		models.ColBookingID, models.ColCustomerID, models.ColDriverID,
		models.ColPaymentMethod, models.ColRideDistance,
		models.ColDriverRating, models.ColCustomerRating,
		models.ColCustomerReason, models.ColDriverReason,
	) {
		canonical[strings.ToLower(name)] = name
	}

	for _, name := range df.Names() {
		trimmed := strings.TrimSpace(name)
		target := trimmed
		if canon, ok := canonical[strings.ToLower(trimmed)]; ok {
			target = canon
		}
		if target != name {
			df = df.Rename(target, name)
		}
	}
	return df
}

func missingRequired(df dataframe.DataFrame) []string {
	present := make(map[string]bool, df.Ncol())
	for _, name := range df.Names() {
		present[name] = true
	}

	var missing []string
	for _, required := range models.RequiredColumns {
		if !present[required] {
			missing = append(missing, required)
		}
	}
	return missing
}
