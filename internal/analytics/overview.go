package analytics

import (
	"math"
	"sort"

	"ridepulse/internal/models"
	"ridepulse/internal/pipeline"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Overview summarizes the cleaned table: shape, missing cells, the
// booking value distribution and, when the columns exist, unique
// customer/booking counts and the covered date range.
func Overview(ds *pipeline.Dataset) *models.OverviewStats {
	out := &models.OverviewStats{
		Rows:    ds.Nrow(),
		Columns: ds.Ncol(),
	}

	out.MissingByColumn = missingByColumn(ds)
	out.BookingValue = Summarize(ds.Floats(models.ColBookingValue))
	out.DateRange = dateRange(ds.Records(models.ColDate))

	if ds.HasColumn(models.ColCustomerID) {
		out.UniqueCustomers = uniqueCount(ds.Records(models.ColCustomerID))
	}
	if ds.HasColumn(models.ColBookingID) {
		out.UniqueBookings = uniqueCount(ds.Records(models.ColBookingID))
	}

	return out
}

// Summarize computes count/sum/mean/median/min/max over the non-missing
// values of a column.
func Summarize(values []float64) models.ValueSummary {
	clean := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			clean = append(clean, v)
		}
	}
	if len(clean) == 0 {
		return models.ValueSummary{}
	}

	sort.Float64s(clean)
	return models.ValueSummary{
		Count:  len(clean),
		Sum:    floats.Sum(clean),
		Mean:   stat.Mean(clean, nil),
		Median: stat.Quantile(0.5, stat.LinInterp, clean, nil),
		Min:    clean[0],
		Max:    clean[len(clean)-1],
	}
}

func missingByColumn(ds *pipeline.Dataset) []models.ColumnMissing {
	names := ds.Frame().Names()
	out := make([]models.ColumnMissing, 0, len(names))
	for _, name := range names {
		missing := 0
		for _, v := range ds.Records(name) {
			if pipeline.IsMissing(v) {
				missing++
			}
		}
		out = append(out, models.ColumnMissing{Column: name, Missing: missing})
	}
	// Worst columns first; ties keep table order.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Missing > out[j].Missing
	})
	return out
}

func dateRange(dates []string) *models.DateRange {
	var start, end string
	for _, d := range dates {
		if pipeline.IsMissing(d) {
			continue
		}
		// Cleaned dates are YYYY-MM-DD, so string order is date order.
		if start == "" || d < start {
			start = d
		}
		if end == "" || d > end {
			end = d
		}
	}
	if start == "" {
		return nil
	}
	return &models.DateRange{Start: start, End: end}
}

func uniqueCount(records []string) int {
	seen := make(map[string]bool)
	for _, v := range records {
		if !pipeline.IsMissing(v) {
			seen[v] = true
		}
	}
	return len(seen)
}
