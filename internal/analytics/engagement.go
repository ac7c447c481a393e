package analytics

import (
	"math"

	"ridepulse/internal/models"
	"ridepulse/internal/pipeline"

	"gonum.org/v1/gonum/stat"
)

// numericColumns eligible for the correlation matrix, in report order.
// Only those present in the table take part.
var numericColumns = []string{
	models.ColBookingValue,
	models.ColHourOfDay,
	models.ColRideDistance,
	models.ColDriverRating,
	models.ColCustomerRating,
}

// Engagement ranks customers and drivers by completed-ride count and
// computes the Pearson correlation matrix over the numeric columns.
func Engagement(ds *pipeline.Dataset, n int) *models.EngagementStats {
	completed := completedMask(ds)

	return &models.EngagementStats{
		TopCustomers: topN(maskedCounts(ds.Records(models.ColCustomerID), completed), n),
		TopDrivers:   topN(maskedCounts(ds.Records(models.ColDriverID), completed), n),
		Correlations: correlations(ds),
	}
}

func completedMask(ds *pipeline.Dataset) []bool {
	statuses := ds.Records(models.ColBookingStatus)
	mask := make([]bool, len(statuses))
	for i, s := range statuses {
		mask[i] = ds.Statuses.Completed[s]
	}
	return mask
}

func maskedCounts(records []string, mask []bool) []models.LabelCount {
	if records == nil {
		return nil
	}
	filtered := make([]string, len(records))
	for i, v := range records {
		if mask[i] {
			filtered[i] = v
		} else {
			filtered[i] = ""
		}
	}
	return labelCounts(filtered)
}

func correlations(ds *pipeline.Dataset) *models.CorrelationMatrix {
	var cols []string
	var data [][]float64
	for _, name := range numericColumns {
		if values := ds.Floats(name); values != nil {
			cols = append(cols, name)
			data = append(data, values)
		}
	}
	if len(cols) < 2 {
		return nil
	}

	matrix := make([][]float64, len(cols))
	for i := range cols {
		matrix[i] = make([]float64, len(cols))
		matrix[i][i] = 1
		for j := 0; j < i; j++ {
			r := pairwiseCorrelation(data[i], data[j])
			matrix[i][j] = r
			matrix[j][i] = r
		}
	}
	return &models.CorrelationMatrix{Columns: cols, Matrix: matrix}
}

// pairwiseCorrelation is the Pearson r over rows where both values are
// present. Degenerate pairs (fewer than two complete rows, or zero
// variance) report 0.
func pairwiseCorrelation(xs, ys []float64) float64 {
	var cx, cy []float64
	for i := range xs {
		if math.IsNaN(xs[i]) || math.IsNaN(ys[i]) {
			continue
		}
		cx = append(cx, xs[i])
		cy = append(cy, ys[i])
	}
	if len(cx) < 2 {
		return 0
	}

	r := stat.Correlation(cx, cy, nil)
	if math.IsNaN(r) {
		return 0
	}
	return r
}
