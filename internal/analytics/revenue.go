package analytics

import (
	"math"
	"sort"

	"ridepulse/internal/models"
	"ridepulse/internal/pipeline"
)

// Revenue computes the booking value histogram over completed rides,
// daily revenue totals, and the payment method mix when present.
// Cleaning already blanked values on non-completed rows, so every
// non-missing value here belongs to a completed ride.
func Revenue(ds *pipeline.Dataset, bins int) *models.RevenueStats {
	values := ds.Floats(models.ColBookingValue)

	return &models.RevenueStats{
		Histogram:  histogram(values, bins),
		Daily:      dailyRevenue(ds.Records(models.ColDate), values),
		PaymentMix: labelCounts(ds.Records(models.ColPaymentMethod)),
	}
}

func histogram(values []float64, bins int) []models.HistogramBucket {
	if bins <= 0 {
		bins = models.DefaultHistogramBins
	}

	clean := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			clean = append(clean, v)
		}
	}
	if len(clean) == 0 {
		return nil
	}

	min, max := clean[0], clean[0]
	for _, v := range clean[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	if min == max {
		return []models.HistogramBucket{{Low: min, High: max, Count: len(clean)}}
	}

	width := (max - min) / float64(bins)
	buckets := make([]models.HistogramBucket, bins)
	for i := range buckets {
		buckets[i].Low = min + float64(i)*width
		buckets[i].High = min + float64(i+1)*width
	}
	buckets[bins-1].High = max

	for _, v := range clean {
		idx := int((v - min) / width)
		if idx >= bins {
			idx = bins - 1 // max value lands in the last bucket
		}
		buckets[idx].Count++
	}
	return buckets
}

func dailyRevenue(dates []string, values []float64) []models.RevenuePoint {
	totals := make(map[string]float64)
	for i, d := range dates {
		if pipeline.IsMissing(d) || i >= len(values) || math.IsNaN(values[i]) {
			continue
		}
		totals[d] += values[i]
	}

	out := make([]models.RevenuePoint, 0, len(totals))
	for date, revenue := range totals {
		out = append(out, models.RevenuePoint{Date: date, Revenue: revenue})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}
