package analytics

import (
	"sort"
	"strconv"

	"ridepulse/internal/models"
	"ridepulse/internal/pipeline"
)

// Demand computes the daily and hourly booking trends plus the status
// distribution. The hourly curve always carries all 24 buckets.
func Demand(ds *pipeline.Dataset) *models.DemandStats {
	return &models.DemandStats{
		Daily:        dailyCounts(ds.Records(models.ColDate)),
		Hourly:       hourlyCounts(ds.Records(models.ColHourOfDay)),
		StatusCounts: labelCounts(ds.Records(models.ColBookingStatus)),
	}
}

func dailyCounts(dates []string) []models.DatePoint {
	counts := make(map[string]int)
	for _, d := range dates {
		if pipeline.IsMissing(d) {
			continue
		}
		counts[d]++
	}

	out := make([]models.DatePoint, 0, len(counts))
	for date, count := range counts {
		out = append(out, models.DatePoint{Date: date, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

func hourlyCounts(hours []string) []models.HourPoint {
	var buckets [24]int
	for _, h := range hours {
		if pipeline.IsMissing(h) {
			continue
		}
		hour, err := strconv.Atoi(h)
		if err != nil || hour < 0 || hour > 23 {
			continue
		}
		buckets[hour]++
	}

	out := make([]models.HourPoint, 24)
	for i, count := range buckets {
		out[i] = models.HourPoint{Hour: i, Count: count}
	}
	return out
}
