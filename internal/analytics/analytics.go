// Package analytics computes the per-view aggregates over a cleaned
// dataset. Every function is a pure, read-only reduction: none mutates
// the dataset, and the views are independent of each other.
package analytics

import (
	"sort"

	"ridepulse/internal/models"
	"ridepulse/internal/pipeline"
)

// View names served by the API.
const (
	ViewOverview      = "overview"
	ViewDemand        = "demand"
	ViewCancellations = "cancellations"
	ViewRevenue       = "revenue"
	ViewEngagement    = "engagement"
)

// Views lists all aggregate views in presentation order.
var Views = []string{ViewOverview, ViewDemand, ViewCancellations, ViewRevenue, ViewEngagement}

// IsView reports whether name is a known aggregate view.
func IsView(name string) bool {
	for _, v := range Views {
		if v == name {
			return true
		}
	}
	return false
}

// labelCounts tallies non-missing records, ordered by descending
// count; ties keep first-seen order.
func labelCounts(records []string) []models.LabelCount {
	counts := make(map[string]int)
	firstSeen := make(map[string]int)

	for i, v := range records {
		if pipeline.IsMissing(v) {
			continue
		}
		if _, ok := counts[v]; !ok {
			firstSeen[v] = i
		}
		counts[v]++
	}

	out := make([]models.LabelCount, 0, len(counts))
	for label, count := range counts {
		out = append(out, models.LabelCount{Label: label, Count: count})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return firstSeen[out[i].Label] < firstSeen[out[j].Label]
	})
	return out
}

func topN(counts []models.LabelCount, n int) []models.LabelCount {
	if n > 0 && len(counts) > n {
		return counts[:n]
	}
	return counts
}
