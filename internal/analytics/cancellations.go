package analytics

import (
	"ridepulse/internal/models"
	"ridepulse/internal/pipeline"
)

// Cancellations computes cancellation counts and rates split by
// initiator, plus the top-N free-text reasons per initiator.
func Cancellations(ds *pipeline.Dataset, n int) *models.CancellationStats {
	rows := ds.Nrow()
	cancelled := ds.Records(models.ColIsCancelled)
	byCustomer := ds.Records(models.ColIsCustomerCancel)
	byDriver := ds.Records(models.ColIsDriverCancel)

	out := &models.CancellationStats{}
	for i := range cancelled {
		if cancelled[i] == "true" {
			out.CancelledCount++
		}
		if byCustomer[i] == "true" {
			out.CustomerCount++
		}
		if byDriver[i] == "true" {
			out.DriverCount++
		}
	}

	if rows > 0 {
		out.CancellationRate = float64(out.CancelledCount) / float64(rows)
		out.CustomerRate = float64(out.CustomerCount) / float64(rows)
		out.DriverRate = float64(out.DriverCount) / float64(rows)
	}

	out.TopCustomerReasons = topN(reasonCounts(ds, models.ColCustomerReason, byCustomer), n)
	out.TopDriverReasons = topN(reasonCounts(ds, models.ColDriverReason, byDriver), n)

	return out
}

// reasonCounts tallies the reason column over rows flagged for the
// matching initiator, so stray reason text on other rows is ignored.
func reasonCounts(ds *pipeline.Dataset, col string, flags []string) []models.LabelCount {
	reasons := ds.Records(col)
	if reasons == nil {
		return nil
	}

	filtered := make([]string, len(reasons))
	for i, r := range reasons {
		if flags[i] == "true" {
			filtered[i] = r
		} else {
			filtered[i] = ""
		}
	}
	return labelCounts(filtered)
}
