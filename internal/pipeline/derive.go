package pipeline

import (
	"regexp"
	"strconv"
	"time"

	"ridepulse/internal/models"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

var leadingHourRe = regexp.MustCompile(`^(\d{1,2})(?::\d{2})?`)

// Derive appends the derived columns as pure functions of the cleaned
// ones. Re-running it replaces the columns with identical values.
func Derive(df dataframe.DataFrame, statuses StatusSets) dataframe.DataFrame {
	n := df.Nrow()

	timeRecords := df.Col(models.ColTime).Records()
	hours := make([]string, n)
	for i, v := range timeRecords {
		if h, ok := extractHour(v); ok {
			hours[i] = strconv.Itoa(h)
		} else {
			hours[i] = "NaN"
		}
	}

	dateRecords := df.Col(models.ColDate).Records()
	days := make([]string, n)
	for i, v := range dateRecords {
		if t, err := time.Parse(dateLayout, v); err == nil {
			days[i] = t.Weekday().String()
		} else {
			days[i] = "NaN"
		}
	}

	statusRecords := df.Col(models.ColBookingStatus).Records()
	customerCancelled := make([]bool, n)
	driverCancelled := make([]bool, n)
	cancelled := make([]bool, n)
	for i, s := range statusRecords {
		customerCancelled[i] = statuses.CustomerCancelled[s]
		driverCancelled[i] = statuses.DriverCancelled[s]
		cancelled[i] = customerCancelled[i] || driverCancelled[i]
	}

	df = df.Mutate(series.New(hours, series.Int, models.ColHourOfDay))
	df = df.Mutate(series.New(days, series.String, models.ColDayOfWeek))
	df = df.Mutate(series.New(cancelled, series.Bool, models.ColIsCancelled))
	df = df.Mutate(series.New(customerCancelled, series.Bool, models.ColIsCustomerCancel))
	df = df.Mutate(series.New(driverCancelled, series.Bool, models.ColIsDriverCancel))

	return df
}

// extractHour parses a cleaned time value; for free text it falls
// back to the leading digits (e.g. "14:30 approx" -> 14).
func extractHour(v string) (int, bool) {
	if IsMissing(v) {
		return 0, false
	}
	if t, ok := parseTime(v); ok {
		return t.Hour(), true
	}
	m := leadingHourRe.FindStringSubmatch(v)
	if m == nil {
		return 0, false
	}
	h, err := strconv.Atoi(m[1])
	if err != nil || h < 0 || h > 23 {
		return 0, false
	}
	return h, true
}
