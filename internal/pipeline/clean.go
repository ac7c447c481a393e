package pipeline

import (
	"math"
	"strconv"
	"strings"
	"time"

	"ridepulse/internal/models"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04:05"
)

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"02-01-2006",
	"02/01/2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

var timeLayouts = []string{
	"15:04:05",
	"15:04",
	"3:04 PM",
	"3:04:05 PM",
}

// Clean coerces the typed columns of a raw string dataframe. Invalid
// cells become missing values, never a hard failure. Idempotent: the
// output of Clean is a fixed point of Clean.
func Clean(df dataframe.DataFrame, statuses StatusSets) dataframe.DataFrame {
	caser := cases.Title(language.English)

	df = cleanStatusColumn(df, models.ColBookingStatus, caser)
	df = cleanStatusColumn(df, models.ColCustomerReason, caser)
	df = cleanStatusColumn(df, models.ColDriverReason, caser)

	df = cleanDates(df)
	df = cleanTimes(df)
	df = cleanBookingValue(df, statuses)

	return df
}

// NormalizeStatus trims and title-cases a categorical label, folding
// the "Canceled" spelling into "Cancelled". Missing values map to "".
func NormalizeStatus(s string) string {
	caser := cases.Title(language.English)
	return normalizeLabel(caser, s)
}

func normalizeLabel(caser cases.Caser, s string) string {
	s = strings.TrimSpace(s)
	if IsMissing(s) {
		return ""
	}
	s = caser.String(s)
	return strings.ReplaceAll(s, "Canceled", "Cancelled")
}

func cleanStatusColumn(df dataframe.DataFrame, col string, caser cases.Caser) dataframe.DataFrame {
	if !hasColumn(df, col) {
		return df
	}

	records := df.Col(col).Records()
	out := make([]string, len(records))
	for i, v := range records {
		norm := normalizeLabel(caser, v)
		if norm == "" {
			norm = "NaN"
		}
		out[i] = norm
	}
	return df.Mutate(series.New(out, series.String, col))
}

// cleanDates normalizes the Date column to YYYY-MM-DD; unparseable
// cells become missing.
func cleanDates(df dataframe.DataFrame) dataframe.DataFrame {
	records := df.Col(models.ColDate).Records()
	out := make([]string, len(records))
	for i, v := range records {
		if t, ok := parseDate(v); ok {
			out[i] = t.Format(dateLayout)
		} else {
			out[i] = "NaN"
		}
	}
	return df.Mutate(series.New(out, series.String, models.ColDate))
}

// cleanTimes normalizes parseable time-of-day values to HH:MM:SS and
// leaves other non-missing text trimmed in place, so that the
// hour-extraction fallback in Derive still sees it.
func cleanTimes(df dataframe.DataFrame) dataframe.DataFrame {
	records := df.Col(models.ColTime).Records()
	out := make([]string, len(records))
	for i, v := range records {
		v = strings.TrimSpace(v)
		if IsMissing(v) {
			out[i] = "NaN"
			continue
		}
		if t, ok := parseTime(v); ok {
			out[i] = t.Format(timeLayout)
		} else {
			out[i] = v
		}
	}
	return df.Mutate(series.New(out, series.String, models.ColTime))
}

// cleanBookingValue coerces Booking Value to float and blanks it for
// every row whose status is not in the completed set. Missing stays
// missing; it is never zero-filled.
func cleanBookingValue(df dataframe.DataFrame, statuses StatusSets) dataframe.DataFrame {
	records := df.Col(models.ColBookingValue).Records()
	statusRecords := df.Col(models.ColBookingStatus).Records()

	out := make([]float64, len(records))
	for i, v := range records {
		if !statuses.Completed[statusRecords[i]] {
			out[i] = math.NaN()
			continue
		}
		out[i] = parseMoney(v)
	}
	return df.Mutate(series.New(out, series.Float, models.ColBookingValue))
}

func parseMoney(v string) float64 {
	v = strings.TrimSpace(v)
	if IsMissing(v) {
		return math.NaN()
	}
	v = strings.ReplaceAll(v, ",", "")
	v = strings.TrimLeft(v, "₹$€ ")
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

func parseDate(v string) (time.Time, bool) {
	v = strings.TrimSpace(v)
	if IsMissing(v) {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseTime(v string) (time.Time, bool) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func hasColumn(df dataframe.DataFrame, name string) bool {
	for _, n := range df.Names() {
		if n == name {
			return true
		}
	}
	return false
}
