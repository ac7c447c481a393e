package pipeline

import (
	"io"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
)

// StatusSets holds the configured booking status vocabulary, already
// normalized the same way Clean normalizes the status column. Lookups
// are by normalized label.
type StatusSets struct {
	Completed         map[string]bool
	CustomerCancelled map[string]bool
	DriverCancelled   map[string]bool
	NoDriver          map[string]bool
}

// NewStatusSets normalizes the given label lists into lookup sets.
func NewStatusSets(completed, customerCancelled, driverCancelled, noDriver []string) StatusSets {
	return StatusSets{
		Completed:         normalizeSet(completed),
		CustomerCancelled: normalizeSet(customerCancelled),
		DriverCancelled:   normalizeSet(driverCancelled),
		NoDriver:          normalizeSet(noDriver),
	}
}

func normalizeSet(labels []string) map[string]bool {
	set := make(map[string]bool, len(labels))
	for _, l := range labels {
		if norm := NormalizeStatus(l); norm != "" {
			set[norm] = true
		}
	}
	return set
}

// Dataset is a cleaned booking table plus the status vocabulary it was
// cleaned against. It is session-scoped, immutable after Run, and
// discarded when the session ends.
type Dataset struct {
	df        dataframe.DataFrame
	Statuses  StatusSets
	CreatedAt time.Time
}

// Frame returns the underlying cleaned dataframe.
func (d *Dataset) Frame() dataframe.DataFrame { return d.df }

func (d *Dataset) Nrow() int { return d.df.Nrow() }

func (d *Dataset) Ncol() int { return d.df.Ncol() }

// HasColumn reports whether the cleaned table carries the column.
func (d *Dataset) HasColumn(name string) bool {
	for _, n := range d.df.Names() {
		if n == name {
			return true
		}
	}
	return false
}

// Records returns the string records of a column, or nil when absent.
func (d *Dataset) Records(name string) []string {
	if !d.HasColumn(name) {
		return nil
	}
	return d.df.Col(name).Records()
}

// Floats returns a column as float64 with NaN for missing cells, or
// nil when the column is absent.
func (d *Dataset) Floats(name string) []float64 {
	if !d.HasColumn(name) {
		return nil
	}
	return d.df.Col(name).Float()
}

// WriteCSV re-serializes the cleaned table, derived columns included.
func (d *Dataset) WriteCSV(w io.Writer) error {
	return d.df.WriteCSV(w, dataframe.WriteHeader(true))
}

// IsMissing reports whether a cell record counts as a missing value.
func IsMissing(v string) bool {
	switch strings.TrimSpace(v) {
	case "", "NaN", "NA":
		return true
	}
	return false
}
