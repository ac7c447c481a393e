// Package pipeline implements the cleaning and derivation stages for
// uploaded booking tables: a raw delimited file goes in, a typed,
// normalized dataframe with derived columns comes out. Aggregation
// over the result lives in the analytics package.
package pipeline

import (
	"io"
	"time"
)

// Pipeline runs Ingest -> Clean -> Derive with a fixed status
// vocabulary. It is stateless and safe for concurrent use.
type Pipeline struct {
	statuses StatusSets
}

func New(statuses StatusSets) *Pipeline {
	return &Pipeline{statuses: statuses}
}

// Run executes the full pipeline over one uploaded file. A schema
// failure aborts before any cleaning; cell-level malformation only
// degrades individual values to missing.
func (p *Pipeline) Run(r io.Reader) (*Dataset, error) {
	df, err := Ingest(r)
	if err != nil {
		return nil, err
	}

	df = Clean(df, p.statuses)
	df = Derive(df, p.statuses)

	return &Dataset{
		df:        df,
		Statuses:  p.statuses,
		CreatedAt: time.Now(),
	}, nil
}
