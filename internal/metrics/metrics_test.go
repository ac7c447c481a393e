package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	// Register should be safe to call multiple times
	Register()
	Register()

	assert.NotPanics(t, func() {
		IncHTTP("upload")
		IncUpload(1000)
		IncAggregate("overview")
		IncExport("csv")
		ObservePipeline(0.25)
	})
}
