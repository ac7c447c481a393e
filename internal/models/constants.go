package models

const (
	// DefaultTopN limits ranked aggregates (reasons, customers, drivers).
	DefaultTopN = 10

	// DefaultHistogramBins for the booking value distribution.
	DefaultHistogramBins = 30

	// DefaultSessionTTL seconds a dataset stays resident without access.
	DefaultSessionTTL = 60 * 60

	// DefaultMaxSessions caps live datasets held in memory.
	DefaultMaxSessions = 64

	// DefaultMaxUploadBytes caps the accepted upload size (32 MiB).
	DefaultMaxUploadBytes = 32 << 20

	// DefaultCacheTTL seconds a rendered aggregate stays in Redis.
	DefaultCacheTTL = 10 * 60

	// ExportQueueSize bounds the XLSX export worker queue.
	ExportQueueSize = 32
)

// Default status label sets for the NCR ride-booking dataset. The
// config file overrides them; matching happens after title-case
// normalization.
var (
	DefaultCompletedStatuses = []string{"Completed"}

	DefaultCustomerCancelledStatuses = []string{"Cancelled By Customer"}

	DefaultDriverCancelledStatuses = []string{"Cancelled By Driver"}

	DefaultNoDriverStatuses = []string{"No Driver Found", "Incomplete"}
)
