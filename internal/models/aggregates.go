package models

// LabelCount is a categorical value with its frequency. Slices of
// LabelCount are always ordered by descending count; ties keep the
// order in which the label first appeared in the table.
type LabelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// ValueSummary describes a numeric column, ignoring missing cells.
type ValueSummary struct {
	Count  int     `json:"count"`
	Sum    float64 `json:"sum"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// ColumnMissing reports how many cells of a column are missing.
type ColumnMissing struct {
	Column  string `json:"column"`
	Missing int    `json:"missing"`
}

// DateRange is the inclusive span of parseable booking dates.
type DateRange struct {
	Start string `json:"start"` // YYYY-MM-DD
	End   string `json:"end"`
}

// OverviewStats backs the overview view.
type OverviewStats struct {
	Rows            int             `json:"rows"`
	Columns         int             `json:"columns"`
	MissingByColumn []ColumnMissing `json:"missing_by_column"`
	BookingValue    ValueSummary    `json:"booking_value"`
	DateRange       *DateRange      `json:"date_range,omitempty"`
	UniqueCustomers int             `json:"unique_customers,omitempty"`
	UniqueBookings  int             `json:"unique_bookings,omitempty"`
}

// DatePoint is one day on a daily trend line.
type DatePoint struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int    `json:"count"`
}

// HourPoint is one hour bucket on the 0-23 demand curve.
type HourPoint struct {
	Hour  int `json:"hour"`
	Count int `json:"count"`
}

// DemandStats backs the demand view. Hourly always carries all 24
// buckets, zero-filled.
type DemandStats struct {
	Daily        []DatePoint  `json:"daily"`
	Hourly       []HourPoint  `json:"hourly"`
	StatusCounts []LabelCount `json:"status_counts"`
}

// CancellationStats backs the cancellations view. Rates are fractions
// of total rows, in [0,1].
type CancellationStats struct {
	CancelledCount     int          `json:"cancelled_count"`
	CancellationRate   float64      `json:"cancellation_rate"`
	CustomerCount      int          `json:"customer_count"`
	CustomerRate       float64      `json:"customer_rate"`
	DriverCount        int          `json:"driver_count"`
	DriverRate         float64      `json:"driver_rate"`
	TopCustomerReasons []LabelCount `json:"top_customer_reasons"`
	TopDriverReasons   []LabelCount `json:"top_driver_reasons"`
}

// HistogramBucket is a half-open [Low, High) value bucket; the last
// bucket is closed on both ends.
type HistogramBucket struct {
	Low   float64 `json:"low"`
	High  float64 `json:"high"`
	Count int     `json:"count"`
}

// RevenuePoint is revenue summed over one day of completed rides.
type RevenuePoint struct {
	Date    string  `json:"date"`
	Revenue float64 `json:"revenue"`
}

// RevenueStats backs the revenue view.
type RevenueStats struct {
	Histogram  []HistogramBucket `json:"histogram"`
	Daily      []RevenuePoint    `json:"daily"`
	PaymentMix []LabelCount      `json:"payment_mix,omitempty"`
}

// CorrelationMatrix is a symmetric Pearson correlation matrix over the
// numeric columns of the cleaned table. Matrix[i][j] pairs
// Columns[i] with Columns[j]; cells without enough complete
// observations are NaN-free and reported as 0.
type CorrelationMatrix struct {
	Columns []string    `json:"columns"`
	Matrix  [][]float64 `json:"matrix"`
}

// EngagementStats backs the engagement view.
type EngagementStats struct {
	TopCustomers []LabelCount       `json:"top_customers"`
	TopDrivers   []LabelCount       `json:"top_drivers"`
	Correlations *CorrelationMatrix `json:"correlations,omitempty"`
}

// UploadResult is returned to the client after a successful ingest.
type UploadResult struct {
	SessionID string         `json:"session_id"`
	Rows      int            `json:"rows"`
	Columns   int            `json:"columns"`
	Replaced  bool           `json:"replaced"`
	Overview  *OverviewStats `json:"overview"`
}
