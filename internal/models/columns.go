package models

// Canonical raw column names. Input headers are trimmed and lower-case
// variants are renamed to these before the schema check.
const (
	ColDate           = "Date"
	ColTime           = "Time"
	ColBookingStatus  = "Booking Status"
	ColBookingValue   = "Booking Value"
	ColBookingID      = "Booking ID"
	ColCustomerID     = "Customer ID"
	ColDriverID       = "Driver ID"
	ColPaymentMethod  = "Payment Method"
	ColRideDistance   = "Ride Distance"
	ColDriverRating   = "Driver Ratings"
	ColCustomerRating = "Customer Rating"
	ColCustomerReason = "Reason for cancelling by Customer"
	ColDriverReason   = "Driver Cancellation Reason"
)

// Derived columns appended by the pipeline.
const (
	ColHourOfDay         = "hour_of_day"
	ColDayOfWeek         = "day_of_week"
	ColIsCancelled       = "is_cancelled"
	ColIsCustomerCancel  = "is_customer_cancelled"
	ColIsDriverCancel    = "is_driver_cancelled"
)

// RequiredColumns must all be present after header normalization;
// ingest aborts with a SchemaError otherwise.
var RequiredColumns = []string{ColDate, ColTime, ColBookingStatus, ColBookingValue}

// DerivedColumns in the order they are appended to the cleaned table.
var DerivedColumns = []string{
	ColHourOfDay,
	ColDayOfWeek,
	ColIsCancelled,
	ColIsCustomerCancel,
	ColIsDriverCancel,
}
