package vendorhistory

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a vendor does not exist
var ErrNotFound = errors.New("vendorhistory: not found")

// Recommendations derived from a vendor's average fraud rate
const (
	RecommendBlacklist  = "BLACKLIST"
	RecommendSuspend    = "SUSPEND"
	RecommendWarning    = "WARNING"
	RecommendMonitor    = "MONITOR CLOSELY"
	RecommendAcceptable = "ACCEPTABLE"
)

// Trend directions
const (
	TrendIncreasing       = "INCREASING"
	TrendDecreasing       = "DECREASING"
	TrendStable           = "STABLE"
	TrendInsufficientData = "INSUFFICIENT_DATA"
)

const (
	// Average fraud rates at which each recommendation starts
	BlacklistThreshold = 40.0
	SuspendThreshold   = 30.0
	WarningThreshold   = 20.0
	MonitorThreshold   = 15.0

	// ProblemVendorThreshold flags vendors in the vendor listing
	ProblemVendorThreshold = 25.0

	// DefaultHighFraudThreshold and DefaultHighFraudLimit bound the high-fraud batch report
	DefaultHighFraudThreshold = 25.0
	DefaultHighFraudLimit     = 50
	MaxHighFraudLimit         = 500

	// DefaultTrendDays is the look-back window for fraud trends
	DefaultTrendDays = 30
	MaxTrendDays     = 365

	trendWindow = 3
	trendBand   = 5.0
)

// Refund status labels as stored on batches
const (
	refundFull    = "FULL REFUND"
	refundPartial = "PARTIAL REFUND"
	refundNone    = "NO REFUND"
)

// VendorSummary aggregates a vendor's batches
type VendorSummary struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"vendor_name"`
	Status           string    `json:"vendor_status"`
	Notes            string    `json:"notes,omitempty"`
	TotalBatches     int       `json:"total_batches"`
	TotalLeads       int       `json:"total_leads_received"`
	FraudulentLeads  int       `json:"total_fraudulent_leads"`
	AverageFraudRate float64   `json:"average_fraud_rate"`
	TotalRefunds     float64   `json:"total_refunds_issued"`
}

// BatchEntry is one batch in a history listing
type BatchEntry struct {
	ID              uuid.UUID `json:"id"`
	VendorName      string    `json:"vendor_name"`
	BatchIdentifier string    `json:"batch_identifier"`
	BatchDate       time.Time `json:"batch_date"`
	LeadCount       int       `json:"lead_count"`
	FraudulentCount int       `json:"fraudulent_count"`
	FraudPercentage float64   `json:"fraud_percentage"`
	RefundStatus    string    `json:"refund_status"`
	RefundAmount    float64   `json:"refund_amount"`
}

// FraudStats describes the spread of batch fraud rates
type FraudStats struct {
	Average float64 `json:"average"`
	Max     float64 `json:"max"`
	Min     float64 `json:"min"`
	StdDev  float64 `json:"std_dev"`
}

// Trend compares recent batches against the vendor's overall rate
type Trend struct {
	Direction      string  `json:"direction"`
	RecentAverage  float64 `json:"recent_average"`
	OverallAverage float64 `json:"overall_average"`
	Change         float64 `json:"change"`
}

// RefundSummary counts batches per refund status
type RefundSummary struct {
	TotalBatches      int     `json:"total_batches"`
	FullRefunds       int     `json:"full_refunds"`
	PartialRefunds    int     `json:"partial_refunds"`
	NoRefunds         int     `json:"no_refunds"`
	TotalRefundAmount float64 `json:"total_refund_amount"`
}

// VendorHistory is the full fraud history of one vendor
type VendorHistory struct {
	Vendor         VendorSummary `json:"vendor"`
	Batches        []BatchEntry  `json:"batches"`
	Stats          FraudStats    `json:"stats"`
	Refunds        RefundSummary `json:"refunds"`
	Trend          Trend         `json:"trend"`
	Recommendation string        `json:"recommendation"`
}

// TrendPoint is one batch in a time series
type TrendPoint struct {
	BatchDate       time.Time `json:"batch_date"`
	FraudPercentage float64   `json:"fraud_percentage"`
	RefundStatus    string    `json:"refund_status"`
}

// TrendReport summarizes fraud over a recent window
type TrendReport struct {
	Days             int          `json:"days"`
	Since            time.Time    `json:"since"`
	Points           []TrendPoint `json:"points"`
	BatchCount       int          `json:"batch_count"`
	AverageFraudRate float64      `json:"average_fraud_rate"`
	HighFraudCount   int          `json:"high_fraud_count"`
}

// Overview is the system-wide fraud summary
type Overview struct {
	Refunds      *RefundSummary  `json:"refunds"`
	StatusCounts map[string]int  `json:"vendor_status_counts"`
	TopVendors   []VendorSummary `json:"top_vendors"`
	Recent       *TrendReport    `json:"recent"`
}

// UpdateStatusRequest is the body of PUT /vendors/:id/status
type UpdateStatusRequest struct {
	Status string `json:"vendor_status" validate:"required,vendor_status"`
	Notes  string `json:"notes" validate:"max=1000"`
}
