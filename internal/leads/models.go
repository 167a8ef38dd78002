package leads

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/lead-forensics/internal/scoring"
)

var (
	// ErrNotFound is returned by the repository when a row does not exist
	ErrNotFound = errors.New("leads: not found")
	// ErrDuplicateBatch is returned when a vendor already has a batch with the same identifier
	ErrDuplicateBatch = errors.New("leads: batch identifier already used for this vendor")
)

// BatchIdentifierLayout is the default batch identifier format
const BatchIdentifierLayout = "20060102_150405"

const (
	// DefaultSearchLimit and MaxSearchLimit bound lead searches
	DefaultSearchLimit = 50
	MaxSearchLimit     = 500

	// DefaultTopIndicators and MaxTopIndicators bound the overall indicator ranking
	DefaultTopIndicators = 20
	MaxTopIndicators     = 100
)

// reasonSeparator joins reasons in storage and exports
const reasonSeparator = ", "

// Vendor is a lead seller
type Vendor struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"vendor_name"`
	Status    string    `json:"vendor_status"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Batch is a persisted, scored batch
type Batch struct {
	ID                uuid.UUID `json:"id"`
	VendorID          uuid.UUID `json:"vendor_id"`
	VendorName        string    `json:"vendor_name"`
	BatchIdentifier   string    `json:"batch_identifier"`
	BatchDate         time.Time `json:"batch_date"`
	LeadCount         int       `json:"lead_count"`
	FraudulentCount   int       `json:"fraudulent_count"`
	ValidCount        int       `json:"valid_count"`
	FraudPercentage   float64   `json:"fraud_percentage"`
	RefundStatus      string    `json:"refund_status"`
	RefundPercentage  float64   `json:"refund_percentage"`
	RefundAmount      float64   `json:"refund_amount"`
	CostPerLead       *float64  `json:"cost_per_lead,omitempty"`
	TotalBatchCost    *float64  `json:"total_batch_cost,omitempty"`
	AvgFraudScore     float64   `json:"avg_fraud_score"`
	AvgContactScore   float64   `json:"avg_contact_score"`
	AvgDuplicateScore float64   `json:"avg_duplicate_score"`
	AvgQualityScore   float64   `json:"avg_quality_score"`
	InputFilename     string    `json:"input_filename,omitempty"`
}

// LeadRecord is one scored lead as stored
type LeadRecord struct {
	ID             uuid.UUID              `json:"id"`
	BatchID        uuid.UUID              `json:"batch_id"`
	Position       int                    `json:"position"`
	Lead           scoring.Lead           `json:"lead"`
	FraudScore     int                    `json:"fraud_score"`
	Classification scoring.Classification `json:"classification"`
	IsFraudulent   bool                   `json:"is_fraudulent"`
	Breakdown      scoring.Breakdown      `json:"breakdown"`
	Reasons        []string               `json:"fraud_reasons"`
}

// FraudIndicator is a batch-level indicator as stored
type FraudIndicator struct {
	ID      uuid.UUID `json:"id"`
	BatchID uuid.UUID `json:"batch_id"`
	scoring.Indicator
}

// LeadMatch is a stored lead found by a cross-batch search
type LeadMatch struct {
	LeadRecord
	BatchIdentifier string    `json:"batch_identifier"`
	VendorID        uuid.UUID `json:"vendor_id"`
	VendorName      string    `json:"vendor_name"`
	BatchDate       time.Time `json:"batch_date"`
}

// IndicatorFrequency counts how often an indicator appeared across batches
type IndicatorFrequency struct {
	Name          string `json:"indicator_name"`
	Category      string `json:"indicator_category"`
	BatchCount    int    `json:"count"`
	AffectedLeads int    `json:"affected_lead_count"`
}

// ProcessRequest describes one batch to score
type ProcessRequest struct {
	VendorName      string
	BatchIdentifier string
	CostPerLead     float64
	InputFilename   string
	Leads           []scoring.Lead
	Persist         bool
	Archive         bool
}

// ScoredLead pairs an input lead with its score
type ScoredLead struct {
	scoring.Lead
	scoring.ScoreResult
}

// BatchResult is everything computed for a processed batch
type BatchResult struct {
	BatchID         *uuid.UUID            `json:"batch_id,omitempty"`
	VendorID        *uuid.UUID            `json:"vendor_id,omitempty"`
	VendorName      string                `json:"vendor_name"`
	BatchIdentifier string                `json:"batch_identifier"`
	InputFilename   string                `json:"input_filename,omitempty"`
	AnalyzedAt      time.Time             `json:"analyzed_at"`
	CostPerLead     float64               `json:"cost_per_lead,omitempty"`
	BatchCost       float64               `json:"batch_cost,omitempty"`
	RefundAmount    float64               `json:"refund_amount,omitempty"`
	Refund          *scoring.BatchRefund  `json:"refund"`
	Stats           *scoring.BatchStats   `json:"stats"`
	Indicators      []scoring.Indicator   `json:"indicators"`
	Leads           []scoring.Lead        `json:"-"`
	Results         []scoring.ScoreResult `json:"-"`
	Persisted       bool                  `json:"persisted"`
	PersistError    string                `json:"persist_error,omitempty"`
	ArchivedKeys    []string              `json:"archived_keys,omitempty"`
}

// ScoredLeads zips leads and results for responses
func (r *BatchResult) ScoredLeads() []ScoredLead {
	out := make([]ScoredLead, len(r.Results))
	for i := range r.Results {
		out[i] = ScoredLead{Lead: r.Leads[i], ScoreResult: r.Results[i]}
	}
	return out
}

// SubmitBatchRequest is the JSON body of POST /batches
type SubmitBatchRequest struct {
	VendorName      string         `json:"vendor_name" validate:"required,max=200"`
	BatchIdentifier string         `json:"batch_identifier" validate:"omitempty,max=100"`
	CostPerLead     float64        `json:"cost_per_lead" validate:"gte=0"`
	Leads           []scoring.Lead `json:"leads" validate:"required,min=1"`
}

func joinReasons(reasons []string) string {
	return strings.Join(reasons, reasonSeparator)
}

func splitReasons(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, reasonSeparator)
}
