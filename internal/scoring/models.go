package scoring

import "errors"

// ErrEmptyBatch is returned when aggregating or summarizing a batch with no leads.
var ErrEmptyBatch = errors.New("scoring: batch contains no leads")

// Classification is the per-lead verdict derived from the uncapped score
type Classification string

const (
	ClassificationFraudulent Classification = "FRAUDULENT"
	ClassificationSuspicious Classification = "SUSPICIOUS"
	ClassificationValid      Classification = "VALID"
)

// RefundTier is the batch-level refund decision
type RefundTier string

const (
	RefundFull    RefundTier = "FULL"
	RefundPartial RefundTier = "PARTIAL"
	RefundNone    RefundTier = "NONE"
)

// Label returns the human readable refund status used in reports and storage
func (t RefundTier) Label() string {
	switch t {
	case RefundFull:
		return "FULL REFUND"
	case RefundPartial:
		return "PARTIAL REFUND"
	default:
		return "NO REFUND"
	}
}

// Category names used in the score breakdown and fraud indicators
const (
	CategoryContact   = "contact"
	CategoryDuplicate = "duplicate"
	CategoryQuality   = "quality"
)

// Category caps. They bound the breakdown only, never the total score.
const (
	ContactCap   = 40
	DuplicateCap = 25
	QualityCap   = 10
)

// Classification and refund thresholds
const (
	FraudulentThreshold = 50
	SuspiciousThreshold = 25

	FullRefundThreshold    = 25.0
	PartialRefundThreshold = 15.0
)

// Reason strings, in the wording stored with every lead
const (
	ReasonMissingPhone    = "Missing phone number"
	ReasonInvalidPhone    = "Invalid phone format"
	ReasonMissingEmail    = "Missing email address"
	ReasonInvalidEmail    = "Invalid email format"
	ReasonDisposableEmail = "Disposable email domain"
	ReasonRepeatedPhone   = "Phone number repeated 3+ times"
	ReasonRepeatedEmail   = "Email repeated 3+ times"
	ReasonExactDuplicate  = "Exact duplicate detected"
	ReasonGibberishName   = "Invalid or gibberish name"
	ReasonMissingFields   = "Missing critical fields"
)

// Lead is one vendor-submitted contact record. Absent fields are empty strings.
type Lead struct {
	Name    string `json:"name" csv:"name"`
	Email   string `json:"email" csv:"email"`
	Phone   string `json:"phone" csv:"phone"`
	Address string `json:"address,omitempty" csv:"address"`
	City    string `json:"city,omitempty" csv:"city"`
	State   string `json:"state,omitempty" csv:"state"`
	Zip     string `json:"zip,omitempty" csv:"zip"`
}

// Breakdown holds the capped per-category sub-scores
type Breakdown struct {
	Contact   int `json:"contact"`
	Duplicate int `json:"duplicate"`
	Quality   int `json:"quality"`
}

// ScoreResult is the outcome of scoring a single lead
type ScoreResult struct {
	Score          int            `json:"fraud_score"`
	Classification Classification `json:"classification"`
	IsFraudulent   bool           `json:"is_fraudulent"`
	Reasons        []string       `json:"reasons"`
	Breakdown      Breakdown      `json:"breakdown"`
}

// BatchRefund is the refund decision for a whole batch
type BatchRefund struct {
	Tier             RefundTier `json:"refund_tier"`
	RefundPercentage float64    `json:"refund_percentage"`
	FraudPercentage  float64    `json:"fraud_percentage"`
	FraudulentLeads  int        `json:"fraudulent_leads"`
	ValidLeads       int        `json:"valid_leads"`
	TotalLeads       int        `json:"total_leads"`
}

// RefundAmount returns the money refunded for the given batch cost
func (r *BatchRefund) RefundAmount(batchCost float64) float64 {
	return batchCost * (r.RefundPercentage / 100)
}

// BatchStats summarizes score distribution over a batch
type BatchStats struct {
	AverageScore     float64                `json:"avg_fraud_score"`
	MedianScore      float64                `json:"median_fraud_score"`
	AverageContact   float64                `json:"avg_contact_score"`
	AverageDuplicate float64                `json:"avg_duplicate_score"`
	AverageQuality   float64                `json:"avg_quality_score"`
	ByClass          map[Classification]int `json:"by_classification"`
}

// Indicator is one fraud reason rolled up over a batch
type Indicator struct {
	Name              string  `json:"indicator_name"`
	Category          string  `json:"indicator_category"`
	AffectedLeadCount int     `json:"affected_lead_count"`
	Percentage        float64 `json:"percentage"`
	PointsPerLead     int     `json:"points_per_lead"`
	TotalPoints       int     `json:"total_points"`
}
