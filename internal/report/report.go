package report

import (
	"time"

	"github.com/richxcame/lead-forensics/internal/scoring"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Industry reference fraud band used by the comparison section
const (
	IndustryLow      = 8.0
	IndustryHigh     = 12.0
	IndustryMidpoint = 10.0

	maxReportIndicators = 10
)

// Batch is a scored batch together with everything derived from it
type Batch struct {
	Vendor      string
	BatchID     string
	SourceFile  string
	CostPerLead float64 // zero when unknown
	AnalyzedAt  time.Time

	Leads      []scoring.Lead
	Results    []scoring.ScoreResult
	Refund     *scoring.BatchRefund
	Stats      *scoring.BatchStats
	Indicators []scoring.Indicator
}

// BatchCost returns the total batch cost, or zero when no cost per lead is known
func (b *Batch) BatchCost() float64 {
	return float64(len(b.Results)) * b.CostPerLead
}

// RefundAmount returns the money owed back to the buyer
func (b *Batch) RefundAmount() float64 {
	if b.Refund == nil {
		return 0
	}
	return b.Refund.RefundAmount(b.BatchCost())
}

var printer = message.NewPrinter(language.English)

func money(v float64) string {
	return printer.Sprintf("$%.2f", v)
}
