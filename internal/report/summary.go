package report

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/richxcame/lead-forensics/internal/scoring"
)

var (
	heavyRule = strings.Repeat("=", 70)
	lightRule = strings.Repeat("-", 70)
)

// Summary renders the plain-text fraud analysis report for a batch
func Summary(b *Batch) string {
	var sb strings.Builder
	line := func(format string, args ...interface{}) {
		fmt.Fprintf(&sb, format, args...)
		sb.WriteByte('\n')
	}
	text := func(s string) {
		sb.WriteString(s)
		sb.WriteByte('\n')
	}

	analyzedAt := b.AnalyzedAt
	if analyzedAt.IsZero() {
		analyzedAt = time.Now()
	}
	refund := b.Refund
	if refund == nil {
		refund = &scoring.BatchRefund{Tier: scoring.RefundNone}
	}

	text(heavyRule)
	text("LEAD FORENSICS - FRAUD ANALYSIS REPORT")
	text(heavyRule)
	line("Analysis Date: %s", analyzedAt.Format("2006-01-02 15:04:05"))
	if b.Vendor != "" {
		line("Vendor: %s", b.Vendor)
	}
	if b.BatchID != "" {
		line("Batch: %s", b.BatchID)
	}
	text("")

	text("BATCH STATISTICS:")
	text(lightRule)
	line("Total Leads Analyzed: %d", refund.TotalLeads)
	line("Fraudulent Leads: %d (%.1f%%)", refund.FraudulentLeads, refund.FraudPercentage)
	line("Valid Leads: %d (%.1f%%)", refund.ValidLeads, 100-refund.FraudPercentage)
	if b.Stats != nil {
		line("Average Fraud Score: %.1f", b.Stats.AverageScore)
		line("Median Fraud Score: %.1f", b.Stats.MedianScore)
	}
	text("")

	if b.Stats != nil {
		text("FRAUD BREAKDOWN BY CATEGORY:")
		text(lightRule)
		line("Contact Validation Issues: %.1f points (avg)", b.Stats.AverageContact)
		line("Duplicate Detection: %.1f points (avg)", b.Stats.AverageDuplicate)
		line("Data Quality Issues: %.1f points (avg)", b.Stats.AverageQuality)
		text("")
	}

	text("TOP FRAUD INDICATORS:")
	text(lightRule)
	if len(b.Indicators) == 0 {
		text("None")
	}
	for i, ind := range b.Indicators {
		if i == maxReportIndicators {
			break
		}
		line("%d. %s: %d leads (%.1f%%)", i+1, ind.Name, ind.AffectedLeadCount, ind.Percentage)
	}
	text("")

	text("REFUND DETERMINATION:")
	text(heavyRule)
	text("REFUND THRESHOLD POLICY:")
	line("  >= %.0f%% fraud = Full refund (100%%)", scoring.FullRefundThreshold)
	line("  %.0f-%.0f%% fraud = Partial refund (pro-rata)", scoring.PartialRefundThreshold, scoring.FullRefundThreshold-1)
	line("  < %.0f%% fraud = No refund (acceptable tolerance)", scoring.PartialRefundThreshold)
	text("")
	line("BATCH FRAUD SCORE: %.1f%%", refund.FraudPercentage)
	line("REFUND STATUS: %s", refund.Tier.Label())
	line("REFUND PERCENTAGE: %.1f%%", refund.RefundPercentage)

	if b.CostPerLead > 0 {
		text("")
		text("FINANCIAL IMPACT:")
		line("  Batch Cost: %s", money(b.BatchCost()))
		line("  Refund Amount: %s", money(b.RefundAmount()))
	}
	text("")

	text("INDUSTRY COMPARISON:")
	text(lightRule)
	line("Industry Standard Fraud Rate: %.0f-%.0f%%", IndustryLow, IndustryHigh)
	line("This Batch Fraud Rate: %.1f%%", refund.FraudPercentage)
	if deviation := refund.FraudPercentage - IndustryMidpoint; deviation > 0 {
		line("Deviation: %.1f%% ABOVE industry standard", deviation)
	} else {
		line("Deviation: %.1f%% below industry standard", math.Abs(deviation))
	}
	text("")

	text("CONCLUSION:")
	text(heavyRule)
	for _, l := range conclusion(refund.Tier) {
		text(l)
	}
	text("")
	text(heavyRule)
	text("END OF REPORT")
	sb.WriteString(heavyRule)

	return sb.String()
}

func conclusion(tier scoring.RefundTier) []string {
	switch tier {
	case scoring.RefundFull:
		return []string{
			"This batch contains an UNACCEPTABLE level of fraudulent leads.",
			"RECOMMENDATION: Full refund is JUSTIFIED based on fraud threshold policy.",
		}
	case scoring.RefundPartial:
		return []string{
			"This batch contains a MARGINAL level of fraudulent leads.",
			"RECOMMENDATION: Partial refund is justified proportional to fraud rate.",
		}
	default:
		return []string{
			"This batch falls within ACCEPTABLE fraud tolerance.",
			"RECOMMENDATION: No refund required, but monitor vendor quality.",
		}
	}
}
