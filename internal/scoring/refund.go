package scoring

import (
	"fmt"
	"sort"
)

// AggregateBatch computes the batch fraud percentage from the per-lead
// classifications and maps it to a refund tier. Empty batches are rejected.
func AggregateBatch(results []ScoreResult) (*BatchRefund, error) {
	total := len(results)
	if total == 0 {
		return nil, fmt.Errorf("aggregate batch: %w", ErrEmptyBatch)
	}

	fraudulent := 0
	for _, r := range results {
		if r.IsFraudulent {
			fraudulent++
		}
	}

	fraudPct := float64(fraudulent) / float64(total) * 100

	refund := &BatchRefund{
		FraudPercentage: fraudPct,
		FraudulentLeads: fraudulent,
		ValidLeads:      total - fraudulent,
		TotalLeads:      total,
	}

	switch {
	case fraudPct >= FullRefundThreshold:
		refund.Tier = RefundFull
		refund.RefundPercentage = 100
	case fraudPct >= PartialRefundThreshold:
		refund.Tier = RefundPartial
		refund.RefundPercentage = fraudPct
	default:
		refund.Tier = RefundNone
		refund.RefundPercentage = 0
	}

	return refund, nil
}

// Summarize computes score averages, the median score and classification counts
func Summarize(results []ScoreResult) (*BatchStats, error) {
	n := len(results)
	if n == 0 {
		return nil, fmt.Errorf("summarize batch: %w", ErrEmptyBatch)
	}

	stats := &BatchStats{ByClass: make(map[Classification]int, 3)}
	scores := make([]int, n)
	var sumScore, sumContact, sumDuplicate, sumQuality int

	for i, r := range results {
		scores[i] = r.Score
		sumScore += r.Score
		sumContact += r.Breakdown.Contact
		sumDuplicate += r.Breakdown.Duplicate
		sumQuality += r.Breakdown.Quality
		stats.ByClass[r.Classification]++
	}

	count := float64(n)
	stats.AverageScore = float64(sumScore) / count
	stats.AverageContact = float64(sumContact) / count
	stats.AverageDuplicate = float64(sumDuplicate) / count
	stats.AverageQuality = float64(sumQuality) / count

	sort.Ints(scores)
	if n%2 == 1 {
		stats.MedianScore = float64(scores[n/2])
	} else {
		stats.MedianScore = float64(scores[n/2-1]+scores[n/2]) / 2
	}

	return stats, nil
}
