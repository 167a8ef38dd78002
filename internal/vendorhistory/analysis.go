package vendorhistory

import (
	"math"
	"sort"
)

// Recommend maps an average fraud rate onto a vendor recommendation
func Recommend(averageFraudRate float64) string {
	switch {
	case averageFraudRate >= BlacklistThreshold:
		return RecommendBlacklist
	case averageFraudRate >= SuspendThreshold:
		return RecommendSuspend
	case averageFraudRate >= WarningThreshold:
		return RecommendWarning
	case averageFraudRate >= MonitorThreshold:
		return RecommendMonitor
	default:
		return RecommendAcceptable
	}
}

// ComputeStats describes the fraud rates of batches. StdDev is the sample
// standard deviation and is zero for fewer than two batches.
func ComputeStats(batches []BatchEntry) FraudStats {
	if len(batches) == 0 {
		return FraudStats{}
	}

	stats := FraudStats{Max: math.Inf(-1), Min: math.Inf(1)}
	var sum float64
	for _, b := range batches {
		sum += b.FraudPercentage
		stats.Max = math.Max(stats.Max, b.FraudPercentage)
		stats.Min = math.Min(stats.Min, b.FraudPercentage)
	}
	stats.Average = sum / float64(len(batches))

	if len(batches) > 1 {
		var sq float64
		for _, b := range batches {
			d := b.FraudPercentage - stats.Average
			sq += d * d
		}
		stats.StdDev = math.Sqrt(sq / float64(len(batches)-1))
	}
	return stats
}

// ComputeTrend compares the newest batches with the overall average.
// batches must be ordered newest first. Change is newest minus oldest.
func ComputeTrend(batches []BatchEntry) Trend {
	if len(batches) == 0 {
		return Trend{Direction: TrendInsufficientData}
	}

	overall := ComputeStats(batches).Average
	trend := Trend{
		Direction:      TrendInsufficientData,
		OverallAverage: overall,
		Change:         batches[0].FraudPercentage - batches[len(batches)-1].FraudPercentage,
	}
	if len(batches) < trendWindow {
		return trend
	}

	trend.RecentAverage = ComputeStats(batches[:trendWindow]).Average
	switch {
	case trend.RecentAverage > overall+trendBand:
		trend.Direction = TrendIncreasing
	case trend.RecentAverage < overall-trendBand:
		trend.Direction = TrendDecreasing
	default:
		trend.Direction = TrendStable
	}
	return trend
}

// SummarizeRefunds counts refund statuses over batches
func SummarizeRefunds(batches []BatchEntry) RefundSummary {
	s := RefundSummary{TotalBatches: len(batches)}
	for _, b := range batches {
		switch b.RefundStatus {
		case refundFull:
			s.FullRefunds++
		case refundPartial:
			s.PartialRefunds++
		case refundNone:
			s.NoRefunds++
		}
		s.TotalRefundAmount += b.RefundAmount
	}
	return s
}

// BuildTrendReport summarizes a window of trend points
func BuildTrendReport(points []TrendPoint) *TrendReport {
	report := &TrendReport{Points: points, BatchCount: len(points)}
	if len(points) == 0 {
		report.Points = []TrendPoint{}
		return report
	}

	var sum float64
	for _, p := range points {
		sum += p.FraudPercentage
		if p.FraudPercentage >= DefaultHighFraudThreshold {
			report.HighFraudCount++
		}
	}
	report.AverageFraudRate = sum / float64(len(points))
	return report
}

// topVendors returns up to n vendors with the highest average fraud rate
func topVendors(vendors []VendorSummary, n int) []VendorSummary {
	sorted := make([]VendorSummary, len(vendors))
	copy(sorted, vendors)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].AverageFraudRate > sorted[j].AverageFraudRate
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
