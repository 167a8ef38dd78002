package leads

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/richxcame/lead-forensics/internal/scoring"
)

var (
	leadsScoredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lead_forensics",
			Name:      "leads_scored_total",
			Help:      "Leads scored, by classification",
		},
		[]string{"classification"},
	)

	batchesProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lead_forensics",
			Name:      "batches_processed_total",
			Help:      "Batches processed, by refund tier",
		},
		[]string{"refund_tier"},
	)

	batchFraudPercentage = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "lead_forensics",
			Name:      "batch_fraud_percentage",
			Help:      "Fraud percentage of processed batches",
			Buckets:   []float64{5, 10, 15, 20, 25, 35, 50, 75, 100},
		},
	)

	batchScoringSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "lead_forensics",
			Name:      "batch_scoring_duration_seconds",
			Help:      "Time spent scoring a batch",
			Buckets:   prometheus.DefBuckets,
		},
	)

	persistFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lead_forensics",
			Name:      "batch_side_effect_failures_total",
			Help:      "Failed persistence, publish or archive steps",
		},
		[]string{"step"},
	)
)

func recordBatchMetrics(refund *scoring.BatchRefund, stats *scoring.BatchStats) {
	for class, n := range stats.ByClass {
		leadsScoredTotal.WithLabelValues(string(class)).Add(float64(n))
	}
	batchesProcessedTotal.WithLabelValues(string(refund.Tier)).Inc()
	batchFraudPercentage.Observe(refund.FraudPercentage)
}
