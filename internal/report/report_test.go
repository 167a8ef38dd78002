package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/richxcame/lead-forensics/internal/scoring"
	"github.com/richxcame/lead-forensics/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newBatch builds a batch of total leads where the first fraudulent ones score 55
func newBatch(t *testing.T, total, fraudulent int, cost float64) *Batch {
	t.Helper()

	leads := make([]scoring.Lead, total)
	results := make([]scoring.ScoreResult, total)
	for i := range leads {
		leads[i] = scoring.Lead{Name: "Lead Person", Email: "lead@example.com", Phone: "5551234567"}
		if i < fraudulent {
			results[i] = scoring.ScoreResult{
				Score:          55,
				Classification: scoring.ClassificationFraudulent,
				IsFraudulent:   true,
				Reasons:        []string{scoring.ReasonRepeatedPhone, scoring.ReasonExactDuplicate},
				Breakdown:      scoring.Breakdown{Contact: 10, Duplicate: 15},
			}
			continue
		}
		results[i] = scoring.ScoreResult{Classification: scoring.ClassificationValid, Reasons: []string{}}
	}

	refund, err := scoring.AggregateBatch(results)
	require.NoError(t, err)
	stats, err := scoring.Summarize(results)
	require.NoError(t, err)

	return &Batch{
		Vendor:      "LeadGen Pro",
		BatchID:     "2024-03",
		CostPerLead: cost,
		AnalyzedAt:  time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC),
		Leads:       leads,
		Results:     results,
		Refund:      refund,
		Stats:       stats,
		Indicators:  scoring.BuildIndicators(results),
	}
}

func TestSummary(t *testing.T) {
	tests := []struct {
		name       string
		fraudulent int
		cost       float64
		contains   []string
		excludes   []string
	}{
		{
			name:       "full refund with cost",
			fraudulent: 3,
			cost:       500,
			contains: []string{
				"Analysis Date: 2024-03-01 09:30:00",
				"Fraudulent Leads: 3 (30.0%)",
				"Valid Leads: 7 (70.0%)",
				"1. Exact duplicate detected: 3 leads (30.0%)",
				"REFUND STATUS: FULL REFUND",
				"REFUND PERCENTAGE: 100.0%",
				"Batch Cost: $5,000.00",
				"Refund Amount: $5,000.00",
				"Deviation: 20.0% ABOVE industry standard",
				"UNACCEPTABLE",
			},
		},
		{
			name:       "partial refund",
			fraudulent: 2,
			contains: []string{
				"REFUND STATUS: PARTIAL REFUND",
				"REFUND PERCENTAGE: 20.0%",
				"Deviation: 10.0% ABOVE industry standard",
				"MARGINAL",
			},
			excludes: []string{"FINANCIAL IMPACT"},
		},
		{
			name:       "no refund",
			fraudulent: 1,
			contains: []string{
				"REFUND STATUS: NO REFUND",
				"Deviation: 0.0% below industry standard",
				"ACCEPTABLE fraud tolerance",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := Summary(newBatch(t, 10, tt.fraudulent, tt.cost))
			for _, want := range tt.contains {
				assert.Contains(t, text, want)
			}
			for _, unwanted := range tt.excludes {
				assert.NotContains(t, text, unwanted)
			}
			assert.True(t, strings.HasSuffix(text, heavyRule))
		})
	}
}

func TestSummary_NoIndicators(t *testing.T) {
	text := Summary(newBatch(t, 4, 0, 0))
	assert.Contains(t, text, "TOP FRAUD INDICATORS:\n"+lightRule+"\nNone")
}

func TestWriteResultsCSV(t *testing.T) {
	b := newBatch(t, 3, 1, 0)

	var buf bytes.Buffer
	require.NoError(t, WriteResultsCSV(&buf, b))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, resultsHeader, rows[0])
	assert.Equal(t, "55", rows[1][7])
	assert.Equal(t, "FRAUDULENT", rows[1][8])
	assert.Equal(t, "true", rows[1][9])
	assert.Equal(t, "Phone number repeated 3+ times, Exact duplicate detected", rows[1][10])
	assert.Equal(t, []string{"10", "15", "0"}, rows[1][11:])
	assert.Equal(t, "", rows[2][10])
}

func TestWriteResultsCSV_MismatchedLengths(t *testing.T) {
	b := newBatch(t, 3, 1, 0)
	b.Results = b.Results[:2]
	assert.Error(t, WriteResultsCSV(io.Discard, b))
}

func TestWriteSummaryCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSummaryCSV(&buf, newBatch(t, 10, 2, 5)))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)

	values := map[string]string{}
	for _, r := range rows[1:] {
		values[r[0]] = r[1]
	}
	assert.Equal(t, []string{"Metric", "Value"}, rows[0])
	assert.Equal(t, "LeadGen Pro", values["Vendor"])
	assert.Equal(t, "10", values["Total Leads"])
	assert.Equal(t, "20.0%", values["Fraud Percentage"])
	assert.Equal(t, "PARTIAL REFUND", values["Refund Status"])
	assert.Equal(t, "50.00", values["Batch Cost"])
	assert.Equal(t, "10.00", values["Refund Amount"])
	assert.Equal(t, "0.0", values["Median Fraud Score"])

	assert.Error(t, WriteSummaryCSV(io.Discard, &Batch{}))
}

func TestArchiver(t *testing.T) {
	ctx := context.Background()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	uploaded, err := NewArchiver(store).Archive(ctx, newBatch(t, 10, 3, 0))
	require.NoError(t, err)
	require.Len(t, uploaded, 3)
	assert.Equal(t, "vendors/leadgen-pro/batches/2024-03/fraud_report.txt", uploaded[0].Key)

	for _, name := range []string{ReportFile, SummaryFile, ResultsFile} {
		ok, err := store.Exists(ctx, storage.BatchReportKey("LeadGen Pro", "2024-03", name))
		require.NoError(t, err)
		assert.True(t, ok, name)
	}
}

type failingStore struct{ storage.Storage }

func (failingStore) Upload(context.Context, string, io.Reader, int64, string) (*storage.UploadResult, error) {
	return nil, errors.New("bucket unavailable")
}

func TestArchiver_UploadFailure(t *testing.T) {
	_, err := NewArchiver(failingStore{}).Archive(context.Background(), newBatch(t, 2, 0, 0))
	assert.ErrorContains(t, err, "bucket unavailable")
}
