package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

var resultsHeader = []string{
	"name", "email", "phone", "address", "city", "state", "zip",
	"fraud_score", "classification", "is_fraudulent", "fraud_reasons",
	"breakdown_contact", "breakdown_duplicate", "breakdown_quality",
}

// WriteResultsCSV writes one row per lead: the input fields followed by its score
func WriteResultsCSV(w io.Writer, b *Batch) error {
	if len(b.Leads) != len(b.Results) {
		return errors.New("report: lead and result counts differ")
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(resultsHeader); err != nil {
		return err
	}

	for i, lead := range b.Leads {
		r := b.Results[i]
		row := []string{
			lead.Name, lead.Email, lead.Phone, lead.Address, lead.City, lead.State, lead.Zip,
			strconv.Itoa(r.Score),
			string(r.Classification),
			strconv.FormatBool(r.IsFraudulent),
			strings.Join(r.Reasons, ", "),
			strconv.Itoa(r.Breakdown.Contact),
			strconv.Itoa(r.Breakdown.Duplicate),
			strconv.Itoa(r.Breakdown.Quality),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteSummaryCSV writes the batch headline numbers as Metric,Value rows
func WriteSummaryCSV(w io.Writer, b *Batch) error {
	if b.Refund == nil {
		return errors.New("report: batch has no refund decision")
	}
	r := b.Refund

	rows := [][]string{{"Metric", "Value"}}
	if b.Vendor != "" {
		rows = append(rows, []string{"Vendor", b.Vendor})
	}
	if b.BatchID != "" {
		rows = append(rows, []string{"Batch ID", b.BatchID})
	}
	rows = append(rows,
		[]string{"Total Leads", strconv.Itoa(r.TotalLeads)},
		[]string{"Fraudulent Leads", strconv.Itoa(r.FraudulentLeads)},
		[]string{"Valid Leads", strconv.Itoa(r.ValidLeads)},
		[]string{"Fraud Percentage", fmt.Sprintf("%.1f%%", r.FraudPercentage)},
		[]string{"Refund Status", r.Tier.Label()},
		[]string{"Refund Percentage", fmt.Sprintf("%.1f%%", r.RefundPercentage)},
	)
	if b.Stats != nil {
		rows = append(rows,
			[]string{"Average Fraud Score", fmt.Sprintf("%.1f", b.Stats.AverageScore)},
			[]string{"Median Fraud Score", fmt.Sprintf("%.1f", b.Stats.MedianScore)},
		)
	}
	if b.CostPerLead > 0 {
		rows = append(rows,
			[]string{"Batch Cost", fmt.Sprintf("%.2f", b.BatchCost())},
			[]string{"Refund Amount", fmt.Sprintf("%.2f", b.RefundAmount())},
		)
	}

	cw := csv.NewWriter(w)
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}
