package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/richxcame/lead-forensics/internal/bootstrap"
	"github.com/richxcame/lead-forensics/internal/vendorhistory"
	"github.com/richxcame/lead-forensics/pkg/config"
	"github.com/richxcame/lead-forensics/pkg/validation"
)

const rule = "================================================================================"

func runHistory(ctx context.Context, cfg *config.Config, cmd string, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(stderr)
	threshold := fs.Float64("threshold", vendorhistory.DefaultHighFraudThreshold, "minimum fraud percentage")
	limit := fs.Int("limit", vendorhistory.DefaultHighFraudLimit, "maximum batches to list")

	positional, err := parseInterspersed(fs, args)
	if err != nil {
		return exitError
	}

	db, err := bootstrap.OpenDatabase(&cfg.Database)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", cmd, err)
		return exitError
	}
	defer db.Close()

	svc := vendorhistory.NewService(vendorhistory.NewRepository(db.DB), nil)

	switch cmd {
	case "vendors":
		err = printVendors(ctx, svc, stdout)
	case "vendor":
		if len(positional) == 0 {
			err = errors.New("vendor name is required")
			break
		}
		err = printVendorHistory(ctx, svc, strings.Join(positional, " "), stdout)
	case "high-fraud":
		err = printHighFraud(ctx, svc, *threshold, *limit, stdout)
	case "summary":
		err = printOverview(ctx, svc, stdout)
	}
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", cmd, err)
		return exitError
	}
	return exitNoRefund
}

func header(w io.Writer, title string) {
	fmt.Fprintf(w, "\n%s\n%s\n%s\n", rule, title, rule)
}

func printVendors(ctx context.Context, svc vendorhistory.HistoryService, w io.Writer) error {
	vendors, err := svc.ListVendors(ctx)
	if err != nil {
		return err
	}

	header(w, "VENDOR LIST")
	if len(vendors) == 0 {
		fmt.Fprintln(w, "No vendors found.")
		return nil
	}

	fmt.Fprintf(w, "\nFound %d vendors:\n\n", len(vendors))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "VENDOR\tSTATUS\tBATCHES\tLEADS\tAVG FRAUD\tREFUNDS")
	var problems []vendorhistory.VendorSummary
	for _, v := range vendors {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%.1f%%\t$%.2f\n",
			v.Name, v.Status, v.TotalBatches, v.TotalLeads, v.AverageFraudRate, v.TotalRefunds)
		if v.AverageFraudRate >= vendorhistory.ProblemVendorThreshold {
			problems = append(problems, v)
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(problems) > 0 {
		fmt.Fprintf(w, "\nWARNING: %d vendors with fraud rate >= %.0f%%:\n", len(problems), vendorhistory.ProblemVendorThreshold)
		for _, v := range problems {
			fmt.Fprintf(w, "  - %s: %.1f%%\n", v.Name, v.AverageFraudRate)
		}
	}
	return nil
}

func printVendorHistory(ctx context.Context, svc vendorhistory.HistoryService, name string, w io.Writer) error {
	h, err := svc.GetVendorHistory(ctx, name)
	if err != nil {
		return err
	}

	header(w, "VENDOR FRAUD HISTORY ANALYSIS: "+h.Vendor.Name)
	fmt.Fprintf(w, "\nVendor Information:\n")
	fmt.Fprintf(w, "  Status: %s\n", h.Vendor.Status)
	fmt.Fprintf(w, "  Total Batches: %d\n", h.Vendor.TotalBatches)
	fmt.Fprintf(w, "  Total Leads: %d\n", h.Vendor.TotalLeads)
	fmt.Fprintf(w, "  Fraudulent Leads: %d\n", h.Vendor.FraudulentLeads)
	fmt.Fprintf(w, "  Total Refunds: $%.2f\n", h.Vendor.TotalRefunds)

	if len(h.Batches) == 0 {
		fmt.Fprintln(w, "\nNo batches found for this vendor.")
		return nil
	}

	fmt.Fprintf(w, "\nBATCH HISTORY (%d batches)\n", len(h.Batches))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "BATCH\tDATE\tLEADS\tFRAUDULENT\tFRAUD %\tREFUND\tAMOUNT")
	for _, b := range h.Batches {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%.1f%%\t%s\t$%.2f\n",
			b.BatchIdentifier, b.BatchDate.Format("2006-01-02"), b.LeadCount, b.FraudulentCount,
			b.FraudPercentage, b.RefundStatus, b.RefundAmount)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nFRAUD STATISTICS\n")
	fmt.Fprintf(w, "  Average Fraud Rate: %.2f%%\n", h.Stats.Average)
	fmt.Fprintf(w, "  Maximum Fraud Rate: %.2f%%\n", h.Stats.Max)
	fmt.Fprintf(w, "  Minimum Fraud Rate: %.2f%%\n", h.Stats.Min)
	fmt.Fprintf(w, "  Standard Deviation: %.2f%%\n", h.Stats.StdDev)

	fmt.Fprintf(w, "\n  Refund Breakdown:\n")
	fmt.Fprintf(w, "    Full Refunds: %d\n", h.Refunds.FullRefunds)
	fmt.Fprintf(w, "    Partial Refunds: %d\n", h.Refunds.PartialRefunds)
	fmt.Fprintf(w, "    No Refunds: %d\n", h.Refunds.NoRefunds)
	fmt.Fprintf(w, "  Total Amount Refunded: $%.2f\n", h.Refunds.TotalRefundAmount)

	fmt.Fprintf(w, "\nTREND ANALYSIS\n")
	if h.Trend.Direction == vendorhistory.TrendInsufficientData {
		fmt.Fprintln(w, "  Not enough data for trend analysis (need 3+ batches)")
	} else {
		fmt.Fprintf(w, "  Last 3 batches avg: %.2f%%\n", h.Trend.RecentAverage)
		fmt.Fprintf(w, "  Overall average: %.2f%%\n", h.Trend.OverallAverage)
		fmt.Fprintf(w, "  Trend: %s\n", h.Trend.Direction)
	}
	fmt.Fprintf(w, "  Change since first batch: %+.2f points\n", h.Trend.Change)

	fmt.Fprintf(w, "\nRECOMMENDATION: %s\n", h.Recommendation)
	return nil
}

func printHighFraud(ctx context.Context, svc vendorhistory.HistoryService, threshold float64, limit int, w io.Writer) error {
	batches, err := svc.HighFraudBatches(ctx, threshold, limit)
	if err != nil {
		return err
	}

	header(w, fmt.Sprintf("HIGH FRAUD BATCHES (>= %.1f%% fraud)", threshold))
	if len(batches) == 0 {
		fmt.Fprintf(w, "\nNo batches found with fraud rate >= %.1f%%\n", threshold)
		return nil
	}

	fmt.Fprintf(w, "\nFound %d high fraud batches:\n\n", len(batches))
	for i, b := range batches {
		fmt.Fprintf(w, "%d. %s - %s\n", i+1, b.VendorName, b.BatchIdentifier)
		fmt.Fprintf(w, "   Date: %s\n", b.BatchDate.Format("2006-01-02 15:04"))
		fmt.Fprintf(w, "   Leads: %d\n", b.LeadCount)
		fmt.Fprintf(w, "   Fraud Rate: %.1f%%\n", b.FraudPercentage)
		fmt.Fprintf(w, "   Refund: %s - $%.2f\n\n", b.RefundStatus, b.RefundAmount)
	}
	return nil
}

func printOverview(ctx context.Context, svc vendorhistory.HistoryService, w io.Writer) error {
	o, err := svc.Overview(ctx)
	if err != nil {
		return err
	}

	header(w, "FRAUD DETECTION SYSTEM - OVERALL SUMMARY")
	fmt.Fprintf(w, "\nRefund Summary:\n")
	fmt.Fprintf(w, "  Total Batches Analyzed: %d\n", o.Refunds.TotalBatches)
	fmt.Fprintf(w, "  Full Refunds: %d\n", o.Refunds.FullRefunds)
	fmt.Fprintf(w, "  Partial Refunds: %d\n", o.Refunds.PartialRefunds)
	fmt.Fprintf(w, "  No Refunds: %d\n", o.Refunds.NoRefunds)
	fmt.Fprintf(w, "  Total Refunded: $%.2f\n", o.Refunds.TotalRefundAmount)

	if len(o.StatusCounts) > 0 {
		fmt.Fprintf(w, "\nVendor Status Distribution:\n")
		for _, status := range validation.VendorStatuses {
			if n, ok := o.StatusCounts[status]; ok {
				fmt.Fprintf(w, "  %s: %d\n", status, n)
			}
		}
	}

	if len(o.TopVendors) > 0 {
		fmt.Fprintf(w, "\nTop %d Highest Fraud Rate Vendors:\n", len(o.TopVendors))
		for i, v := range o.TopVendors {
			fmt.Fprintf(w, "  %d. %s: %.1f%%\n", i+1, v.Name, v.AverageFraudRate)
		}
	}

	fmt.Fprintf(w, "\nRecent Activity (Last %d days):\n", o.Recent.Days)
	fmt.Fprintf(w, "  Batches Analyzed: %d\n", o.Recent.BatchCount)
	if o.Recent.BatchCount > 0 {
		fmt.Fprintf(w, "  Average Fraud Rate: %.2f%%\n", o.Recent.AverageFraudRate)
	}
	if o.Recent.HighFraudCount > 0 {
		fmt.Fprintf(w, "  High Fraud Batches (>= %.0f%%): %d\n", vendorhistory.DefaultHighFraudThreshold, o.Recent.HighFraudCount)
	}
	return nil
}
