package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/richxcame/lead-forensics/internal/bootstrap"
	"github.com/richxcame/lead-forensics/internal/domains"
	"github.com/richxcame/lead-forensics/internal/ingest"
	"github.com/richxcame/lead-forensics/internal/leads"
	"github.com/richxcame/lead-forensics/internal/report"
	"github.com/richxcame/lead-forensics/internal/scoring"
	"github.com/richxcame/lead-forensics/pkg/config"
	"github.com/richxcame/lead-forensics/pkg/logger"
	"go.uber.org/zap"
)

const offlineVendor = "unknown"

type scoreOptions struct {
	input   string
	vendor  string
	batchID string
	outDir  string
	cost    float64
	noDB    bool
}

func parseScoreArgs(args []string, stderr io.Writer) (*scoreOptions, error) {
	opts := &scoreOptions{}
	fs := flag.NewFlagSet("score", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.vendor, "vendor", "", "vendor name")
	fs.StringVar(&opts.batchID, "batch-id", "", "batch identifier (default: analysis timestamp)")
	fs.StringVar(&opts.outDir, "out", "", "directory for result files (default: next to the input)")
	fs.Float64Var(&opts.cost, "cost", 0, "cost per lead, enables refund amounts")
	fs.BoolVar(&opts.noDB, "no-db", false, "score without saving to the database")

	positional, err := parseInterspersed(fs, args)
	if err != nil {
		return nil, err
	}
	if len(positional) != 1 {
		return nil, errors.New("score takes exactly one input file")
	}
	opts.input = positional[0]

	if opts.cost < 0 {
		return nil, errors.New("--cost must not be negative")
	}
	if strings.TrimSpace(opts.vendor) == "" {
		if !opts.noDB {
			return nil, errors.New("--vendor is required unless --no-db is set")
		}
		opts.vendor = offlineVendor
	}
	return opts, nil
}

// outputPaths names the result files after the input file
func outputPaths(input, outDir string) map[string]string {
	dir := filepath.Dir(input)
	if outDir != "" {
		dir = outDir
	}
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))

	return map[string]string{
		report.ResultsFile: filepath.Join(dir, base+"_"+report.ResultsFile),
		report.SummaryFile: filepath.Join(dir, base+"_"+report.SummaryFile),
		report.ReportFile:  filepath.Join(dir, base+"_"+report.ReportFile),
	}
}

func exitCodeFor(tier scoring.RefundTier) int {
	switch tier {
	case scoring.RefundFull:
		return exitFullRefund
	case scoring.RefundPartial:
		return exitPartialRefund
	default:
		return exitNoRefund
	}
}

func runScore(ctx context.Context, cfg *config.Config, args []string, stdout, stderr io.Writer) int {
	opts, err := parseScoreArgs(args, stderr)
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(stderr, "score: %v\n", err)
		}
		return exitError
	}

	batch, err := ingest.ReadLeadsFile(opts.input)
	if err != nil {
		fmt.Fprintf(stderr, "score: %v\n", err)
		return exitError
	}

	redisClient, err := bootstrap.OpenRedis(&cfg.Redis)
	if err != nil {
		logger.Warn("Redis unavailable, using default disposable domains", zap.Error(err))
	}
	var registry *domains.Registry
	if redisClient != nil {
		defer redisClient.Close()
		registry = domains.NewRegistry(redisClient)
	}

	rules, err := bootstrap.LoadRules(ctx, cfg.Scoring.RulesFile, registry)
	if err != nil {
		fmt.Fprintf(stderr, "score: %v\n", err)
		return exitError
	}

	var repo leads.Repository
	if !opts.noDB {
		db, err := bootstrap.OpenDatabase(&cfg.Database)
		if err != nil {
			fmt.Fprintf(stderr, "score: %v (use --no-db to score offline)\n", err)
			return exitError
		}
		defer db.Close()
		repo = leads.NewRepository(db.DB)
	}

	archiver, err := bootstrap.NewArchiver(ctx, cfg.Storage)
	if err != nil {
		logger.Warn("Report archive disabled", zap.Error(err))
	}
	publisher, err := bootstrap.NewPublisher(cfg.NATS, "forensics-cli")
	if err != nil {
		logger.Warn("Event publishing disabled", zap.Error(err))
	}
	if publisher != nil {
		defer publisher.Close()
	}

	svc := leads.NewService(scoring.NewScorer(rules), repo, publisher, archiver, leads.Options{
		Workers: cfg.Scoring.Workers,
		Subject: cfg.NATS.Subject,
		Source:  "forensics-cli",
	})

	result, err := svc.ProcessBatch(ctx, &leads.ProcessRequest{
		VendorName:      opts.vendor,
		BatchIdentifier: opts.batchID,
		CostPerLead:     opts.cost,
		InputFilename:   filepath.Base(opts.input),
		Leads:           batch,
		Persist:         repo != nil,
		Archive:         archiver != nil,
	})
	if err != nil {
		fmt.Fprintf(stderr, "score: %v\n", err)
		return exitError
	}

	files, err := report.Render(leads.ReportBatch(result))
	if err != nil {
		fmt.Fprintf(stderr, "score: %v\n", err)
		return exitError
	}
	fmt.Fprint(stdout, string(files[report.ReportFile]))

	if err := writeOutputs(files, outputPaths(opts.input, opts.outDir), stdout); err != nil {
		fmt.Fprintf(stderr, "score: %v\n", err)
		return exitError
	}

	switch {
	case result.Persisted:
		fmt.Fprintf(stdout, "Saved batch %s for vendor %s\n", result.BatchID, result.VendorName)
	case result.PersistError != "":
		fmt.Fprintf(stderr, "warning: batch not saved: %s\n", result.PersistError)
	}

	return exitCodeFor(result.Refund.Tier)
}

func writeOutputs(files map[string][]byte, paths map[string]string, stdout io.Writer) error {
	for _, name := range []string{report.ResultsFile, report.SummaryFile, report.ReportFile} {
		path := paths[name]
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
		if err := os.WriteFile(path, files[name], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		fmt.Fprintf(stdout, "Wrote %s\n", path)
	}
	return nil
}
