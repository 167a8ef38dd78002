package report

import (
	"bytes"
	"context"
	"fmt"

	"github.com/richxcame/lead-forensics/pkg/logger"
	"github.com/richxcame/lead-forensics/pkg/storage"
	"go.uber.org/zap"
)

// Report file names inside a batch folder
const (
	ResultsFile = "fraud_analysis.csv"
	SummaryFile = "fraud_summary.csv"
	ReportFile  = "fraud_report.txt"
)

// Archiver stores the report artifacts of a batch in object storage
type Archiver struct {
	store storage.Storage
}

// NewArchiver creates an archiver on top of store
func NewArchiver(store storage.Storage) *Archiver {
	return &Archiver{store: store}
}

// Render produces every report artifact of a batch, keyed by file name
func Render(b *Batch) (map[string][]byte, error) {
	var results, summary bytes.Buffer
	if err := WriteResultsCSV(&results, b); err != nil {
		return nil, fmt.Errorf("render results: %w", err)
	}
	if err := WriteSummaryCSV(&summary, b); err != nil {
		return nil, fmt.Errorf("render summary: %w", err)
	}

	return map[string][]byte{
		ResultsFile: results.Bytes(),
		SummaryFile: summary.Bytes(),
		ReportFile:  []byte(Summary(b)),
	}, nil
}

// Archive uploads the batch report artifacts under vendors/{vendor}/batches/{batch}/
func (a *Archiver) Archive(ctx context.Context, b *Batch) ([]*storage.UploadResult, error) {
	files, err := Render(b)
	if err != nil {
		return nil, err
	}

	uploaded := make([]*storage.UploadResult, 0, len(files))
	for _, name := range []string{ReportFile, SummaryFile, ResultsFile} {
		data := files[name]
		key := storage.BatchReportKey(b.Vendor, b.BatchID, name)

		res, err := a.store.Upload(ctx, key, bytes.NewReader(data), int64(len(data)), storage.GetMimeTypeFromExtension(name))
		if err != nil {
			return uploaded, fmt.Errorf("archive %s: %w", name, err)
		}
		uploaded = append(uploaded, res)
	}

	logger.WithContext(ctx).Info("Batch reports archived",
		zap.String("vendor", b.Vendor),
		zap.String("batch_id", b.BatchID),
		zap.Int("files", len(uploaded)),
	)
	return uploaded, nil
}
