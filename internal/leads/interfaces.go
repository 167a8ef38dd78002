package leads

import (
	"context"

	"github.com/google/uuid"
	"github.com/richxcame/lead-forensics/internal/report"
	"github.com/richxcame/lead-forensics/pkg/storage"
)

// Repository persists scored batches
type Repository interface {
	GetOrCreateVendor(ctx context.Context, name string) (*Vendor, error)
	// SaveBatch creates the batch, its leads and its indicators atomically
	SaveBatch(ctx context.Context, batch *Batch, records []*LeadRecord, indicators []*FraudIndicator) error

	GetBatch(ctx context.Context, batchID uuid.UUID) (*Batch, error)
	ListBatches(ctx context.Context, vendorName string, limit, offset int) ([]*Batch, int64, error)
	GetLeadsByBatch(ctx context.Context, batchID uuid.UUID, fraudulentOnly bool, limit, offset int) ([]*LeadRecord, int64, error)
	SearchLeads(ctx context.Context, email, phone string, limit int) ([]*LeadMatch, error)
	GetFraudIndicators(ctx context.Context, batchID uuid.UUID) ([]*FraudIndicator, error)
	TopIndicators(ctx context.Context, limit int) ([]*IndicatorFrequency, error)
}

// ReportArchiver stores rendered batch reports
type ReportArchiver interface {
	Archive(ctx context.Context, b *report.Batch) ([]*storage.UploadResult, error)
}

// BatchService is what the HTTP handler needs from the service
type BatchService interface {
	ProcessBatch(ctx context.Context, req *ProcessRequest) (*BatchResult, error)
	GetBatch(ctx context.Context, batchID uuid.UUID) (*Batch, error)
	ListBatches(ctx context.Context, vendorName string, limit, offset int) ([]*Batch, int64, error)
	GetBatchLeads(ctx context.Context, batchID uuid.UUID, fraudulentOnly bool, limit, offset int) ([]*LeadRecord, int64, error)
	GetBatchIndicators(ctx context.Context, batchID uuid.UUID) ([]*FraudIndicator, error)
	SearchLeads(ctx context.Context, email, phone string, limit int) ([]*LeadMatch, error)
	TopIndicators(ctx context.Context, limit int) ([]*IndicatorFrequency, error)
}
