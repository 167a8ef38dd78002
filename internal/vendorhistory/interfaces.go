package vendorhistory

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository reads vendor and batch history
type Repository interface {
	ListVendorSummaries(ctx context.Context) ([]VendorSummary, error)
	GetVendorSummaryByName(ctx context.Context, name string) (*VendorSummary, error)
	GetVendorBatches(ctx context.Context, vendorID uuid.UUID) ([]BatchEntry, error)
	GetHighFraudBatches(ctx context.Context, threshold float64, limit int) ([]BatchEntry, error)
	GetFraudTrends(ctx context.Context, since time.Time) ([]TrendPoint, error)
	GetRefundSummary(ctx context.Context) (*RefundSummary, error)
	UpdateVendorStatus(ctx context.Context, vendorID uuid.UUID, status, notes string) error
}

// Cache stores JSON snapshots, satisfied by pkg/redis.Client
type Cache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) error
	SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// HistoryService is what the handler and CLI need
type HistoryService interface {
	ListVendors(ctx context.Context) ([]VendorSummary, error)
	GetVendorHistory(ctx context.Context, name string) (*VendorHistory, error)
	HighFraudBatches(ctx context.Context, threshold float64, limit int) ([]BatchEntry, error)
	FraudTrends(ctx context.Context, days int) (*TrendReport, error)
	RefundSummary(ctx context.Context) (*RefundSummary, error)
	Overview(ctx context.Context) (*Overview, error)
	UpdateVendorStatus(ctx context.Context, vendorID uuid.UUID, req *UpdateStatusRequest) error
}
