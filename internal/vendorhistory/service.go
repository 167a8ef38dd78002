package vendorhistory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/lead-forensics/pkg/common"
	"github.com/richxcame/lead-forensics/pkg/logger"
	"github.com/richxcame/lead-forensics/pkg/validation"
	"go.uber.org/zap"
)

const (
	vendorListCacheKey = "lead_forensics:vendors:summary"
	// DefaultCacheTTL bounds how stale the cached vendor list can be
	DefaultCacheTTL = time.Minute

	topVendorCount = 10
)

// Service answers vendor history questions
type Service struct {
	repo     Repository
	cache    Cache
	cacheTTL time.Duration
	now      func() time.Time
}

var _ HistoryService = (*Service)(nil)

// NewService creates a vendor history service. cache may be nil.
func NewService(repo Repository, cache Cache) *Service {
	return &Service{
		repo:     repo,
		cache:    cache,
		cacheTTL: DefaultCacheTTL,
		now:      time.Now,
	}
}

// ListVendors returns every vendor with its totals, highest fraud rate first
func (s *Service) ListVendors(ctx context.Context) ([]VendorSummary, error) {
	if s.cache != nil {
		var cached []VendorSummary
		if err := s.cache.GetJSON(ctx, vendorListCacheKey, &cached); err == nil {
			return cached, nil
		}
	}

	vendors, err := s.repo.ListVendorSummaries(ctx)
	if err != nil {
		return nil, common.NewInternalError("failed to list vendors", err)
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, vendorListCacheKey, vendors, s.cacheTTL); err != nil {
			logger.WithContext(ctx).Warn("Failed to cache vendor list", zap.Error(err))
		}
	}
	return vendors, nil
}

// GetVendorHistory returns a vendor's batches with statistics, trend and recommendation
func (s *Service) GetVendorHistory(ctx context.Context, name string) (*VendorHistory, error) {
	if name == "" {
		return nil, common.NewBadRequestError("vendor name is required", nil)
	}

	vendor, err := s.repo.GetVendorSummaryByName(ctx, name)
	if errors.Is(err, ErrNotFound) {
		return nil, common.NewNotFoundError("vendor not found", err)
	}
	if err != nil {
		return nil, common.NewInternalError("failed to load vendor", err)
	}

	batches, err := s.repo.GetVendorBatches(ctx, vendor.ID)
	if err != nil {
		return nil, common.NewInternalError("failed to load vendor batches", err)
	}
	if batches == nil {
		batches = []BatchEntry{}
	}

	stats := ComputeStats(batches)
	return &VendorHistory{
		Vendor:         *vendor,
		Batches:        batches,
		Stats:          stats,
		Refunds:        SummarizeRefunds(batches),
		Trend:          ComputeTrend(batches),
		Recommendation: Recommend(stats.Average),
	}, nil
}

// HighFraudBatches lists batches at or above threshold percent fraud
func (s *Service) HighFraudBatches(ctx context.Context, threshold float64, limit int) ([]BatchEntry, error) {
	if threshold <= 0 {
		threshold = DefaultHighFraudThreshold
	}
	if limit <= 0 {
		limit = DefaultHighFraudLimit
	}
	if limit > MaxHighFraudLimit {
		limit = MaxHighFraudLimit
	}

	batches, err := s.repo.GetHighFraudBatches(ctx, threshold, limit)
	if err != nil {
		return nil, common.NewInternalError("failed to load high fraud batches", err)
	}
	return batches, nil
}

// FraudTrends summarizes batches analyzed in the last days
func (s *Service) FraudTrends(ctx context.Context, days int) (*TrendReport, error) {
	if days <= 0 {
		days = DefaultTrendDays
	}
	if days > MaxTrendDays {
		days = MaxTrendDays
	}

	since := s.now().AddDate(0, 0, -days)
	points, err := s.repo.GetFraudTrends(ctx, since)
	if err != nil {
		return nil, common.NewInternalError("failed to load fraud trends", err)
	}

	report := BuildTrendReport(points)
	report.Days = days
	report.Since = since
	return report, nil
}

// RefundSummary counts refunds over every batch
func (s *Service) RefundSummary(ctx context.Context) (*RefundSummary, error) {
	summary, err := s.repo.GetRefundSummary(ctx)
	if err != nil {
		return nil, common.NewInternalError("failed to load refund summary", err)
	}
	return summary, nil
}

// Overview combines refunds, vendor standing and the last month of activity
func (s *Service) Overview(ctx context.Context) (*Overview, error) {
	refunds, err := s.RefundSummary(ctx)
	if err != nil {
		return nil, err
	}
	vendors, err := s.ListVendors(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := s.FraudTrends(ctx, DefaultTrendDays)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, v := range vendors {
		counts[v.Status]++
	}

	return &Overview{
		Refunds:      refunds,
		StatusCounts: counts,
		TopVendors:   topVendors(vendors, topVendorCount),
		Recent:       recent,
	}, nil
}

// UpdateVendorStatus changes a vendor's status and invalidates the cached vendor list
func (s *Service) UpdateVendorStatus(ctx context.Context, vendorID uuid.UUID, req *UpdateStatusRequest) error {
	if err := validation.ValidateStruct(req); err != nil {
		return common.NewBadRequestError(err.Error(), err)
	}

	err := s.repo.UpdateVendorStatus(ctx, vendorID, req.Status, req.Notes)
	if errors.Is(err, ErrNotFound) {
		return common.NewNotFoundError("vendor not found", err)
	}
	if err != nil {
		return common.NewInternalError("failed to update vendor status", err)
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, vendorListCacheKey); err != nil {
			logger.WithContext(ctx).Warn("Failed to invalidate vendor cache", zap.Error(err))
		}
	}

	logger.WithContext(ctx).Info("Vendor status updated",
		zap.String("vendor_id", vendorID.String()),
		zap.String("vendor_status", req.Status),
	)
	return nil
}
