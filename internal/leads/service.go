package leads

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/lead-forensics/internal/report"
	"github.com/richxcame/lead-forensics/internal/scoring"
	"github.com/richxcame/lead-forensics/pkg/common"
	"github.com/richxcame/lead-forensics/pkg/eventbus"
	"github.com/richxcame/lead-forensics/pkg/logger"
	"go.uber.org/zap"
)

// EventBatchScored is published after every processed batch
const EventBatchScored = "batch.scored"

// BatchScoredEvent is the payload of EventBatchScored
type BatchScoredEvent struct {
	BatchID          *uuid.UUID `json:"batch_id,omitempty"`
	VendorName       string     `json:"vendor_name"`
	BatchIdentifier  string     `json:"batch_identifier"`
	TotalLeads       int        `json:"total_leads"`
	FraudulentLeads  int        `json:"fraudulent_leads"`
	FraudPercentage  float64    `json:"fraud_percentage"`
	RefundTier       string     `json:"refund_tier"`
	RefundPercentage float64    `json:"refund_percentage"`
	RefundAmount     float64    `json:"refund_amount,omitempty"`
	Persisted        bool       `json:"persisted"`
}

// Options configures a Service
type Options struct {
	// Workers above one switch to the concurrent two-pass scorer
	Workers int
	// Subject is the event bus subject for batch events
	Subject string
	Source  string
}

// Service scores batches and hands the outcome to its collaborators.
// The repository, publisher and archiver are all optional.
type Service struct {
	scorer    *scoring.Scorer
	repo      Repository
	publisher eventbus.Publisher
	archiver  ReportArchiver
	opts      Options
	now       func() time.Time
}

// NewService creates a batch service
func NewService(scorer *scoring.Scorer, repo Repository, publisher eventbus.Publisher, archiver ReportArchiver, opts Options) *Service {
	if scorer == nil {
		scorer = scoring.NewScorer(nil)
	}
	if publisher == nil {
		publisher = eventbus.Noop{}
	}
	if opts.Source == "" {
		opts.Source = "lead-forensics"
	}
	return &Service{
		scorer:    scorer,
		repo:      repo,
		publisher: publisher,
		archiver:  archiver,
		opts:      opts,
		now:       time.Now,
	}
}

// ProcessBatch scores, aggregates and summarizes a batch, then persists,
// archives and announces it. Failures after scoring are logged and reported
// on the result; they never change the computed scores.
func (s *Service) ProcessBatch(ctx context.Context, req *ProcessRequest) (*BatchResult, error) {
	vendor := strings.TrimSpace(req.VendorName)
	if vendor == "" {
		return nil, common.NewBadRequestError("vendor name is required", nil)
	}
	if len(req.Leads) == 0 {
		return nil, common.NewBadRequestError("batch contains no leads", scoring.ErrEmptyBatch)
	}

	analyzedAt := s.now()
	identifier := strings.TrimSpace(req.BatchIdentifier)
	if identifier == "" {
		identifier = analyzedAt.Format(BatchIdentifierLayout)
	}

	log := logger.WithContext(ctx).With(zap.String("vendor", vendor), zap.String("batch_id", identifier))

	start := time.Now()
	results, err := s.score(ctx, req.Leads)
	if err != nil {
		return nil, fmt.Errorf("score batch: %w", err)
	}
	batchScoringSeconds.Observe(time.Since(start).Seconds())

	refund, err := scoring.AggregateBatch(results)
	if err != nil {
		return nil, err
	}
	stats, err := scoring.Summarize(results)
	if err != nil {
		return nil, err
	}

	result := &BatchResult{
		VendorName:      vendor,
		BatchIdentifier: identifier,
		InputFilename:   req.InputFilename,
		AnalyzedAt:      analyzedAt,
		CostPerLead:     req.CostPerLead,
		Refund:          refund,
		Stats:           stats,
		Indicators:      scoring.BuildIndicators(results),
		Leads:           req.Leads,
		Results:         results,
	}
	if req.CostPerLead > 0 {
		result.BatchCost = float64(len(results)) * req.CostPerLead
		result.RefundAmount = refund.RefundAmount(result.BatchCost)
	}

	log.Info("Batch scored",
		zap.Int("lead_count", refund.TotalLeads),
		zap.Int("fraudulent_leads", refund.FraudulentLeads),
		zap.Float64("fraud_percentage", refund.FraudPercentage),
		zap.String("refund_tier", string(refund.Tier)),
	)

	if req.Persist {
		s.persist(ctx, result)
	}
	if req.Archive {
		s.archive(ctx, result)
	}
	s.publish(ctx, result)
	recordBatchMetrics(refund, stats)

	return result, nil
}

func (s *Service) score(ctx context.Context, leads []scoring.Lead) ([]scoring.ScoreResult, error) {
	if s.opts.Workers > 1 {
		return s.scorer.ScoreBatchConcurrent(ctx, leads, s.opts.Workers)
	}
	return s.scorer.ScoreBatch(leads), nil
}

func (s *Service) persist(ctx context.Context, result *BatchResult) {
	log := logger.WithContext(ctx).With(zap.String("vendor", result.VendorName), zap.String("batch_id", result.BatchIdentifier))

	if s.repo == nil {
		result.PersistError = "database not configured"
		log.Warn("Database not available, skipping batch save")
		return
	}

	if err := s.save(ctx, result); err != nil {
		persistFailuresTotal.WithLabelValues("persist").Inc()
		result.PersistError = err.Error()
		log.Error("Failed to save batch", zap.Error(err))
		return
	}
	result.Persisted = true
	log.Info("Batch saved", zap.String("batch_uuid", result.BatchID.String()))
}

func (s *Service) save(ctx context.Context, result *BatchResult) error {
	vendor, err := s.repo.GetOrCreateVendor(ctx, result.VendorName)
	if err != nil {
		return fmt.Errorf("get or create vendor: %w", err)
	}

	batch := newBatchRecord(vendor, result)

	records := make([]*LeadRecord, len(result.Results))
	for i, r := range result.Results {
		records[i] = &LeadRecord{
			ID:             uuid.New(),
			BatchID:        batch.ID,
			Position:       i,
			Lead:           result.Leads[i],
			FraudScore:     r.Score,
			Classification: r.Classification,
			IsFraudulent:   r.IsFraudulent,
			Breakdown:      r.Breakdown,
			Reasons:        r.Reasons,
		}
	}

	indicators := make([]*FraudIndicator, len(result.Indicators))
	for i, ind := range result.Indicators {
		indicators[i] = &FraudIndicator{ID: uuid.New(), BatchID: batch.ID, Indicator: ind}
	}

	if err := s.repo.SaveBatch(ctx, batch, records, indicators); err != nil {
		return fmt.Errorf("save batch: %w", err)
	}

	result.VendorID = &vendor.ID
	result.BatchID = &batch.ID
	return nil
}

func newBatchRecord(vendor *Vendor, result *BatchResult) *Batch {
	b := &Batch{
		ID:                uuid.New(),
		VendorID:          vendor.ID,
		VendorName:        vendor.Name,
		BatchIdentifier:   result.BatchIdentifier,
		BatchDate:         result.AnalyzedAt,
		LeadCount:         result.Refund.TotalLeads,
		FraudulentCount:   result.Refund.FraudulentLeads,
		ValidCount:        result.Refund.ValidLeads,
		FraudPercentage:   result.Refund.FraudPercentage,
		RefundStatus:      result.Refund.Tier.Label(),
		RefundPercentage:  result.Refund.RefundPercentage,
		RefundAmount:      result.RefundAmount,
		AvgFraudScore:     result.Stats.AverageScore,
		AvgContactScore:   result.Stats.AverageContact,
		AvgDuplicateScore: result.Stats.AverageDuplicate,
		AvgQualityScore:   result.Stats.AverageQuality,
		InputFilename:     result.InputFilename,
	}
	if result.CostPerLead > 0 {
		cost, total := result.CostPerLead, result.BatchCost
		b.CostPerLead = &cost
		b.TotalBatchCost = &total
	}
	return b
}

func (s *Service) archive(ctx context.Context, result *BatchResult) {
	if s.archiver == nil {
		return
	}
	uploaded, err := s.archiver.Archive(ctx, ReportBatch(result))
	for _, u := range uploaded {
		result.ArchivedKeys = append(result.ArchivedKeys, u.Key)
	}
	if err != nil {
		persistFailuresTotal.WithLabelValues("archive").Inc()
		logger.WithContext(ctx).Error("Failed to archive batch reports",
			zap.String("vendor", result.VendorName),
			zap.String("batch_id", result.BatchIdentifier),
			zap.Error(err),
		)
	}
}

func (s *Service) publish(ctx context.Context, result *BatchResult) {
	payload := BatchScoredEvent{
		BatchID:          result.BatchID,
		VendorName:       result.VendorName,
		BatchIdentifier:  result.BatchIdentifier,
		TotalLeads:       result.Refund.TotalLeads,
		FraudulentLeads:  result.Refund.FraudulentLeads,
		FraudPercentage:  result.Refund.FraudPercentage,
		RefundTier:       string(result.Refund.Tier),
		RefundPercentage: result.Refund.RefundPercentage,
		RefundAmount:     result.RefundAmount,
		Persisted:        result.Persisted,
	}

	event, err := eventbus.NewEvent(ctx, EventBatchScored, s.opts.Source, payload)
	if err == nil {
		err = s.publisher.Publish(ctx, s.opts.Subject, event)
	}
	if err != nil {
		persistFailuresTotal.WithLabelValues("publish").Inc()
		logger.WithContext(ctx).Warn("Failed to publish batch event",
			zap.String("batch_id", result.BatchIdentifier),
			zap.Error(err),
		)
	}
}

// ReportBatch converts a processed batch into report input
func ReportBatch(result *BatchResult) *report.Batch {
	return &report.Batch{
		Vendor:      result.VendorName,
		BatchID:     result.BatchIdentifier,
		SourceFile:  result.InputFilename,
		CostPerLead: result.CostPerLead,
		AnalyzedAt:  result.AnalyzedAt,
		Leads:       result.Leads,
		Results:     result.Results,
		Refund:      result.Refund,
		Stats:       result.Stats,
		Indicators:  result.Indicators,
	}
}

// GetBatch returns a persisted batch
func (s *Service) GetBatch(ctx context.Context, batchID uuid.UUID) (*Batch, error) {
	if s.repo == nil {
		return nil, common.NewServiceUnavailableError("database not configured")
	}
	batch, err := s.repo.GetBatch(ctx, batchID)
	if errors.Is(err, ErrNotFound) {
		return nil, common.NewNotFoundError("batch not found", err)
	}
	if err != nil {
		return nil, common.NewInternalError("failed to load batch", err)
	}
	return batch, nil
}

// ListBatches lists persisted batches, newest first, optionally for one vendor
func (s *Service) ListBatches(ctx context.Context, vendorName string, limit, offset int) ([]*Batch, int64, error) {
	if s.repo == nil {
		return nil, 0, common.NewServiceUnavailableError("database not configured")
	}
	batches, total, err := s.repo.ListBatches(ctx, vendorName, limit, offset)
	if err != nil {
		return nil, 0, common.NewInternalError("failed to list batches", err)
	}
	return batches, total, nil
}

// GetBatchLeads returns a page of a batch's scored leads in input order
func (s *Service) GetBatchLeads(ctx context.Context, batchID uuid.UUID, fraudulentOnly bool, limit, offset int) ([]*LeadRecord, int64, error) {
	if _, err := s.GetBatch(ctx, batchID); err != nil {
		return nil, 0, err
	}
	records, total, err := s.repo.GetLeadsByBatch(ctx, batchID, fraudulentOnly, limit, offset)
	if err != nil {
		return nil, 0, common.NewInternalError("failed to load leads", err)
	}
	return records, total, nil
}

// GetBatchIndicators returns a batch's fraud indicators
func (s *Service) GetBatchIndicators(ctx context.Context, batchID uuid.UUID) ([]*FraudIndicator, error) {
	if _, err := s.GetBatch(ctx, batchID); err != nil {
		return nil, err
	}
	indicators, err := s.repo.GetFraudIndicators(ctx, batchID)
	if err != nil {
		return nil, common.NewInternalError("failed to load fraud indicators", err)
	}
	return indicators, nil
}

// SearchLeads finds stored leads by exact email and/or phone across all batches
func (s *Service) SearchLeads(ctx context.Context, email, phone string, limit int) ([]*LeadMatch, error) {
	email, phone = strings.TrimSpace(email), strings.TrimSpace(phone)
	if email == "" && phone == "" {
		return nil, common.NewBadRequestError("email or phone is required", nil)
	}
	if s.repo == nil {
		return nil, common.NewServiceUnavailableError("database not configured")
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	limit = min(limit, MaxSearchLimit)

	matches, err := s.repo.SearchLeads(ctx, email, phone, limit)
	if err != nil {
		return nil, common.NewInternalError("failed to search leads", err)
	}
	return matches, nil
}

// TopIndicators returns the indicators that appeared in the most batches
func (s *Service) TopIndicators(ctx context.Context, limit int) ([]*IndicatorFrequency, error) {
	if s.repo == nil {
		return nil, common.NewServiceUnavailableError("database not configured")
	}
	if limit <= 0 {
		limit = DefaultTopIndicators
	}
	limit = min(limit, MaxTopIndicators)

	top, err := s.repo.TopIndicators(ctx, limit)
	if err != nil {
		return nil, common.NewInternalError("failed to load top indicators", err)
	}
	return top, nil
}
