package vendorhistory

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

const vendorSummarySelect = `
	SELECT v.id, v.vendor_name, v.vendor_status, COALESCE(v.notes, ''),
		COUNT(b.id),
		COALESCE(SUM(b.lead_count), 0),
		COALESCE(SUM(b.fraudulent_count), 0),
		COALESCE(AVG(b.fraud_percentage), 0),
		COALESCE(SUM(b.refund_amount), 0)
	FROM vendors v
	LEFT JOIN batches b ON b.vendor_id = v.id
`

const batchEntryColumns = `
	b.id, v.vendor_name, b.batch_identifier, b.batch_date, b.lead_count,
	b.fraudulent_count, b.fraud_percentage, b.refund_status, b.refund_amount`

// PostgresRepository reads vendor history from PostgreSQL
type PostgresRepository struct {
	db *sql.DB
}

var _ Repository = (*PostgresRepository)(nil)

// NewRepository creates a new vendor history repository
func NewRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanVendorSummary(row scanner) (VendorSummary, error) {
	var v VendorSummary
	err := row.Scan(
		&v.ID, &v.Name, &v.Status, &v.Notes,
		&v.TotalBatches, &v.TotalLeads, &v.FraudulentLeads,
		&v.AverageFraudRate, &v.TotalRefunds,
	)
	return v, err
}

func scanBatchEntry(row scanner) (BatchEntry, error) {
	var e BatchEntry
	err := row.Scan(
		&e.ID, &e.VendorName, &e.BatchIdentifier, &e.BatchDate, &e.LeadCount,
		&e.FraudulentCount, &e.FraudPercentage, &e.RefundStatus, &e.RefundAmount,
	)
	return e, err
}

// ListVendorSummaries returns every vendor, highest average fraud rate first
func (r *PostgresRepository) ListVendorSummaries(ctx context.Context) ([]VendorSummary, error) {
	query := vendorSummarySelect + `
		GROUP BY v.id
		ORDER BY 8 DESC, v.vendor_name
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	vendors := make([]VendorSummary, 0)
	for rows.Next() {
		v, err := scanVendorSummary(rows)
		if err != nil {
			return nil, err
		}
		vendors = append(vendors, v)
	}
	return vendors, rows.Err()
}

// GetVendorSummaryByName returns one vendor's totals
func (r *PostgresRepository) GetVendorSummaryByName(ctx context.Context, name string) (*VendorSummary, error) {
	query := vendorSummarySelect + `
		WHERE v.vendor_name = $1
		GROUP BY v.id
	`

	v, err := scanVendorSummary(r.db.QueryRowContext(ctx, query, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// GetVendorBatches returns a vendor's batches, newest first
func (r *PostgresRepository) GetVendorBatches(ctx context.Context, vendorID uuid.UUID) ([]BatchEntry, error) {
	query := `SELECT ` + batchEntryColumns + `
		FROM batches b
		JOIN vendors v ON v.id = b.vendor_id
		WHERE b.vendor_id = $1
		ORDER BY b.batch_date DESC
	`
	return r.queryBatches(ctx, query, vendorID)
}

// GetHighFraudBatches returns batches at or above threshold, newest first
func (r *PostgresRepository) GetHighFraudBatches(ctx context.Context, threshold float64, limit int) ([]BatchEntry, error) {
	query := `SELECT ` + batchEntryColumns + `
		FROM batches b
		JOIN vendors v ON v.id = b.vendor_id
		WHERE b.fraud_percentage >= $1
		ORDER BY b.batch_date DESC
		LIMIT $2
	`
	return r.queryBatches(ctx, query, threshold, limit)
}

func (r *PostgresRepository) queryBatches(ctx context.Context, query string, args ...interface{}) ([]BatchEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	batches := make([]BatchEntry, 0)
	for rows.Next() {
		e, err := scanBatchEntry(rows)
		if err != nil {
			return nil, err
		}
		batches = append(batches, e)
	}
	return batches, rows.Err()
}

// GetFraudTrends returns batches analyzed since the cutoff, oldest first
func (r *PostgresRepository) GetFraudTrends(ctx context.Context, since time.Time) ([]TrendPoint, error) {
	query := `
		SELECT batch_date, fraud_percentage, refund_status
		FROM batches
		WHERE batch_date >= $1
		ORDER BY batch_date ASC
	`

	rows, err := r.db.QueryContext(ctx, query, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	points := make([]TrendPoint, 0)
	for rows.Next() {
		var p TrendPoint
		if err := rows.Scan(&p.BatchDate, &p.FraudPercentage, &p.RefundStatus); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// GetRefundSummary counts batches per refund status
func (r *PostgresRepository) GetRefundSummary(ctx context.Context) (*RefundSummary, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE refund_status = $1),
			COUNT(*) FILTER (WHERE refund_status = $2),
			COUNT(*) FILTER (WHERE refund_status = $3),
			COALESCE(SUM(refund_amount), 0)
		FROM batches
	`

	var s RefundSummary
	err := r.db.QueryRowContext(ctx, query, refundFull, refundPartial, refundNone).Scan(
		&s.TotalBatches,
		&s.FullRefunds,
		&s.PartialRefunds,
		&s.NoRefunds,
		&s.TotalRefundAmount,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// UpdateVendorStatus sets a vendor's status. Empty notes keep the existing notes.
func (r *PostgresRepository) UpdateVendorStatus(ctx context.Context, vendorID uuid.UUID, status, notes string) error {
	query := `
		UPDATE vendors
		SET vendor_status = $2,
			notes = COALESCE(NULLIF($3, ''), notes),
			updated_at = NOW()
		WHERE id = $1
	`

	res, err := r.db.ExecContext(ctx, query, vendorID, status, notes)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
