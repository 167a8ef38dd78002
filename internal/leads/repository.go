package leads

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/richxcame/lead-forensics/internal/scoring"
	"github.com/richxcame/lead-forensics/pkg/database"
)

// LeadInsertChunkSize bounds the rows written by a single INSERT
const LeadInsertChunkSize = 500

const leadColumnCount = 17

// PostgresRepository stores batches in PostgreSQL
type PostgresRepository struct {
	db *sql.DB
}

var _ Repository = (*PostgresRepository)(nil)

// NewRepository creates a new batch repository
func NewRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetOrCreateVendor returns the vendor with this name, creating it on first use
func (r *PostgresRepository) GetOrCreateVendor(ctx context.Context, name string) (*Vendor, error) {
	query := `
		INSERT INTO vendors (id, vendor_name)
		VALUES ($1, $2)
		ON CONFLICT (vendor_name) DO UPDATE SET updated_at = NOW()
		RETURNING id, vendor_name, vendor_status, COALESCE(notes, ''), created_at, updated_at
	`

	var v Vendor
	err := r.db.QueryRowContext(ctx, query, uuid.New(), name).Scan(
		&v.ID,
		&v.Name,
		&v.Status,
		&v.Notes,
		&v.CreatedAt,
		&v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// execer is satisfied by *sql.DB and *sql.Tx
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// SaveBatch writes the batch row, its leads and its indicators in one
// transaction. Nothing is kept when any insert fails.
func (r *PostgresRepository) SaveBatch(ctx context.Context, b *Batch, records []*LeadRecord, indicators []*FraudIndicator) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := insertBatch(ctx, tx, b); err != nil {
		return err
	}
	if err := insertLeads(ctx, tx, b.ID, records); err != nil {
		return err
	}
	if err := insertFraudIndicators(ctx, tx, b.ID, indicators); err != nil {
		return fmt.Errorf("insert fraud indicators: %w", err)
	}

	return tx.Commit()
}

func insertBatch(ctx context.Context, q execer, b *Batch) error {
	query := `
		INSERT INTO batches (
			id, vendor_id, batch_identifier, batch_date, lead_count, fraudulent_count,
			valid_count, fraud_percentage, refund_status, refund_percentage, refund_amount,
			cost_per_lead, total_batch_cost, avg_fraud_score, avg_contact_score,
			avg_duplicate_score, avg_quality_score, input_filename
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`

	_, err := q.ExecContext(ctx, query,
		b.ID,
		b.VendorID,
		b.BatchIdentifier,
		b.BatchDate,
		b.LeadCount,
		b.FraudulentCount,
		b.ValidCount,
		b.FraudPercentage,
		b.RefundStatus,
		b.RefundPercentage,
		b.RefundAmount,
		b.CostPerLead,
		b.TotalBatchCost,
		b.AvgFraudScore,
		b.AvgContactScore,
		b.AvgDuplicateScore,
		b.AvgQualityScore,
		nullString(b.InputFilename),
	)
	if database.IsUniqueViolation(err) {
		return ErrDuplicateBatch
	}
	if err != nil {
		return fmt.Errorf("insert batch: %w", err)
	}
	return nil
}

// insertLeads writes the scored leads LeadInsertChunkSize rows at a time
func insertLeads(ctx context.Context, q execer, batchID uuid.UUID, records []*LeadRecord) error {
	for start := 0; start < len(records); start += LeadInsertChunkSize {
		end := min(start+LeadInsertChunkSize, len(records))
		query, args := buildLeadInsert(batchID, records[start:end])
		if _, err := q.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert leads %d-%d: %w", start, end-1, err)
		}
	}
	return nil
}

func buildLeadInsert(batchID uuid.UUID, records []*LeadRecord) (string, []interface{}) {
	var sb strings.Builder
	sb.WriteString(`INSERT INTO leads (
		id, batch_id, position, lead_name, lead_email, lead_phone, lead_address,
		lead_city, lead_state, lead_zip, fraud_score, classification, is_fraudulent,
		contact_score, duplicate_score, quality_score, fraud_reasons
	) VALUES `)

	args := make([]interface{}, 0, len(records)*leadColumnCount)
	for i, rec := range records {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteByte('(')
		for c := 0; c < leadColumnCount; c++ {
			if c > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "$%d", i*leadColumnCount+c+1)
		}
		sb.WriteByte(')')

		args = append(args,
			rec.ID,
			batchID,
			rec.Position,
			nullString(rec.Lead.Name),
			nullString(rec.Lead.Email),
			nullString(rec.Lead.Phone),
			nullString(rec.Lead.Address),
			nullString(rec.Lead.City),
			nullString(rec.Lead.State),
			nullString(rec.Lead.Zip),
			rec.FraudScore,
			string(rec.Classification),
			rec.IsFraudulent,
			rec.Breakdown.Contact,
			rec.Breakdown.Duplicate,
			rec.Breakdown.Quality,
			joinReasons(rec.Reasons),
		)
	}

	return sb.String(), args
}

func insertFraudIndicators(ctx context.Context, q execer, batchID uuid.UUID, indicators []*FraudIndicator) error {
	if len(indicators) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO batch_fraud_indicators (
		id, batch_id, indicator_name, indicator_category, affected_lead_count,
		percentage, points_per_lead, total_points
	) VALUES `)

	const cols = 8
	args := make([]interface{}, 0, len(indicators)*cols)
	for i, ind := range indicators {
		if i > 0 {
			sb.WriteString(", ")
		}
		n := i * cols
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)", n+1, n+2, n+3, n+4, n+5, n+6, n+7, n+8)
		args = append(args,
			ind.ID,
			batchID,
			ind.Name,
			ind.Category,
			ind.AffectedLeadCount,
			ind.Percentage,
			ind.PointsPerLead,
			ind.TotalPoints,
		)
	}

	_, err := q.ExecContext(ctx, sb.String(), args...)
	return err
}

const batchColumns = `
	b.id, b.vendor_id, v.vendor_name, b.batch_identifier, b.batch_date, b.lead_count,
	b.fraudulent_count, b.valid_count, b.fraud_percentage, b.refund_status,
	b.refund_percentage, b.refund_amount, b.cost_per_lead, b.total_batch_cost,
	b.avg_fraud_score, b.avg_contact_score, b.avg_duplicate_score, b.avg_quality_score,
	COALESCE(b.input_filename, '')
`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBatch(row rowScanner) (*Batch, error) {
	var b Batch
	var costPerLead, totalCost sql.NullFloat64

	err := row.Scan(
		&b.ID,
		&b.VendorID,
		&b.VendorName,
		&b.BatchIdentifier,
		&b.BatchDate,
		&b.LeadCount,
		&b.FraudulentCount,
		&b.ValidCount,
		&b.FraudPercentage,
		&b.RefundStatus,
		&b.RefundPercentage,
		&b.RefundAmount,
		&costPerLead,
		&totalCost,
		&b.AvgFraudScore,
		&b.AvgContactScore,
		&b.AvgDuplicateScore,
		&b.AvgQualityScore,
		&b.InputFilename,
	)
	if err != nil {
		return nil, err
	}

	if costPerLead.Valid {
		b.CostPerLead = &costPerLead.Float64
	}
	if totalCost.Valid {
		b.TotalBatchCost = &totalCost.Float64
	}
	return &b, nil
}

// GetBatch retrieves a batch by ID
func (r *PostgresRepository) GetBatch(ctx context.Context, batchID uuid.UUID) (*Batch, error) {
	query := `SELECT ` + batchColumns + `
		FROM batches b
		JOIN vendors v ON v.id = b.vendor_id
		WHERE b.id = $1
	`

	b, err := scanBatch(r.db.QueryRowContext(ctx, query, batchID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return b, err
}

// ListBatches lists batches newest first. An empty vendor name lists every vendor.
func (r *PostgresRepository) ListBatches(ctx context.Context, vendorName string, limit, offset int) ([]*Batch, int64, error) {
	where := ""
	args := []interface{}{}
	if vendorName != "" {
		where = "WHERE v.vendor_name = $1"
		args = append(args, vendorName)
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM batches b JOIN vendors v ON v.id = b.vendor_id ` + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s
		FROM batches b
		JOIN vendors v ON v.id = b.vendor_id
		%s
		ORDER BY b.batch_date DESC
		LIMIT $%d OFFSET $%d
	`, batchColumns, where, len(args)+1, len(args)+2)

	rows, err := r.db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	batches := make([]*Batch, 0)
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, 0, err
		}
		batches = append(batches, b)
	}

	return batches, total, rows.Err()
}

const leadColumns = `
	l.id, l.batch_id, l.position,
	COALESCE(l.lead_name, ''), COALESCE(l.lead_email, ''), COALESCE(l.lead_phone, ''),
	COALESCE(l.lead_address, ''), COALESCE(l.lead_city, ''), COALESCE(l.lead_state, ''),
	COALESCE(l.lead_zip, ''), l.fraud_score, l.classification, l.is_fraudulent,
	l.contact_score, l.duplicate_score, l.quality_score, l.fraud_reasons
`

func scanLead(row rowScanner, extra ...interface{}) (*LeadRecord, error) {
	var rec LeadRecord
	var classification, reasons string
	dest := []interface{}{
		&rec.ID,
		&rec.BatchID,
		&rec.Position,
		&rec.Lead.Name,
		&rec.Lead.Email,
		&rec.Lead.Phone,
		&rec.Lead.Address,
		&rec.Lead.City,
		&rec.Lead.State,
		&rec.Lead.Zip,
		&rec.FraudScore,
		&classification,
		&rec.IsFraudulent,
		&rec.Breakdown.Contact,
		&rec.Breakdown.Duplicate,
		&rec.Breakdown.Quality,
		&reasons,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	rec.Classification = scoring.Classification(classification)
	rec.Reasons = splitReasons(reasons)
	return &rec, nil
}

// GetLeadsByBatch returns a page of scored leads in input order, optionally
// only the fraudulent ones
func (r *PostgresRepository) GetLeadsByBatch(ctx context.Context, batchID uuid.UUID, fraudulentOnly bool, limit, offset int) ([]*LeadRecord, int64, error) {
	where := "WHERE l.batch_id = $1"
	if fraudulentOnly {
		where += " AND l.is_fraudulent"
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM leads l `+where, batchID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + leadColumns + `
		FROM leads l
		` + where + `
		ORDER BY l.position
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, batchID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	records := make([]*LeadRecord, 0)
	for rows.Next() {
		rec, err := scanLead(rows)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, rec)
	}

	return records, total, rows.Err()
}

// SearchLeads finds stored leads by exact email or phone across every batch,
// newest batch first. At least one of the two must be set.
func (r *PostgresRepository) SearchLeads(ctx context.Context, email, phone string, limit int) ([]*LeadMatch, error) {
	var conds []string
	var args []interface{}
	if email != "" {
		args = append(args, email)
		conds = append(conds, fmt.Sprintf("l.lead_email = $%d", len(args)))
	}
	if phone != "" {
		args = append(args, phone)
		conds = append(conds, fmt.Sprintf("l.lead_phone = $%d", len(args)))
	}
	if len(conds) == 0 {
		return []*LeadMatch{}, nil
	}
	args = append(args, limit)

	query := fmt.Sprintf(`SELECT %s, b.batch_identifier, b.vendor_id, v.vendor_name, b.batch_date
		FROM leads l
		JOIN batches b ON b.id = l.batch_id
		JOIN vendors v ON v.id = b.vendor_id
		WHERE %s
		ORDER BY b.batch_date DESC, l.position
		LIMIT $%d
	`, leadColumns, strings.Join(conds, " OR "), len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]*LeadMatch, 0)
	for rows.Next() {
		var m LeadMatch
		rec, err := scanLead(rows, &m.BatchIdentifier, &m.VendorID, &m.VendorName, &m.BatchDate)
		if err != nil {
			return nil, err
		}
		m.LeadRecord = *rec
		matches = append(matches, &m)
	}

	return matches, rows.Err()
}

// GetFraudIndicators returns a batch's indicators, most frequent first
func (r *PostgresRepository) GetFraudIndicators(ctx context.Context, batchID uuid.UUID) ([]*FraudIndicator, error) {
	query := `
		SELECT id, batch_id, indicator_name, indicator_category, affected_lead_count,
		       percentage, points_per_lead, total_points
		FROM batch_fraud_indicators
		WHERE batch_id = $1
		ORDER BY affected_lead_count DESC, indicator_name
	`

	rows, err := r.db.QueryContext(ctx, query, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	indicators := make([]*FraudIndicator, 0)
	for rows.Next() {
		var ind FraudIndicator
		if err := rows.Scan(
			&ind.ID,
			&ind.BatchID,
			&ind.Name,
			&ind.Category,
			&ind.AffectedLeadCount,
			&ind.Percentage,
			&ind.PointsPerLead,
			&ind.TotalPoints,
		); err != nil {
			return nil, err
		}
		indicators = append(indicators, &ind)
	}

	return indicators, rows.Err()
}

// TopIndicators ranks indicators by how many batches they appeared in
func (r *PostgresRepository) TopIndicators(ctx context.Context, limit int) ([]*IndicatorFrequency, error) {
	query := `
		SELECT indicator_name, indicator_category, COUNT(*), COALESCE(SUM(affected_lead_count), 0)
		FROM batch_fraud_indicators
		GROUP BY indicator_name, indicator_category
		ORDER BY 3 DESC, indicator_name
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	top := make([]*IndicatorFrequency, 0)
	for rows.Next() {
		var f IndicatorFrequency
		if err := rows.Scan(&f.Name, &f.Category, &f.BatchCount, &f.AffectedLeads); err != nil {
			return nil, err
		}
		top = append(top, &f)
	}

	return top, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
