package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/bookstore_api/internal/models"
	"github.com/GTDGit/bookstore_api/internal/utils"
)

const quoteColumns = `id, session_id, to_district_id, to_ward_code, service_type_id,
	weight, length, width, height, insurance_value, item_count,
	total, service_fee, insurance_fee, created_at`

// QuoteRepository stores the shipping quote log.
type QuoteRepository struct {
	db *sqlx.DB
}

// NewQuoteRepository creates a new QuoteRepository.
func NewQuoteRepository(db *sqlx.DB) *QuoteRepository {
	return &QuoteRepository{db: db}
}

// Create inserts a quote and fills its id and created_at.
func (r *QuoteRepository) Create(ctx context.Context, q *models.QuoteRecord) error {
	const query = `
		INSERT INTO shipping_quotes (
			session_id, to_district_id, to_ward_code, service_type_id,
			weight, length, width, height, insurance_value, item_count,
			total, service_fee, insurance_fee
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at`
	return r.db.QueryRowxContext(ctx, query,
		q.SessionID, q.ToDistrictID, q.ToWardCode, q.ServiceTypeID,
		q.Weight, q.Length, q.Width, q.Height, q.InsuranceValue, q.ItemCount,
		q.Total, q.ServiceFee, q.InsuranceFee,
	).Scan(&q.ID, &q.CreatedAt)
}

// GetByID returns one quote.
func (r *QuoteRepository) GetByID(ctx context.Context, id int64) (*models.QuoteRecord, error) {
	var q models.QuoteRecord
	err := r.db.GetContext(ctx, &q, `SELECT `+quoteColumns+` FROM shipping_quotes WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, utils.ErrQuoteNotFound
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// List returns a page of quotes, newest first. page starts at 1.
func (r *QuoteRepository) List(ctx context.Context, page, limit int) ([]models.QuoteRecord, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}
	offset := (page - 1) * limit

	quotes := []models.QuoteRecord{}
	err := r.db.SelectContext(ctx, &quotes,
		`SELECT `+quoteColumns+` FROM shipping_quotes ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, err
	}
	return quotes, nil
}

// Count returns the number of logged quotes.
func (r *QuoteRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM shipping_quotes`); err != nil {
		return 0, err
	}
	return total, nil
}
