package quotes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/calyx-commerce/quotes/internal/platform/db"
	"github.com/calyx-commerce/quotes/internal/platform/httpx"
)

var (
	ErrNotFound        = fmt.Errorf("quotation: %w", httpx.ErrNotFound)
	ErrDuplicateNumber = fmt.Errorf("quotation number: %w", httpx.ErrDuplicate)
)

type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Get(ctx context.Context, id int64) (*Quotation, error)
	GetByToken(ctx context.Context, token string) (*Quotation, error)
	List(ctx context.Context, req ListQuotationsRequest) ([]Quotation, int, error)
	Create(ctx context.Context, q Quotation) (int64, error)
	Update(ctx context.Context, id int64, updates map[string]any) error
	InsertItem(ctx context.Context, item QuotationItem) (int64, error)
	DeleteItems(ctx context.Context, quotationID int64) error
	UpdateStatus(ctx context.Context, id int64, update StatusUpdate) error
	GenerateNumber(ctx context.Context, date time.Time) (string, error)
	ExpireStale(ctx context.Context, cutoff time.Time) (int64, error)
}

// StatusUpdate carries the audit fields stamped alongside a status change.
type StatusUpdate struct {
	Status           Status
	SentAt           *time.Time
	ApprovedBy       *int64
	ApprovedAt       *time.Time
	RejectedAt       *time.Time
	RejectionReason  *string
	ConvertedOrderID *string
}

type dbtx interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

type repository struct {
	db   dbtx
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

const quotationColumns = `
	id, number, public_token, status, valid_until,
	customer_name, customer_email, customer_phone, customer_company, customer_address,
	currency, subtotal, discount_percentage, discount_amount, tax_percentage, tax_amount,
	shipping_amount, total_amount,
	notes, internal_notes, terms_and_conditions,
	created_by, approved_by, sent_at, approved_at, rejected_at, rejection_reason,
	converted_order_id, created_at, updated_at`

func scanQuotation(row pgx.Row) (*Quotation, error) {
	var q Quotation
	err := row.Scan(
		&q.ID, &q.Number, &q.PublicToken, &q.Status, &q.ValidUntil,
		&q.CustomerName, &q.CustomerEmail, &q.CustomerPhone, &q.CustomerCompany, &q.CustomerAddress,
		&q.Currency, &q.Subtotal, &q.DiscountPercent, &q.DiscountAmount, &q.TaxPercent, &q.TaxAmount,
		&q.ShippingAmount, &q.TotalAmount,
		&q.Notes, &q.InternalNotes, &q.TermsAndConditions,
		&q.CreatedBy, &q.ApprovedBy, &q.SentAt, &q.ApprovedAt, &q.RejectedAt, &q.RejectionReason,
		&q.ConvertedOrderID, &q.CreatedAt, &q.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &q, nil
}

func (r *repository) Get(ctx context.Context, id int64) (*Quotation, error) {
	q, err := scanQuotation(r.db.QueryRow(ctx,
		fmt.Sprintf("SELECT %s FROM quotations WHERE id = $1", quotationColumns), id))
	if err != nil {
		return nil, err
	}
	items, err := r.listItems(ctx, q.ID)
	if err != nil {
		return nil, err
	}
	q.Items = items
	return q, nil
}

func (r *repository) GetByToken(ctx context.Context, token string) (*Quotation, error) {
	q, err := scanQuotation(r.db.QueryRow(ctx,
		fmt.Sprintf("SELECT %s FROM quotations WHERE public_token = $1", quotationColumns), token))
	if err != nil {
		return nil, err
	}
	items, err := r.listItems(ctx, q.ID)
	if err != nil {
		return nil, err
	}
	q.Items = items
	return q, nil
}

func (r *repository) listItems(ctx context.Context, quotationID int64) ([]QuotationItem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, quotation_id, product_id, product_name, product_sku, description,
		       quantity, unit_price, discount_percentage, discount_amount, line_total,
		       sort_order, created_at, updated_at
		FROM quotation_items
		WHERE quotation_id = $1
		ORDER BY sort_order, id`, quotationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []QuotationItem
	for rows.Next() {
		var it QuotationItem
		if err := rows.Scan(
			&it.ID, &it.QuotationID, &it.ProductID, &it.ProductName, &it.ProductSKU, &it.Description,
			&it.Quantity, &it.UnitPrice, &it.DiscountPercent, &it.DiscountAmount, &it.LineTotal,
			&it.SortOrder, &it.CreatedAt, &it.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *repository) List(ctx context.Context, req ListQuotationsRequest) ([]Quotation, int, error) {
	conditions := []string{"1=1"}
	var args []any
	argPos := 1

	if req.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argPos))
		args = append(args, *req.Status)
		argPos++
	}
	if req.CustomerEmail != nil {
		conditions = append(conditions, fmt.Sprintf("customer_email = $%d", argPos))
		args = append(args, *req.CustomerEmail)
		argPos++
	}
	if req.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", argPos))
		args = append(args, *req.DateFrom)
		argPos++
	}
	if req.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("created_at < $%d", argPos))
		args = append(args, *req.DateTo)
		argPos++
	}

	whereClause := "WHERE " + strings.Join(conditions, " AND ")

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM quotations %s", whereClause)
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf("SELECT %s FROM quotations %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		quotationColumns, whereClause, argPos, argPos+1)
	args = append(args, limit, req.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Quotation
	for rows.Next() {
		q, err := scanQuotation(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *q)
	}
	return out, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, q Quotation) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO quotations (
			number, public_token, status, valid_until,
			customer_name, customer_email, customer_phone, customer_company, customer_address,
			currency, subtotal, discount_percentage, discount_amount, tax_percentage, tax_amount,
			shipping_amount, total_amount,
			notes, internal_notes, terms_and_conditions, created_by
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)
		RETURNING id`,
		q.Number, q.PublicToken, q.Status, q.ValidUntil,
		q.CustomerName, q.CustomerEmail, q.CustomerPhone, q.CustomerCompany, q.CustomerAddress,
		q.Currency, q.Subtotal, q.DiscountPercent, q.DiscountAmount, q.TaxPercent, q.TaxAmount,
		q.ShippingAmount, q.TotalAmount,
		q.Notes, q.InternalNotes, q.TermsAndConditions, q.CreatedBy,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, ErrDuplicateNumber
		}
		return 0, err
	}
	return id, nil
}

func (r *repository) Update(ctx context.Context, id int64, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}

	setClauses := make([]string, 0, len(updates)+1)
	args := make([]any, 0, len(updates)+1)
	argPos := 1
	for col, val := range updates {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", col, argPos))
		args = append(args, val)
		argPos++
	}
	setClauses = append(setClauses, "updated_at = NOW()")

	query := fmt.Sprintf("UPDATE quotations SET %s WHERE id = $%d",
		strings.Join(setClauses, ", "), argPos)
	args = append(args, id)

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) InsertItem(ctx context.Context, item QuotationItem) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO quotation_items (
			quotation_id, product_id, product_name, product_sku, description,
			quantity, unit_price, discount_percentage, discount_amount, line_total, sort_order
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING id`,
		item.QuotationID, item.ProductID, item.ProductName, item.ProductSKU, item.Description,
		item.Quantity, item.UnitPrice, item.DiscountPercent, item.DiscountAmount, item.LineTotal,
		item.SortOrder,
	).Scan(&id)
	return id, err
}

func (r *repository) DeleteItems(ctx context.Context, quotationID int64) error {
	_, err := r.db.Exec(ctx, "DELETE FROM quotation_items WHERE quotation_id = $1", quotationID)
	return err
}

func (r *repository) UpdateStatus(ctx context.Context, id int64, update StatusUpdate) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE quotations SET
			status = $1,
			sent_at = COALESCE($2, sent_at),
			approved_by = COALESCE($3, approved_by),
			approved_at = COALESCE($4, approved_at),
			rejected_at = COALESCE($5, rejected_at),
			rejection_reason = COALESCE($6, rejection_reason),
			converted_order_id = COALESCE($7, converted_order_id),
			updated_at = NOW()
		WHERE id = $8`,
		update.Status, update.SentAt, update.ApprovedBy, update.ApprovedAt,
		update.RejectedAt, update.RejectionReason, update.ConvertedOrderID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GenerateNumber produces the next document number for the month, e.g.
// QT-202608-0007. Callers run it inside the create transaction so the
// advisory lock serializes concurrent creates.
func (r *repository) GenerateNumber(ctx context.Context, date time.Time) (string, error) {
	prefix := fmt.Sprintf("QT-%s-", date.Format("200601"))

	if _, err := r.db.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", prefix); err != nil {
		return "", fmt.Errorf("acquire number lock: %w", err)
	}

	var seq int
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(MAX(CAST(SUBSTRING(number FROM $1) AS INTEGER)), 0) + 1
		FROM quotations
		WHERE number LIKE $2`,
		fmt.Sprintf(`^%s(\d+)$`, prefix), prefix+"%").Scan(&seq)
	if err != nil {
		return "", fmt.Errorf("next sequence: %w", err)
	}

	return fmt.Sprintf("%s%04d", prefix, seq), nil
}

// ExpireStale flips sent/approved quotations past their validity to expired
// and reports how many rows changed.
func (r *repository) ExpireStale(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE quotations
		SET status = $1, updated_at = NOW()
		WHERE status = ANY($2) AND valid_until < $3`,
		StatusExpired, []string{string(StatusSent), string(StatusApproved)}, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
