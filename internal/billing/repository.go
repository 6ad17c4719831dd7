package billing

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sobitas/backoffice/internal/clients"
	"github.com/sobitas/backoffice/internal/platform/db"
	"github.com/sobitas/backoffice/internal/shared"
	"github.com/sobitas/backoffice/internal/stock"
)

// Repository persists sales documents. Mutations run through WithTx so
// that number allocation, line replacement and stock movements commit or
// roll back as one unit.
type Repository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, tx TxRepository) error) error
	Get(ctx context.Context, docType DocType, id int64) (*Document, error)
	List(ctx context.Context, req ListDocumentsRequest) ([]Document, int, error)
}

// TxRepository is the transactional slice of the repository handed to
// the service's mutation callbacks.
type TxRepository interface {
	NextNumber(ctx context.Context, docType DocType, now time.Time) (string, error)
	InsertDocument(ctx context.Context, doc Document) (int64, error)
	GetForUpdate(ctx context.Context, docType DocType, id int64) (*Document, error)
	UpdateHeader(ctx context.Context, doc *Document) error
	UpdateTotals(ctx context.Context, id int64, totalHT, totalTVA, discount, stampDuty, shippingFee, totalTTC float64) error
	InsertLine(ctx context.Context, line Line) error
	ListLines(ctx context.Context, docID int64) ([]Line, error)
	DeleteLines(ctx context.Context, docID int64) error
	DecrementStock(ctx context.Context, productID int64, qty int, ref stock.Ref) error
	RestoreStock(ctx context.Context, productID int64, qty int, ref stock.Ref) error
	CreateClient(ctx context.Context, client clients.Client) (int64, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(ctx context.Context, tx TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

const documentColumns = `id, doc_type, number, client_id, first_name, last_name, email, phone, address, city, postal_code,
status, history, note, total_ht, total_tva, discount, stamp_duty, shipping_fee, total_ttc, created_at, updated_at`

func scanDocument(row pgx.Row) (*Document, error) {
	var (
		d        Document
		customer OrderCustomer
		first    *string
		last     *string
		status   *string
		history  *string
	)
	err := row.Scan(&d.ID, &d.DocType, &d.Number, &d.ClientID,
		&first, &last, &customer.Email, &customer.Phone, &customer.Address, &customer.City, &customer.PostalCode,
		&status, &history, &d.Note,
		&d.TotalHT, &d.TotalTVA, &d.Discount, &d.StampDuty, &d.ShippingFee, &d.TotalTTC,
		&d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if first != nil || last != nil {
		if first != nil {
			customer.FirstName = *first
		}
		if last != nil {
			customer.LastName = *last
		}
		d.Customer = &customer
	}
	if status != nil {
		s := OrderStatus(*status)
		d.Status = &s
	}
	if history != nil {
		d.History = *history
	}
	return &d, nil
}

func (r *repository) Get(ctx context.Context, docType DocType, id int64) (*Document, error) {
	doc, err := scanDocument(r.pool.QueryRow(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE doc_type = $1 AND id = $2`, docType, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	lines, err := listLines(ctx, r.pool, id)
	if err != nil {
		return nil, err
	}
	doc.Lines = lines
	return doc, nil
}

func (r *repository) List(ctx context.Context, req ListDocumentsRequest) ([]Document, int, error) {
	where := ` WHERE doc_type = $1`
	args := []interface{}{req.DocType}
	argCount := 1

	if req.Status != nil {
		argCount++
		where += ` AND status = $` + strconv.Itoa(argCount)
		args = append(args, string(*req.Status))
	}
	if req.Search != nil && *req.Search != "" {
		argCount++
		p := strconv.Itoa(argCount)
		where += ` AND (number ILIKE $` + p + ` OR first_name ILIKE $` + p + ` OR last_name ILIKE $` + p + ` OR phone ILIKE $` + p + `)`
		args = append(args, "%"+*req.Search+"%")
	}
	if req.DateFrom != nil {
		argCount++
		where += ` AND created_at >= $` + strconv.Itoa(argCount)
		args = append(args, *req.DateFrom)
	}
	if req.DateTo != nil {
		argCount++
		where += ` AND created_at <= $` + strconv.Itoa(argCount)
		args = append(args, *req.DateTo)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM documents`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT ` + documentColumns + ` FROM documents` + where +
		` ORDER BY created_at DESC, id DESC LIMIT $` + strconv.Itoa(argCount+1) + ` OFFSET $` + strconv.Itoa(argCount+2)
	args = append(args, limit, req.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	result := []Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *doc)
	}
	return result, total, rows.Err()
}

type queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func listLines(ctx context.Context, q queryer, docID int64) ([]Line, error) {
	rows, err := q.Query(ctx, `SELECT l.id, l.document_id, l.product_id, COALESCE(p.name, ''), l.quantity, l.unit_price, l.total_ht, l.tva, l.total_ttc
FROM document_lines l
LEFT JOIN products p ON p.id = l.product_id
WHERE l.document_id = $1
ORDER BY l.id`, docID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lines := []Line{}
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ID, &l.DocumentID, &l.ProductID, &l.ProductName, &l.Quantity, &l.UnitPrice, &l.TotalHT, &l.TVA, &l.TotalTTC); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

type txRepository struct {
	tx pgx.Tx
}

// NextNumber allocates the next year-scoped sequential number for a
// variant. The upsert takes a row lock on the (doc_type, year) counter,
// so a concurrent allocator blocks until this transaction ends and then
// reads the incremented value. A rolled-back transaction releases its
// number for reuse.
func (t *txRepository) NextNumber(ctx context.Context, docType DocType, now time.Time) (string, error) {
	year := now.Year()
	var seq int64
	err := t.tx.QueryRow(ctx, `INSERT INTO document_sequences (doc_type, year, seq)
VALUES ($1, $2, 1)
ON CONFLICT (doc_type, year)
DO UPDATE SET seq = document_sequences.seq + 1
RETURNING seq`,
		docType, year).Scan(&seq)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d/%04d", year, seq), nil
}

func (t *txRepository) InsertDocument(ctx context.Context, doc Document) (int64, error) {
	var (
		first, last *string
		customer    OrderCustomer
	)
	if doc.Customer != nil {
		customer = *doc.Customer
		first = &customer.FirstName
		last = &customer.LastName
	}
	var status *string
	if doc.Status != nil {
		s := string(*doc.Status)
		status = &s
	}
	var id int64
	err := t.tx.QueryRow(ctx, `INSERT INTO documents
(doc_type, number, client_id, first_name, last_name, email, phone, address, city, postal_code,
 status, history, note, total_ht, total_tva, discount, stamp_duty, shipping_fee, total_ttc, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,NOW(),NOW())
RETURNING id`,
		doc.DocType, doc.Number, doc.ClientID, first, last, customer.Email, customer.Phone,
		customer.Address, customer.City, customer.PostalCode,
		status, doc.History, doc.Note,
		doc.TotalHT, doc.TotalTVA, doc.Discount, doc.StampDuty, doc.ShippingFee, doc.TotalTTC).Scan(&id)
	return id, err
}

func (t *txRepository) GetForUpdate(ctx context.Context, docType DocType, id int64) (*Document, error) {
	doc, err := scanDocument(t.tx.QueryRow(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE doc_type = $1 AND id = $2 FOR UPDATE`, docType, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}

func (t *txRepository) UpdateHeader(ctx context.Context, doc *Document) error {
	var (
		first, last *string
		customer    OrderCustomer
	)
	if doc.Customer != nil {
		customer = *doc.Customer
		first = &customer.FirstName
		last = &customer.LastName
	}
	var status *string
	if doc.Status != nil {
		s := string(*doc.Status)
		status = &s
	}
	tag, err := t.tx.Exec(ctx, `UPDATE documents SET
client_id = $2, first_name = $3, last_name = $4, email = $5, phone = $6, address = $7, city = $8, postal_code = $9,
status = $10, history = $11, note = $12, updated_at = NOW()
WHERE id = $1`,
		doc.ID, doc.ClientID, first, last, customer.Email, customer.Phone,
		customer.Address, customer.City, customer.PostalCode,
		status, doc.History, doc.Note)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (t *txRepository) UpdateTotals(ctx context.Context, id int64, totalHT, totalTVA, discount, stampDuty, shippingFee, totalTTC float64) error {
	tag, err := t.tx.Exec(ctx, `UPDATE documents SET
total_ht = $2, total_tva = $3, discount = $4, stamp_duty = $5, shipping_fee = $6, total_ttc = $7, updated_at = NOW()
WHERE id = $1`, id, totalHT, totalTVA, discount, stampDuty, shippingFee, totalTTC)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (t *txRepository) InsertLine(ctx context.Context, line Line) error {
	_, err := t.tx.Exec(ctx, `INSERT INTO document_lines (document_id, product_id, quantity, unit_price, total_ht, tva, total_ttc)
VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		line.DocumentID, line.ProductID, line.Quantity, line.UnitPrice, line.TotalHT, line.TVA, line.TotalTTC)
	return err
}

func (t *txRepository) ListLines(ctx context.Context, docID int64) ([]Line, error) {
	return listLines(ctx, t.tx, docID)
}

func (t *txRepository) DeleteLines(ctx context.Context, docID int64) error {
	_, err := t.tx.Exec(ctx, `DELETE FROM document_lines WHERE document_id = $1`, docID)
	return err
}

func (t *txRepository) DecrementStock(ctx context.Context, productID int64, qty int, ref stock.Ref) error {
	return stock.Decrement(ctx, t.tx, productID, qty, ref)
}

func (t *txRepository) RestoreStock(ctx context.Context, productID int64, qty int, ref stock.Ref) error {
	return stock.Restore(ctx, t.tx, productID, qty, ref)
}

func (t *txRepository) CreateClient(ctx context.Context, client clients.Client) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `INSERT INTO clients (name, address, phone1, phone2, tax_id, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,NOW(),NOW()) RETURNING id`,
		client.Name, client.Address, client.Phone1, client.Phone2, client.TaxID).Scan(&id)
	return id, err
}
