package stock

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository reads the movement journal.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListMovements returns journal entries, newest first.
func (r *Repository) ListMovements(ctx context.Context, filter MovementFilter) ([]Movement, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if filter.ProductID != 0 {
		argCount++
		where += ` AND product_id = $` + strconv.Itoa(argCount)
		args = append(args, filter.ProductID)
	}
	if filter.DocType != "" {
		argCount++
		where += ` AND doc_type = $` + strconv.Itoa(argCount)
		args = append(args, filter.DocType)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 200
	}
	query := `SELECT id, ref, product_id, direction, qty, doc_type, doc_id, created_at
FROM stock_movements` + where + ` ORDER BY id DESC LIMIT $` + strconv.Itoa(argCount+1) + ` OFFSET $` + strconv.Itoa(argCount+2)
	args = append(args, limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	movements := []Movement{}
	for rows.Next() {
		var m Movement
		var direction string
		if err := rows.Scan(&m.ID, &m.Ref, &m.ProductID, &direction, &m.Qty, &m.DocType, &m.DocID, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.Direction = Direction(direction)
		movements = append(movements, m)
	}
	return movements, rows.Err()
}
