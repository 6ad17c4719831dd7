package stock

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// dbtx is satisfied by pgx.Tx and *pgxpool.Pool.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Ref identifies the document responsible for a stock mutation.
type Ref struct {
	DocType string
	DocID   int64
}

// Decrement atomically subtracts qty from the product's stock counter and
// journals the movement. The subtraction happens in-database so concurrent
// documents touching the same product never lose updates. There is no
// negative-stock guard; the counter may go below zero.
func Decrement(ctx context.Context, tx dbtx, productID int64, qty int, ref Ref) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	if _, err := tx.Exec(ctx, `UPDATE products SET quantity = quantity - $2, updated_at = NOW() WHERE id = $1`, productID, qty); err != nil {
		return err
	}
	return journal(ctx, tx, Movement{
		Ref:       uuid.NewString(),
		ProductID: productID,
		Direction: DirectionOut,
		Qty:       qty,
		DocType:   ref.DocType,
		DocID:     ref.DocID,
	})
}

// Restore atomically adds qty back to the product's stock counter and
// journals the movement. Called once per old line item immediately before
// that line is deleted during a document update.
func Restore(ctx context.Context, tx dbtx, productID int64, qty int, ref Ref) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	if _, err := tx.Exec(ctx, `UPDATE products SET quantity = quantity + $2, updated_at = NOW() WHERE id = $1`, productID, qty); err != nil {
		return err
	}
	return journal(ctx, tx, Movement{
		Ref:       uuid.NewString(),
		ProductID: productID,
		Direction: DirectionIn,
		Qty:       qty,
		DocType:   ref.DocType,
		DocID:     ref.DocID,
	})
}

func journal(ctx context.Context, tx dbtx, m Movement) error {
	_, err := tx.Exec(ctx, `INSERT INTO stock_movements (ref, product_id, direction, qty, doc_type, doc_id, created_at)
VALUES ($1,$2,$3,$4,$5,$6,NOW())`, m.Ref, m.ProductID, string(m.Direction), m.Qty, m.DocType, m.DocID)
	return err
}
