package stock

import (
	"errors"
	"time"
)

// Direction enumerates supported stock movements.
type Direction string

const (
	// DirectionOut represents a decrement caused by a sales document line.
	DirectionOut Direction = "OUT"
	// DirectionIn represents a restore when a document's lines are replaced.
	DirectionIn Direction = "IN"
)

// Movement journals one stock counter mutation. The counter on the product
// row is authoritative; the journal exists so drift can be audited.
type Movement struct {
	ID        int64     `json:"id"`
	Ref       string    `json:"ref"`
	ProductID int64     `json:"product_id"`
	Direction Direction `json:"direction"`
	Qty       int       `json:"qty"`
	DocType   string    `json:"doc_type"`
	DocID     int64     `json:"doc_id"`
	CreatedAt time.Time `json:"created_at"`
}

// MovementFilter filters journal entries.
type MovementFilter struct {
	ProductID int64
	DocType   string
	Limit     int
	Offset    int
}

// ErrInvalidQuantity indicates a zero or negative movement quantity.
var ErrInvalidQuantity = errors.New("stock: quantity must be positive")
