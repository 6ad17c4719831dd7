package clients

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sobitas/backoffice/internal/shared"
)

type Repository interface {
	Get(ctx context.Context, id int64) (*Client, error)
	List(ctx context.Context, req ListClientsRequest) ([]Client, int, error)
	Create(ctx context.Context, client Client) (int64, error)
	Update(ctx context.Context, id int64, updates map[string]interface{}) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) Get(ctx context.Context, id int64) (*Client, error) {
	var c Client
	err := r.pool.QueryRow(ctx, `SELECT id, name, address, phone1, phone2, tax_id, created_at, updated_at
FROM clients WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.Address, &c.Phone1, &c.Phone2, &c.TaxID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *repository) List(ctx context.Context, req ListClientsRequest) ([]Client, int, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if req.Search != nil && *req.Search != "" {
		argCount++
		where += ` AND (name ILIKE $` + strconv.Itoa(argCount) + ` OR phone1 ILIKE $` + strconv.Itoa(argCount) + ` OR tax_id ILIKE $` + strconv.Itoa(argCount) + `)`
		args = append(args, "%"+*req.Search+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM clients`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT id, name, address, phone1, phone2, tax_id, created_at, updated_at
FROM clients` + where + ` ORDER BY name LIMIT $` + strconv.Itoa(argCount+1) + ` OFFSET $` + strconv.Itoa(argCount+2)
	args = append(args, limit, req.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	result := []Client{}
	for rows.Next() {
		var c Client
		if err := rows.Scan(&c.ID, &c.Name, &c.Address, &c.Phone1, &c.Phone2, &c.TaxID, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, err
		}
		result = append(result, c)
	}
	return result, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, client Client) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO clients (name, address, phone1, phone2, tax_id, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,NOW(),NOW()) RETURNING id`,
		client.Name, client.Address, client.Phone1, client.Phone2, client.TaxID).Scan(&id)
	return id, err
}

func (r *repository) Update(ctx context.Context, id int64, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	set := ""
	args := []interface{}{}
	argCount := 0
	for _, col := range []string{"name", "address", "phone1", "phone2", "tax_id"} {
		val, ok := updates[col]
		if !ok {
			continue
		}
		argCount++
		if set != "" {
			set += ", "
		}
		set += fmt.Sprintf("%s = $%d", col, argCount)
		args = append(args, val)
	}
	if set == "" {
		return nil
	}
	argCount++
	args = append(args, id)
	tag, err := r.pool.Exec(ctx, fmt.Sprintf(`UPDATE clients SET %s, updated_at = NOW() WHERE id = $%d`, set, argCount), args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
