package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"kebab-orders/pkg/domain"

	"github.com/lib/pq"
)

const uniqueViolation = "23505"

// PostgresRepository keeps one JSON document per order.
type PostgresRepository struct {
	DB *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{DB: db}
}

func (r *PostgresRepository) FindOrders(ctx context.Context, filters map[string]any) ([]domain.Order, error) {
	if filters == nil {
		filters = map[string]any{}
	}
	filter, err := json.Marshal(filters)
	if err != nil {
		return nil, fmt.Errorf("failed to encode filters: %w", err)
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT doc FROM orders
		WHERE doc @> $1::jsonb
		ORDER BY created_at, id
	`, string(filter))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		order, err := decodeOrder(raw)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}
	return orders, rows.Err()
}

func (r *PostgresRepository) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	var raw []byte
	err := r.DB.QueryRowContext(ctx, `SELECT doc FROM orders WHERE id = $1`, id).Scan(&raw)
	if err != nil {
		return nil, notFound(err)
	}
	return decodeOrder(raw)
}

func (r *PostgresRepository) InsertOrder(ctx context.Context, order *domain.Order) error {
	doc, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("failed to encode order: %w", err)
	}

	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO orders (id, doc, created_at)
		VALUES ($1, $2::jsonb, $3)
	`, order.ID, string(doc), order.Timestamp)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return domain.ErrDuplicateOrder
		}
		return err
	}
	return nil
}

func (r *PostgresRepository) UpdateOrderStatus(ctx context.Context, id string, status domain.Status) (*domain.Order, error) {
	var raw []byte
	err := r.DB.QueryRowContext(ctx, `
		UPDATE orders
		SET doc = jsonb_set(doc, '{status}', to_jsonb($2::text))
		WHERE id = $1
		RETURNING doc
	`, id, string(status)).Scan(&raw)
	if err != nil {
		return nil, notFound(err)
	}
	return decodeOrder(raw)
}

func (r *PostgresRepository) DeleteOrder(ctx context.Context, id string) (*domain.Order, error) {
	var raw []byte
	err := r.DB.QueryRowContext(ctx, `DELETE FROM orders WHERE id = $1 RETURNING doc`, id).Scan(&raw)
	if err != nil {
		return nil, notFound(err)
	}
	return decodeOrder(raw)
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrOrderNotFound
	}
	return err
}

func decodeOrder(raw []byte) (*domain.Order, error) {
	var order domain.Order
	if err := json.Unmarshal(raw, &order); err != nil {
		return nil, fmt.Errorf("failed to decode order: %w", err)
	}
	return &order, nil
}
