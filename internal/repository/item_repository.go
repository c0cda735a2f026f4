package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/storefront/internal/model"
)

type ItemRepo struct{ DB *sql.DB }

func NewItemRepo(db *sql.DB) *ItemRepo { return &ItemRepo{DB: db} }

const itemColumns = "id,name,description,price_cents,category,in_stock,created_at,updated_at"

// Create inserts the item and fills in its ID.
func (r *ItemRepo) Create(ctx context.Context, it *model.Item) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO items (name, description, price_cents, category, in_stock) VALUES (?,?,?,?,?)",
		it.Name, it.Description, it.PriceCents, it.Category, it.InStock)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	it.ID = uint64(id)
	return nil
}

// GetByID fetches a single item.
func (r *ItemRepo) GetByID(ctx context.Context, id uint64) (model.Item, error) {
	var it model.Item
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+itemColumns+" FROM items WHERE id=? LIMIT 1", id).
		Scan(&it.ID, &it.Name, &it.Description, &it.PriceCents, &it.Category,
			&it.InStock, &it.CreatedAt, &it.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Item{}, ErrNotFound
	}
	return it, err
}

// List returns items newest first, optionally filtered by category.
func (r *ItemRepo) List(ctx context.Context, category string) ([]model.Item, error) {
	query := "SELECT " + itemColumns + " FROM items"
	args := []any{}
	if category != "" {
		query += " WHERE category=?"
		args = append(args, category)
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []model.Item{}
	for rows.Next() {
		var it model.Item
		if err := rows.Scan(&it.ID, &it.Name, &it.Description, &it.PriceCents,
			&it.Category, &it.InStock, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// Update overwrites all mutable fields of the item.
func (r *ItemRepo) Update(ctx context.Context, it *model.Item) error {
	// RowsAffected is 0 both for a missing row and for a no-op update, so
	// existence is checked by the caller, not here.
	_, err := r.DB.ExecContext(ctx,
		"UPDATE items SET name=?, description=?, price_cents=?, category=?, in_stock=? WHERE id=?",
		it.Name, it.Description, it.PriceCents, it.Category, it.InStock, it.ID)
	return err
}

// Delete removes an item row.
func (r *ItemRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM items WHERE id=?", id)
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
