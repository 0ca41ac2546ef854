package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/noahjmorrison/onnaflips/internal/models"
)

// ErrNotFound is returned when the requested item does not exist.
var ErrNotFound = errors.New("item not found")

// SQLite supports the $N placeholder style and RETURNING, so both drivers
// share one query set. Only the id column definition differs.
const schemaSQLite = `
	CREATE TABLE IF NOT EXISTS items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		date_bought TEXT,
		date_sold TEXT,
		description TEXT NOT NULL,
		cost REAL NOT NULL DEFAULT 0,
		listing_price REAL,
		sold_for REAL,
		status TEXT NOT NULL DEFAULT 'Listed',
		notes TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`

const schemaPostgres = `
	CREATE TABLE IF NOT EXISTS items (
		id BIGSERIAL PRIMARY KEY,
		date_bought TEXT,
		date_sold TEXT,
		description TEXT NOT NULL,
		cost DOUBLE PRECISION NOT NULL DEFAULT 0,
		listing_price DOUBLE PRECISION,
		sold_for DOUBLE PRECISION,
		status TEXT NOT NULL DEFAULT 'Listed',
		notes TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`

const itemColumns = `id, date_bought, date_sold, description, cost, listing_price, sold_for, status, notes, created_at, updated_at`

// Repository provides database operations
type Repository struct {
	db     *sql.DB
	driver string
}

// NewRepository initializes a new repository
func NewRepository(db *sql.DB, driver string) *Repository {
	return &Repository{db: db, driver: driver}
}

// Migrate creates the items table when it does not exist yet
func (r *Repository) Migrate() error {
	schema := schemaSQLite
	if r.driver == "postgres" {
		schema = schemaPostgres
	}
	if _, err := r.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// CreateItem creates a new item in the database
func (r *Repository) CreateItem(item *models.Item) error {
	now := timestamp()
	query := `
		INSERT INTO items (date_bought, date_sold, description, cost, listing_price, sold_for, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`
	err := r.db.QueryRow(query,
		item.DateBought, item.DateSold, item.Description, item.Cost,
		item.ListingPrice, item.SoldFor, item.Status, item.Notes, now, now).
		Scan(&item.ID)
	if err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}
	item.CreatedAt = now
	item.UpdatedAt = now
	return nil
}

// FindItemByID retrieves an item by id
func (r *Repository) FindItemByID(id int64) (*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = $1`
	item, err := scanItem(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find item: %w", err)
	}
	return item, nil
}

// ListItems retrieves all items, optionally filtered by status, newest
// purchases first with undated items last.
func (r *Repository) ListItems(status string) ([]*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items`
	args := []any{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY date_bought DESC NULLS LAST, id`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()
	return collectItems(rows)
}

// ListSoldBetween retrieves sold items with a sale date inside the given
// inclusive range, oldest first. Empty bounds are open-ended.
func (r *Repository) ListSoldBetween(start, end string) ([]*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE status = $1`
	args := []any{models.StatusSold}
	if start != "" {
		args = append(args, start)
		query += fmt.Sprintf(` AND date_sold >= $%d`, len(args))
	}
	if end != "" {
		args = append(args, end)
		query += fmt.Sprintf(` AND date_sold <= $%d`, len(args))
	}
	query += ` ORDER BY date_sold, id`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sold items: %w", err)
	}
	defer rows.Close()
	return collectItems(rows)
}

// UpdateItem overwrites the stored fields of an existing item
func (r *Repository) UpdateItem(item *models.Item) error {
	now := timestamp()
	query := `
		UPDATE items
		SET date_bought = $1, date_sold = $2, description = $3, cost = $4,
			listing_price = $5, sold_for = $6, status = $7, notes = $8, updated_at = $9
		WHERE id = $10`
	res, err := r.db.Exec(query,
		item.DateBought, item.DateSold, item.Description, item.Cost,
		item.ListingPrice, item.SoldFor, item.Status, item.Notes, now, item.ID)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	item.UpdatedAt = now
	return nil
}

// DeleteItem removes an item by id
func (r *Repository) DeleteItem(id int64) error {
	res, err := r.db.Exec(`DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAllItems clears the items table and reports how many rows went away.
// Used by the workbook importer before a fresh load.
func (r *Repository) DeleteAllItems() (int64, error) {
	res, err := r.db.Exec(`DELETE FROM items`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear items: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to clear items: %w", err)
	}
	return affected, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*models.Item, error) {
	item := &models.Item{}
	var dateBought, dateSold, notes sql.NullString
	var listingPrice, soldFor sql.NullFloat64
	err := row.Scan(&item.ID, &dateBought, &dateSold, &item.Description, &item.Cost,
		&listingPrice, &soldFor, &item.Status, &notes, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	item.DateBought = nullableString(dateBought)
	item.DateSold = nullableString(dateSold)
	item.Notes = nullableString(notes)
	item.ListingPrice = nullableFloat(listingPrice)
	item.SoldFor = nullableFloat(soldFor)
	return item, nil
}

func collectItems(rows *sql.Rows) ([]*models.Item, error) {
	items := []*models.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read items: %w", err)
	}
	return items, nil
}

func nullableString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}

func nullableFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return &v.Float64
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}
