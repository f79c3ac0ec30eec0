package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	cerrors "github.com/phasezero/catalog/internal/errors"
	"github.com/shopspring/decimal"
)

// uniqueViolation is the PostgreSQL error code for unique constraint violations.
const uniqueViolation = "23505"

const productColumns = "id, part_number, part_name, category, price, stock, brand, description, created_at, updated_at"

// sortColumns maps PageSpec sort keys to table columns. Keys not present here
// never reach the query builder; PageSpec.Normalized rejects them.
var sortColumns = map[string]string{
	SortByCreatedAt:  "created_at",
	SortByPrice:      "price",
	SortByPartName:   "part_name",
	SortByPartNumber: "part_number",
	SortByStock:      "stock",
}

// PgStore implements ProductStore using PostgreSQL as the data store.
// The unique index on part_number makes the database the authority for
// duplicate detection; a racing insert surfaces as ErrDuplicatePartNumber.
type PgStore struct {
	db *pgxpool.Pool
}

// NewPgStore creates a new instance of ProductStore using a PostgreSQL connection pool.
func NewPgStore(dbp *pgxpool.Pool) *PgStore {
	return &PgStore{
		db: dbp,
	}
}

// Create inserts a new product. The database assigns ID and timestamps.
// Returns ErrDuplicatePartNumber if the part number is already taken.
func (p *PgStore) Create(ctx context.Context, product *Product) (*Product, error) {
	row := p.db.QueryRow(ctx, `
		INSERT INTO products (part_number, part_name, category, price, stock, brand, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+productColumns,
		product.PartNumber,
		product.PartName,
		product.Category,
		product.Price,
		product.Stock,
		product.Brand,
		product.Description,
	)
	created, err := scanProduct(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, cerrors.ErrDuplicatePartNumber
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return created, nil
}

// ExistsByPartNumber reports whether a product with the given part number exists.
func (p *PgStore) ExistsByPartNumber(ctx context.Context, partNumber string) (bool, error) {
	var exists bool
	err := p.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM products WHERE part_number = $1)`,
		partNumber,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check part number existence: %w", err)
	}
	return exists, nil
}

// FindByPartNumber retrieves a product by its part number.
// Returns ErrProductNotFound if no product exists with the given part number.
func (p *PgStore) FindByPartNumber(ctx context.Context, partNumber string) (*Product, error) {
	row := p.db.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE part_number = $1`,
		partNumber,
	)
	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, cerrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by part number: %w", err)
	}
	return product, nil
}

// FindAll retrieves one page of products plus the total record count.
func (p *PgStore) FindAll(ctx context.Context, page PageSpec) ([]Product, int64, error) {
	page = page.Normalized()

	var total int64
	if err := p.db.QueryRow(ctx, `SELECT count(*) FROM products`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	direction := "ASC"
	if page.Descending {
		direction = "DESC"
	}
	query := fmt.Sprintf(
		`SELECT %s FROM products ORDER BY %s %s LIMIT $1 OFFSET $2`,
		productColumns, sortColumns[page.Sort], direction,
	)
	rows, err := p.db.Query(ctx, query, page.Size, page.Page*page.Size)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find all products: %w", err)
	}
	products, err := collectProducts(rows)
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// FindByNameContains returns products whose name contains the given substring,
// matched case-insensitively.
func (p *PgStore) FindByNameContains(ctx context.Context, name string) ([]Product, error) {
	rows, err := p.db.Query(ctx,
		`SELECT `+productColumns+` FROM products WHERE part_name ILIKE '%' || $1 || '%'`,
		name,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search products by name: %w", err)
	}
	return collectProducts(rows)
}

// FindByCategory returns products with the exact given category.
func (p *PgStore) FindByCategory(ctx context.Context, category string) ([]Product, error) {
	rows, err := p.db.Query(ctx,
		`SELECT `+productColumns+` FROM products WHERE category = $1`,
		category,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to filter products by category: %w", err)
	}
	return collectProducts(rows)
}

// FindAllOrderByPriceAsc returns all products ordered by price ascending.
func (p *PgStore) FindAllOrderByPriceAsc(ctx context.Context) ([]Product, error) {
	rows, err := p.db.Query(ctx,
		`SELECT `+productColumns+` FROM products ORDER BY price ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to sort products by price: %w", err)
	}
	return collectProducts(rows)
}

// SumPriceTimesStock returns the sum of price*stock over all products,
// or zero for an empty catalog.
func (p *PgStore) SumPriceTimesStock(ctx context.Context) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := p.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(price * stock), 0) FROM products`,
	).Scan(&sum)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("failed to calculate inventory value: %w", err)
	}
	return sum, nil
}

// scanProduct scans a single product row.
func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	err := row.Scan(
		&p.ID,
		&p.PartNumber,
		&p.PartName,
		&p.Category,
		&p.Price,
		&p.Stock,
		&p.Brand,
		&p.Description,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// collectProducts drains rows into a slice. The slice is empty, never nil,
// when no rows match.
func collectProducts(rows pgx.Rows) ([]Product, error) {
	defer rows.Close()

	products := make([]Product, 0)
	for rows.Next() {
		var p Product
		if err := rows.Scan(
			&p.ID,
			&p.PartNumber,
			&p.PartName,
			&p.Category,
			&p.Price,
			&p.Stock,
			&p.Brand,
			&p.Description,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan product row: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read product rows: %w", err)
	}
	return products, nil
}
