// Package store provides an interface for product storage operations.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents a catalog part as persisted by the store.
// ID and both timestamps are assigned by the store on insert.
type Product struct {
	ID          uuid.UUID
	PartNumber  string
	PartName    string
	Category    string
	Price       decimal.Decimal
	Stock       int32
	Brand       string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Sort keys accepted by FindAll. Anything else falls back to DefaultSort.
const (
	SortByCreatedAt  = "createdAt"
	SortByPrice      = "price"
	SortByPartName   = "partName"
	SortByPartNumber = "partNumber"
	SortByStock      = "stock"
)

const (
	DefaultPageSize = 20
	DefaultSort     = SortByCreatedAt
)

// PageSpec describes one page of a listing: zero-based page index, page size
// and sort key with direction.
type PageSpec struct {
	Page       int32
	Size       int32
	Sort       string
	Descending bool
}

// Normalized returns a copy of the spec with defaults applied: size 20,
// ordered by creation time descending.
func (p PageSpec) Normalized() PageSpec {
	if p.Page < 0 {
		p.Page = 0
	}
	if p.Size <= 0 {
		p.Size = DefaultPageSize
	}
	switch p.Sort {
	case SortByCreatedAt, SortByPrice, SortByPartName, SortByPartNumber, SortByStock:
	default:
		p.Sort = DefaultSort
		p.Descending = true
	}
	return p
}

// ProductStore is an interface for product storage operations.
// It abstracts the underlying data store, allowing for different implementations (e.g., in-memory, database).
// The store alone is the authority for part number uniqueness: Create must
// reject a second insert with the same part number even if two creations race
// past an optimistic existence check.
type ProductStore interface {
	// Create inserts a new product, assigning its ID and timestamps.
	// Returns ErrDuplicatePartNumber if the part number is already taken.
	Create(ctx context.Context, product *Product) (*Product, error)

	// ExistsByPartNumber reports whether a product with the given part number exists.
	ExistsByPartNumber(ctx context.Context, partNumber string) (bool, error)

	// FindByPartNumber retrieves a single product by its part number.
	// Returns ErrProductNotFound if no product exists with the given part number.
	FindByPartNumber(ctx context.Context, partNumber string) (*Product, error)

	// FindAll returns one page of products plus the total record count.
	FindAll(ctx context.Context, page PageSpec) ([]Product, int64, error)

	// FindByNameContains returns products whose name contains the given
	// substring, matched case-insensitively.
	FindByNameContains(ctx context.Context, name string) ([]Product, error)

	// FindByCategory returns products with the exact given category.
	FindByCategory(ctx context.Context, category string) ([]Product, error)

	// FindAllOrderByPriceAsc returns all products ordered by price ascending.
	// Tie order between equal prices is implementation-defined.
	FindAllOrderByPriceAsc(ctx context.Context) ([]Product, error)

	// SumPriceTimesStock returns the sum of price*stock over all products.
	// An empty catalog yields zero, not an error.
	SumPriceTimesStock(ctx context.Context) (decimal.Decimal, error)
}
