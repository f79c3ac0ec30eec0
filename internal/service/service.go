// Package service provides the implementation of product-related business logic.
package service

import (
	"context"
	"errors"
	"fmt"

	cerrors "github.com/phasezero/catalog/internal/errors"
	"github.com/phasezero/catalog/internal/store"
)

// inventoryValueScale is the monetary precision of the valuation aggregate.
const inventoryValueScale = 2

// ProductService defines the methods for managing the parts catalog.
// It abstracts the underlying business logic and data access.
type ProductService interface {
	// Create adds a new product after normalizing its textual fields.
	// Returns ErrDuplicatePartNumber if the normalized part number is taken.
	Create(ctx context.Context, product ProductCreateDto) (*ProductDto, error)

	// List returns one page of products with total-count metadata.
	List(ctx context.Context, page store.PageSpec) (*PageDto, error)

	// SearchByName returns products whose name contains the term,
	// case-insensitively. Returns ErrProductNotFound if nothing matches.
	SearchByName(ctx context.Context, term string) ([]ProductDto, error)

	// FilterByCategory returns products with the exact given category.
	// Returns ErrProductNotFound if the category holds no products.
	FilterByCategory(ctx context.Context, category string) ([]ProductDto, error)

	// SortByPriceAsc returns all products ordered by price ascending.
	SortByPriceAsc(ctx context.Context) ([]ProductDto, error)

	// InventoryValue returns the catalog valuation: sum of price*stock over
	// all products, rounded half-up to two decimal places.
	InventoryValue(ctx context.Context) (*InventoryValueDto, error)
}

// Service implements ProductService and provides methods to manage the catalog.
type Service struct {
	repository store.ProductStore
}

// NewService creates a new instance of ProductService with the provided repository.
func NewService(repo store.ProductStore) *Service {
	return &Service{
		repository: repo,
	}
}

// Create normalizes the request, rejects duplicates and inserts the product.
// The existence check is only a fast-path rejection; the store's own
// uniqueness guard is the safety net, so a conflict raised by the insert
// itself also surfaces as ErrDuplicatePartNumber.
func (s *Service) Create(ctx context.Context, product ProductCreateDto) (*ProductDto, error) {
	entity := toEntity(product)

	exists, err := s.repository.ExistsByPartNumber(ctx, entity.PartNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to check part number %s: %w", entity.PartNumber, err)
	}
	if exists {
		return nil, fmt.Errorf("part number %s: %w", entity.PartNumber, cerrors.ErrDuplicatePartNumber)
	}

	created, err := s.repository.Create(ctx, entity)
	if err != nil {
		if errors.Is(err, cerrors.ErrDuplicatePartNumber) {
			return nil, fmt.Errorf("part number %s: %w", entity.PartNumber, cerrors.ErrDuplicatePartNumber)
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return toDto(created), nil
}

// List retrieves one page of products and passes the store's total count
// through unmodified.
func (s *Service) List(ctx context.Context, page store.PageSpec) (*PageDto, error) {
	page = page.Normalized()
	products, total, err := s.repository.FindAll(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}

	totalPages := int32(total / int64(page.Size))
	if total%int64(page.Size) != 0 {
		totalPages++
	}

	return &PageDto{
		Content:       toDtos(products),
		Page:          page.Page,
		Size:          page.Size,
		TotalElements: total,
		TotalPages:    totalPages,
	}, nil
}

// SearchByName retrieves products whose name contains the term. The term is
// matched as given; only stored data is normalized.
func (s *Service) SearchByName(ctx context.Context, term string) ([]ProductDto, error) {
	products, err := s.repository.FindByNameContains(ctx, term)
	if err != nil {
		return nil, fmt.Errorf("failed to search products by name: %w", err)
	}
	if len(products) == 0 {
		return nil, fmt.Errorf("no products with name containing %q: %w", term, cerrors.ErrProductNotFound)
	}
	return toDtos(products), nil
}

// FilterByCategory retrieves products with the exact given category.
func (s *Service) FilterByCategory(ctx context.Context, category string) ([]ProductDto, error) {
	products, err := s.repository.FindByCategory(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("failed to filter products by category: %w", err)
	}
	if len(products) == 0 {
		return nil, fmt.Errorf("no products in category %q: %w", category, cerrors.ErrProductNotFound)
	}
	return toDtos(products), nil
}

// SortByPriceAsc retrieves all products ordered by price ascending. Tie order
// between equal prices is implementation-defined.
func (s *Service) SortByPriceAsc(ctx context.Context) ([]ProductDto, error) {
	products, err := s.repository.FindAllOrderByPriceAsc(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to sort products by price: %w", err)
	}
	return toDtos(products), nil
}

// InventoryValue returns the total catalog valuation rounded half-up to two
// decimal places. An empty catalog yields exactly 0.00.
func (s *Service) InventoryValue(ctx context.Context) (*InventoryValueDto, error) {
	sum, err := s.repository.SumPriceTimesStock(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate inventory value: %w", err)
	}
	return &InventoryValueDto{
		// Round is half away from zero, which is half-up for the
		// non-negative sums a catalog can produce.
		TotalInventoryValue: sum.Round(inventoryValueScale),
	}, nil
}
