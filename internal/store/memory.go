package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	cerrors "github.com/phasezero/catalog/internal/errors"
	"github.com/shopspring/decimal"
)

// memory implements ProductStore using an in-memory map. Uniqueness is
// enforced under the write lock, so it gives the same conflict semantics as
// the PostgreSQL store's unique index.
type memory struct {
	mu           sync.RWMutex
	products     map[uuid.UUID]Product
	byPartNumber map[string]uuid.UUID
	now          func() time.Time
}

// NewMemoryStore creates a new in-memory ProductStore.
func NewMemoryStore() ProductStore {
	return &memory{
		products:     make(map[uuid.UUID]Product),
		byPartNumber: make(map[string]uuid.UUID),
		now:          time.Now,
	}
}

// Create inserts a new product, assigning its ID and timestamps.
// Returns ErrDuplicatePartNumber if the part number is already taken.
func (s *memory) Create(_ context.Context, product *Product) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byPartNumber[product.PartNumber]; taken {
		return nil, cerrors.ErrDuplicatePartNumber
	}

	created := *product
	created.ID = uuid.New()
	now := s.now()
	created.CreatedAt = now
	created.UpdatedAt = now

	s.products[created.ID] = created
	s.byPartNumber[created.PartNumber] = created.ID
	return &created, nil
}

func (s *memory) ExistsByPartNumber(_ context.Context, partNumber string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.byPartNumber[partNumber]
	return ok, nil
}

func (s *memory) FindByPartNumber(_ context.Context, partNumber string) (*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byPartNumber[partNumber]
	if !ok {
		return nil, cerrors.ErrProductNotFound
	}
	p := s.products[id]
	return &p, nil
}

func (s *memory) FindAll(_ context.Context, page PageSpec) ([]Product, int64, error) {
	page = page.Normalized()

	all := s.snapshot()
	sortProducts(all, page.Sort, page.Descending)
	total := int64(len(all))

	from := int(page.Page) * int(page.Size)
	if from >= len(all) {
		return []Product{}, total, nil
	}
	to := from + int(page.Size)
	if to > len(all) {
		to = len(all)
	}
	return all[from:to], total, nil
}

func (s *memory) FindByNameContains(_ context.Context, name string) ([]Product, error) {
	needle := strings.ToLower(name)
	matches := make([]Product, 0)
	for _, p := range s.snapshot() {
		if strings.Contains(strings.ToLower(p.PartName), needle) {
			matches = append(matches, p)
		}
	}
	return matches, nil
}

func (s *memory) FindByCategory(_ context.Context, category string) ([]Product, error) {
	matches := make([]Product, 0)
	for _, p := range s.snapshot() {
		if p.Category == category {
			matches = append(matches, p)
		}
	}
	return matches, nil
}

func (s *memory) FindAllOrderByPriceAsc(_ context.Context) ([]Product, error) {
	all := s.snapshot()
	sortProducts(all, SortByPrice, false)
	return all, nil
}

func (s *memory) SumPriceTimesStock(_ context.Context) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, p := range s.snapshot() {
		sum = sum.Add(p.Price.Mul(decimal.NewFromInt32(p.Stock)))
	}
	return sum, nil
}

// snapshot copies all products under the read lock.
func (s *memory) snapshot() []Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]Product, 0, len(s.products))
	for _, p := range s.products {
		list = append(list, p)
	}
	return list
}

func sortProducts(products []Product, key string, descending bool) {
	less := func(a, b Product) bool {
		switch key {
		case SortByPrice:
			return a.Price.LessThan(b.Price)
		case SortByPartName:
			return a.PartName < b.PartName
		case SortByPartNumber:
			return a.PartNumber < b.PartNumber
		case SortByStock:
			return a.Stock < b.Stock
		default:
			return a.CreatedAt.Before(b.CreatedAt)
		}
	}
	sort.SliceStable(products, func(i, j int) bool {
		if descending {
			return less(products[j], products[i])
		}
		return less(products[i], products[j])
	})
}
