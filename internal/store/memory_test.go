package store

import (
	"context"
	"fmt"
	"testing"

	cerrors "github.com/phasezero/catalog/internal/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCreate(t *testing.T, s ProductStore, partNumber, partName, category, price string, stock int32) *Product {
	t.Helper()
	created, err := s.Create(context.Background(), &Product{
		PartNumber: partNumber,
		PartName:   partName,
		Category:   category,
		Price:      decimal.RequireFromString(price),
		Stock:      stock,
	})
	require.NoError(t, err)
	return created
}

func Test_MemoryStore_Create_AssignsIdentity(t *testing.T) {
	s := NewMemoryStore()

	created := mustCreate(t, s, "PN-1001", "hydraulic filter", "Filters", "99.99", 100)

	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)
}

func Test_MemoryStore_Create_CountIncreasesByOne(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		mustCreate(t, s, fmt.Sprintf("PN-%d", i), "spark plug", "Ignition", "12.99", 10)
		_, total, err := s.FindAll(ctx, PageSpec{})
		require.NoError(t, err)
		assert.Equal(t, int64(i), total)
	}
}

func Test_MemoryStore_Create_RejectsDuplicatePartNumber(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	mustCreate(t, s, "ABC-1", "brake pads", "Brakes", "79.99", 50)

	// Same part number again, even though no pre-check ran: the store itself
	// must reject the insert.
	_, err := s.Create(ctx, &Product{
		PartNumber: "ABC-1",
		PartName:   "brake pads",
		Category:   "Brakes",
		Price:      decimal.RequireFromString("79.99"),
		Stock:      50,
	})
	assert.ErrorIs(t, err, cerrors.ErrDuplicatePartNumber)

	_, total, err := s.FindAll(ctx, PageSpec{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func Test_MemoryStore_ExistsAndFindByPartNumber(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	mustCreate(t, s, "PN-1001", "hydraulic filter", "Filters", "99.99", 100)

	exists, err := s.ExistsByPartNumber(ctx, "PN-1001")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = s.ExistsByPartNumber(ctx, "PN-9999")
	require.NoError(t, err)
	assert.False(t, exists)

	found, err := s.FindByPartNumber(ctx, "PN-1001")
	require.NoError(t, err)
	assert.Equal(t, "hydraulic filter", found.PartName)

	_, err = s.FindByPartNumber(ctx, "PN-9999")
	assert.ErrorIs(t, err, cerrors.ErrProductNotFound)
}

func Test_MemoryStore_FindAll_Pagination(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	for i := 1; i <= 25; i++ {
		mustCreate(t, s, fmt.Sprintf("PN-%04d", i), "air filter", "Filters", "24.99", 5)
	}

	// Default page size is 20.
	first, total, err := s.FindAll(ctx, PageSpec{Page: 0})
	require.NoError(t, err)
	assert.Len(t, first, 20)
	assert.Equal(t, int64(25), total)

	second, total, err := s.FindAll(ctx, PageSpec{Page: 1})
	require.NoError(t, err)
	assert.Len(t, second, 5)
	assert.Equal(t, int64(25), total, "total must be stable across pages")

	beyond, total, err := s.FindAll(ctx, PageSpec{Page: 2})
	require.NoError(t, err)
	assert.Empty(t, beyond)
	assert.Equal(t, int64(25), total)
}

func Test_MemoryStore_FindAll_DefaultSortIsNewestFirst(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	mustCreate(t, s, "PN-1", "engine oil", "Lubricants", "29.99", 10)
	mustCreate(t, s, "PN-2", "brake pads", "Brakes", "79.99", 10)

	list, _, err := s.FindAll(ctx, PageSpec{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.False(t, list[0].CreatedAt.Before(list[1].CreatedAt))
}

func Test_MemoryStore_FindByNameContains_CaseInsensitive(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	mustCreate(t, s, "PN-1001", "hydraulic filter", "Filters", "99.99", 100)
	mustCreate(t, s, "PN-1002", "engine oil", "Lubricants", "29.99", 200)

	matches, err := s.FindByNameContains(ctx, "FILTER")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "PN-1001", matches[0].PartNumber)

	matches, err = s.FindByNameContains(ctx, "gasket")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func Test_MemoryStore_FindByCategory_ExactMatch(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	mustCreate(t, s, "PN-1001", "hydraulic filter", "Filters", "99.99", 100)
	mustCreate(t, s, "PN-1004", "air filter", "Filters", "24.99", 150)
	mustCreate(t, s, "PN-1002", "engine oil", "Lubricants", "29.99", 200)

	matches, err := s.FindByCategory(ctx, "Filters")
	require.NoError(t, err)
	assert.Len(t, matches, 2)

	// Exact match only; case differences do not count.
	matches, err = s.FindByCategory(ctx, "filters")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func Test_MemoryStore_FindAllOrderByPriceAsc(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	mustCreate(t, s, "PN-1", "engine oil", "Lubricants", "29.99", 10)
	mustCreate(t, s, "PN-2", "spark plug", "Ignition", "12.99", 10)
	mustCreate(t, s, "PN-3", "hydraulic filter", "Filters", "99.99", 10)

	list, err := s.FindAllOrderByPriceAsc(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	for i := 1; i < len(list); i++ {
		assert.True(t, list[i-1].Price.LessThanOrEqual(list[i].Price),
			"prices must be non-decreasing")
	}
}

func Test_MemoryStore_SumPriceTimesStock(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	sum, err := s.SumPriceTimesStock(ctx)
	require.NoError(t, err)
	assert.True(t, sum.IsZero(), "empty catalog sums to zero")

	mustCreate(t, s, "PN-1", "engine oil", "Lubricants", "10.00", 3)
	mustCreate(t, s, "PN-2", "spark plug", "Ignition", "5.50", 2)

	sum, err = s.SumPriceTimesStock(ctx)
	require.NoError(t, err)
	assert.Equal(t, "41.00", sum.StringFixed(2))
}
