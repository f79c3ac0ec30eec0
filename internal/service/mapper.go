package service

import (
	"time"

	"github.com/phasezero/catalog/internal/store"
	"github.com/shopspring/decimal"
)

// ProductCreateDto represents the data transfer object for creating a new product.
// Stock is a pointer so that an explicit zero survives the required check.
type ProductCreateDto struct {
	PartNumber  string          `json:"partNumber"  validate:"required,min=3,max=50"`
	PartName    string          `json:"partName"    validate:"required,min=2,max=100"`
	Category    string          `json:"category"    validate:"required,min=2,max=50"`
	Price       decimal.Decimal `json:"price"       validate:"gt=0"`
	Stock       *int32          `json:"stock"       validate:"required,gte=0"`
	Brand       string          `json:"brand"       validate:"max=100"`
	Description string          `json:"description" validate:"max=500"`
}

// ProductDto represents the data transfer object for a product.
type ProductDto struct {
	ID          string          `json:"id"`
	PartNumber  string          `json:"partNumber"`
	PartName    string          `json:"partName"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Stock       int32           `json:"stock"`
	Brand       string          `json:"brand,omitempty"`
	Description string          `json:"description,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// PageDto is one page of products plus paging metadata.
type PageDto struct {
	Content       []ProductDto `json:"content"`
	Page          int32        `json:"page"`
	Size          int32        `json:"size"`
	TotalElements int64        `json:"totalElements"`
	TotalPages    int32        `json:"totalPages"`
}

// InventoryValueDto carries the aggregate catalog valuation.
type InventoryValueDto struct {
	TotalInventoryValue decimal.Decimal `json:"totalInventoryValue"`
}

// MarshalJSON renders the valuation with exactly two decimal places, so an
// empty catalog serializes as 0.00 rather than 0.
func (d InventoryValueDto) MarshalJSON() ([]byte, error) {
	return []byte(`{"totalInventoryValue":` + d.TotalInventoryValue.StringFixed(2) + `}`), nil
}

// toEntity converts a create request to a store entity with canonical textual
// fields. ID and timestamps stay unset; the store assigns them.
func toEntity(dto ProductCreateDto) *store.Product {
	return &store.Product{
		PartNumber:  NormalizePartNumber(dto.PartNumber),
		PartName:    NormalizePartName(dto.PartName),
		Category:    NormalizeCategory(dto.Category),
		Price:       dto.Price,
		Stock:       *dto.Stock,
		Brand:       dto.Brand,
		Description: dto.Description,
	}
}

// toDto converts a store.Product to a ProductDto.
func toDto(product *store.Product) *ProductDto {
	return &ProductDto{
		ID:          product.ID.String(),
		PartNumber:  product.PartNumber,
		PartName:    product.PartName,
		Category:    product.Category,
		Price:       product.Price,
		Stock:       product.Stock,
		Brand:       product.Brand,
		Description: product.Description,
		CreatedAt:   product.CreatedAt,
		UpdatedAt:   product.UpdatedAt,
	}
}

// toDtos converts a slice of store products. Returns an empty slice, never
// nil, so list responses always serialize as JSON arrays.
func toDtos(products []store.Product) []ProductDto {
	dtos := make([]ProductDto, len(products))
	for i := range products {
		dtos[i] = *toDto(&products[i])
	}
	return dtos
}
