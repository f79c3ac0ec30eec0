// Package rest provides HTTP handlers for the parts catalog API.
package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	cerrors "github.com/phasezero/catalog/internal/errors"
	"github.com/phasezero/catalog/internal/service"
	"github.com/phasezero/catalog/internal/store"
	"github.com/phasezero/catalog/pkg/web"
	"github.com/shopspring/decimal"
)

// Envelope status tags.
const (
	statusCreated = "created"
	statusSuccess = "success"
	statusError   = "error"
)

// apiResponse is the envelope wrapping every catalog response.
type apiResponse struct {
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	Data      any       `json:"data,omitempty"`
	Path      string    `json:"path"`
	Timestamp time.Time `json:"timestamp"`
}

type Handler struct {
	service  service.ProductService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates a new instance of the catalog API with the provided service.
func NewHandler(service service.ProductService, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		validate: newValidator(),
		logger:   logger.With("component", "rest"),
	}
}

// newValidator builds a validator that understands decimal.Decimal fields and
// enforces two-decimal monetary precision on create requests.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		dto := sl.Current().Interface().(service.ProductCreateDto)
		if dto.Price.Exponent() < -2 {
			sl.ReportError(dto.Price, "Price", "price", "monetary", "")
		}
	}, service.ProductCreateDto{})
	return v
}

// RegisterRoutes registers the HTTP routes for the catalog service.
func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Get("/search", h.SearchByName)
		r.Get("/filter", h.FilterByCategory)
		r.Get("/sort", h.SortByPrice)
		r.Get("/inventory/value", h.InventoryValue)
	})

	r.Get("/healthz", h.HealthCheck)
}

// Create handles the creation of a new product.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	var dto service.ProductCreateDto
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		h.respondError(w, r, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to create product", "partNumber", dto.PartNumber)

	if err := h.validate.Struct(dto); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			errorResponse := make(map[string]string)
			for _, fieldErr := range validationErrors {
				errorResponse[fieldErr.Field()] = validationMessage(fieldErr)
			}
			mLogger.WarnContext(r.Context(), "Validation errors occurred", "errors", errorResponse)
			h.respond(w, r, mLogger, http.StatusBadRequest, statusError, "Validation failed", errorResponse)
			return
		}
		mLogger.ErrorContext(r.Context(), "Error validating request body", "error", err)
		h.respondError(w, r, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}

	created, err := h.service.Create(r.Context(), dto)
	if err != nil {
		if errors.Is(err, cerrors.ErrDuplicatePartNumber) {
			mLogger.WarnContext(r.Context(), "Duplicate part number", "partNumber", dto.PartNumber)
			h.respondError(w, r, mLogger, http.StatusConflict, "Product with this part number already exists")
			return
		}
		mLogger.ErrorContext(r.Context(), "Error creating product", "error", err)
		h.respondError(w, r, mLogger, http.StatusInternalServerError, "Failed to create product")
		return
	}
	mLogger.InfoContext(r.Context(), "Product created successfully", "ID", created.ID, "partNumber", created.PartNumber)
	h.respond(w, r, mLogger, http.StatusCreated, statusCreated, "Resource created successfully", created)
}

// List retrieves one page of products.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	pageSpec, ok := h.parsePageSpec(w, r, mLogger)
	if !ok {
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to list products",
		"page", pageSpec.Page, "size", pageSpec.Size, "sort", pageSpec.Sort)

	page, err := h.service.List(r.Context(), pageSpec)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error retrieving product list", "error", err)
		h.respondError(w, r, mLogger, http.StatusInternalServerError, "Failed to fetch products")
		return
	}
	mLogger.DebugContext(r.Context(), "Successfully retrieved product page", "count", len(page.Content), "total", page.TotalElements)
	h.respond(w, r, mLogger, http.StatusOK, statusSuccess, "Products retrieved successfully", page)
}

// SearchByName retrieves products whose name contains the given term.
func (h *Handler) SearchByName(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	term := r.URL.Query().Get("name")
	if term == "" {
		h.respondError(w, r, mLogger, http.StatusBadRequest, "name url parameter is required")
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to search products", "name", term)

	found, err := h.service.SearchByName(r.Context(), term)
	if err != nil {
		if errors.Is(err, cerrors.ErrProductNotFound) {
			mLogger.WarnContext(r.Context(), "No products matched search", "name", term)
			h.respondError(w, r, mLogger, http.StatusNotFound, "No products found with name containing: "+term)
			return
		}
		mLogger.ErrorContext(r.Context(), "Error searching products", "error", err)
		h.respondError(w, r, mLogger, http.StatusInternalServerError, "Failed to search products")
		return
	}
	h.respond(w, r, mLogger, http.StatusOK, statusSuccess, "Products found", found)
}

// FilterByCategory retrieves products of the given category.
func (h *Handler) FilterByCategory(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	category := r.URL.Query().Get("category")
	if category == "" {
		h.respondError(w, r, mLogger, http.StatusBadRequest, "category url parameter is required")
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to filter products", "category", category)

	found, err := h.service.FilterByCategory(r.Context(), category)
	if err != nil {
		if errors.Is(err, cerrors.ErrProductNotFound) {
			mLogger.WarnContext(r.Context(), "No products in category", "category", category)
			h.respondError(w, r, mLogger, http.StatusNotFound, "No products found in category: "+category)
			return
		}
		mLogger.ErrorContext(r.Context(), "Error filtering products", "error", err)
		h.respondError(w, r, mLogger, http.StatusInternalServerError, "Failed to filter products")
		return
	}
	h.respond(w, r, mLogger, http.StatusOK, statusSuccess, "Products found", found)
}

// SortByPrice retrieves all products ordered by price ascending.
func (h *Handler) SortByPrice(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	mLogger.DebugContext(r.Context(), "Received request to sort products by price")

	found, err := h.service.SortByPriceAsc(r.Context())
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error sorting products", "error", err)
		h.respondError(w, r, mLogger, http.StatusInternalServerError, "Failed to sort products")
		return
	}
	h.respond(w, r, mLogger, http.StatusOK, statusSuccess, "Products sorted by price ascending", found)
}

// InventoryValue returns the aggregate catalog valuation.
func (h *Handler) InventoryValue(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	mLogger.DebugContext(r.Context(), "Received request to calculate inventory value")

	value, err := h.service.InventoryValue(r.Context())
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error calculating inventory value", "error", err)
		h.respondError(w, r, mLogger, http.StatusInternalServerError, "Failed to calculate inventory value")
		return
	}
	h.respond(w, r, mLogger, http.StatusOK, statusSuccess, "Inventory value calculated", value)
}

// HealthCheck is a simple health check endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// parsePageSpec reads optional page, size and sort query parameters.
// sort follows the "key,direction" convention, e.g. "price,asc".
func (h *Handler) parsePageSpec(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (store.PageSpec, bool) {
	spec := store.PageSpec{Sort: store.DefaultSort, Descending: true}

	if raw := r.URL.Query().Get("page"); raw != "" {
		page, err := strconv.ParseInt(raw, 10, 32)
		if err != nil || page < 0 {
			h.respondError(w, r, logger, http.StatusBadRequest, "Invalid page number: "+raw)
			return store.PageSpec{}, false
		}
		spec.Page = int32(page)
	}
	if raw := r.URL.Query().Get("size"); raw != "" {
		size, err := strconv.ParseInt(raw, 10, 32)
		if err != nil || size <= 0 {
			h.respondError(w, r, logger, http.StatusBadRequest, "Invalid size number: "+raw)
			return store.PageSpec{}, false
		}
		spec.Size = int32(size)
	}
	if raw := r.URL.Query().Get("sort"); raw != "" {
		key, direction, hasDirection := strings.Cut(raw, ",")
		spec.Sort = key
		spec.Descending = hasDirection && strings.EqualFold(direction, "desc")
	}
	return spec, true
}

// validationMessage renders one field error the way the API documents them.
func validationMessage(fieldErr validator.FieldError) string {
	if fieldErr.Tag() == "monetary" {
		return "must have at most 2 decimal places"
	}
	return "failed on rule: " + fieldErr.Tag()
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, logger *slog.Logger, code int, status, message string, data any) {
	web.RespondJSON(w, logger, code, apiResponse{
		Status:    status,
		Message:   message,
		Data:      data,
		Path:      r.URL.Path,
		Timestamp: time.Now(),
	})
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, code int, message string) {
	h.respond(w, r, logger, code, statusError, message, nil)
}

// loggerWithReqID creates a logger with the request ID from the context.
func (h *Handler) loggerWithReqID(r *http.Request) *slog.Logger {
	reqID := middleware.GetReqID(r.Context())
	return h.logger.With("request_id", reqID)
}
