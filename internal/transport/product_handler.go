package transport

import (
	"net/http"
	"time"

	"checkpos/internal/domain"
	"checkpos/internal/middleware"
	"checkpos/internal/money"
	"checkpos/internal/repository"
	"checkpos/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreateProductRequest represents the product creation request payload
type CreateProductRequest struct {
	Title           string          `json:"title" validate:"required,min=1,max=255"`
	Description     string          `json:"description" validate:"required"`
	Units           string          `json:"units" validate:"required"`
	MinQuantitySell decimal.Decimal `json:"min_quantity_sell"`
	Price           decimal.Decimal `json:"price"`
	Discount        decimal.Decimal `json:"discount"`
	QuantityInStock decimal.Decimal `json:"quantity_in_stock"`
}

// Validate checks the decimal constraints of the payload.
func (req *CreateProductRequest) Validate(places int32) []middleware.ValidationError {
	var errs []middleware.ValidationError

	if !money.IsPositive(req.Price) {
		errs = append(errs, middleware.ValidationError{Field: "price", Message: "Value must be greater than 0"})
	}
	if !money.WithinPlaces(req.Price, places) {
		errs = append(errs, middleware.ValidationError{Field: "price", Message: "Too many fractional digits"})
	}
	if req.Discount.Sign() < 0 {
		errs = append(errs, middleware.ValidationError{Field: "discount", Message: "Value must be greater than or equal to 0"})
	}
	if !money.IsPositive(req.MinQuantitySell) {
		errs = append(errs, middleware.ValidationError{Field: "min_quantity_sell", Message: "Value must be greater than 0"})
	}
	if req.QuantityInStock.Sign() < 0 {
		errs = append(errs, middleware.ValidationError{Field: "quantity_in_stock", Message: "Value must be greater than or equal to 0"})
	}

	return errs
}

// ProductResponse represents one catalog entry in responses
type ProductResponse struct {
	Identifier      string          `json:"identifier"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	Units           string          `json:"units"`
	MinQuantitySell decimal.Decimal `json:"min_quantity_sell"`
	Price           decimal.Decimal `json:"price"`
	Discount        decimal.Decimal `json:"discount"`
	QuantityInStock decimal.Decimal `json:"quantity_in_stock"`
	LastUpdate      time.Time       `json:"last_update"`
}

// ProductHandler handles HTTP requests for catalog operations
type ProductHandler struct {
	catalogService service.CatalogService
	logger         *zap.Logger
	places         int32
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(catalogService service.CatalogService, logger *zap.Logger, places int32) *ProductHandler {
	return &ProductHandler{
		catalogService: catalogService,
		logger:         logger,
		places:         places,
	}
}

// RegisterRoutes registers all catalog routes. Creation is admin-only.
func (h *ProductHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/products", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.ListProducts)

		r.Group(func(r chi.Router) {
			r.Use(adminMiddleware)
			r.Post("/", h.CreateProduct)
		})
	})
}

// CreateProduct handles adding a product to the catalog
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Product creation validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if validationErrors := req.Validate(h.places); len(validationErrors) > 0 {
		middleware.RespondWithValidationErrors(w, validationErrors)
		return
	}

	line, err := h.catalogService.CreateProduct(r.Context(), service.CreateProductInput{
		Title:           req.Title,
		Description:     req.Description,
		Units:           req.Units,
		MinQuantitySell: req.MinQuantitySell,
		Price:           req.Price,
		Discount:        req.Discount,
		QuantityInStock: req.QuantityInStock,
	})
	if err != nil {
		if err == repository.ErrProductAlreadyExists {
			middleware.RespondWithError(w, http.StatusConflict, "product with this title already exists")
			return
		}

		h.logger.Error("Product creation failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create product")
		return
	}

	h.logger.Info("Product created", zap.String("title", line.Product.Title))
	middleware.RespondWithJSON(w, http.StatusCreated, toProductResponse(line))
}

// ListProducts handles listing the whole catalog
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	lines, err := h.catalogService.ListProducts(r.Context())
	if err != nil {
		h.logger.Error("Product listing failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	response := make([]ProductResponse, 0, len(lines))
	for _, line := range lines {
		response = append(response, toProductResponse(line))
	}

	middleware.RespondWithJSON(w, http.StatusOK, response)
}

func toProductResponse(line *domain.CatalogLine) ProductResponse {
	return ProductResponse{
		Identifier:      line.Product.Identifier.String(),
		Title:           line.Product.Title,
		Description:     line.Product.Description,
		Units:           line.Product.Units,
		MinQuantitySell: line.Product.MinQuantitySell,
		Price:           line.Price.Price,
		Discount:        line.Price.Discount,
		QuantityInStock: line.Stock.QuantityInStock,
		LastUpdate:      line.Stock.LastUpdate,
	}
}
