package transport

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"checkpos/internal/domain"
	"checkpos/internal/middleware"
	"checkpos/internal/money"
	"checkpos/internal/repository"
	"checkpos/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreateCheckProduct is one requested sale line in the creation payload.
// Monetary fields are validated in Validate; struct tags cannot express
// decimal constraints.
type CreateCheckProduct struct {
	Name     string          `json:"name" validate:"required,min=1,max=255"`
	Price    decimal.Decimal `json:"price"`
	Quantity decimal.Decimal `json:"quantity"`
}

// CreateCheckPayment is the tendered payment in the creation payload.
type CreateCheckPayment struct {
	Type   string          `json:"type" validate:"required,oneof=cash cashless"`
	Amount decimal.Decimal `json:"amount"`
}

// CreateCheckRequest represents the check creation request payload
type CreateCheckRequest struct {
	Products []CreateCheckProduct `json:"products" validate:"required,min=1,dive"`
	Payment  CreateCheckPayment   `json:"payment" validate:"required"`
}

// Validate checks the decimal constraints: prices, quantities and the payment
// amount must be positive and carry at most the configured number of
// fractional digits, and the payment must cover the order total.
func (req *CreateCheckRequest) Validate(places int32) []middleware.ValidationError {
	var errs []middleware.ValidationError

	orderTotal := decimal.Zero
	for i, p := range req.Products {
		field := fmt.Sprintf("products[%d]", i)
		if !money.IsPositive(p.Price) {
			errs = append(errs, middleware.ValidationError{Field: field + ".price", Message: "Value must be greater than 0"})
		}
		if !money.WithinPlaces(p.Price, places) {
			errs = append(errs, middleware.ValidationError{Field: field + ".price", Message: "Too many fractional digits"})
		}
		if !money.IsPositive(p.Quantity) {
			errs = append(errs, middleware.ValidationError{Field: field + ".quantity", Message: "Value must be greater than 0"})
		}
		if !money.WithinPlaces(p.Quantity, places) {
			errs = append(errs, middleware.ValidationError{Field: field + ".quantity", Message: "Too many fractional digits"})
		}
		orderTotal = orderTotal.Add(p.Price.Mul(p.Quantity))
	}

	if !money.IsPositive(req.Payment.Amount) {
		errs = append(errs, middleware.ValidationError{Field: "payment.amount", Message: "Value must be greater than 0"})
	}
	if !money.WithinPlaces(req.Payment.Amount, places) {
		errs = append(errs, middleware.ValidationError{Field: "payment.amount", Message: "Too many fractional digits"})
	}

	if len(errs) == 0 && req.Payment.Amount.LessThan(orderTotal) {
		errs = append(errs, middleware.ValidationError{Field: "payment.amount", Message: "Payment amount does not cover the order total"})
	}

	return errs
}

// CheckHandler handles HTTP requests for check operations
type CheckHandler struct {
	checkService     service.CheckService
	logger           *zap.Logger
	places           int32
	defaultLineWidth int
}

// NewCheckHandler creates a new CheckHandler
func NewCheckHandler(checkService service.CheckService, logger *zap.Logger, places int32, defaultLineWidth int) *CheckHandler {
	return &CheckHandler{
		checkService:     checkService,
		logger:           logger,
		places:           places,
		defaultLineWidth: defaultLineWidth,
	}
}

// RegisterRoutes registers all check routes. The print endpoint is public:
// possession of the check identifier is the only credential.
func (h *CheckHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/checks", func(r chi.Router) {
		r.Get("/print", h.PrintCheck)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Post("/", h.CreateCheck)
			r.Get("/", h.GetChecks)
		})
	})
}

// CreateCheck handles check creation
func (h *CheckHandler) CreateCheck(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Error("User ID not found in context")
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateCheckRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Check creation validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if validationErrors := req.Validate(h.places); len(validationErrors) > 0 {
		h.logger.Debug("Check creation rejected", zap.Int("violations", len(validationErrors)))
		middleware.RespondWithValidationErrors(w, validationErrors)
		return
	}

	input := service.CreateCheckInput{
		Products: make([]service.ProductInput, 0, len(req.Products)),
		Payment: service.PaymentInput{
			Type:   domain.PurchasingMethod(req.Payment.Type),
			Amount: req.Payment.Amount,
		},
	}
	for _, p := range req.Products {
		input.Products = append(input.Products, service.ProductInput{
			Name:     p.Name,
			Price:    p.Price,
			Quantity: p.Quantity,
		})
	}

	answer, err := h.checkService.CreateCheck(r.Context(), userID, input)
	if err != nil {
		var notFound *service.ProductsNotFoundError
		if errors.As(err, &notFound) {
			middleware.RespondWithErrorDetails(w, http.StatusConflict, "some products not found", map[string]interface{}{
				"products": notFound.Names,
			})
			return
		}

		var conflict *service.SaleConflictError
		if errors.As(err, &conflict) {
			middleware.RespondWithErrorDetails(w, http.StatusConflict, "check creation conflict", map[string]interface{}{
				"conflicts": conflict.Violations,
			})
			return
		}

		h.logger.Error("Check creation failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create check")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, answer)
}

// GetChecks handles the check history query
func (h *CheckHandler) GetChecks(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Error("User ID not found in context")
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	query, validationErrors := h.parseHistoryQuery(r)
	if len(validationErrors) > 0 {
		middleware.RespondWithValidationErrors(w, validationErrors)
		return
	}

	history, err := h.checkService.GetUserChecks(r.Context(), userID, query)
	if err != nil {
		h.logger.Error("Check history query failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get checks")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, history)
}

// PrintCheck renders a check as an HTML receipt
func (h *CheckHandler) PrintCheck(w http.ResponseWriter, r *http.Request) {
	rawIdentifier := r.URL.Query().Get("check_identifier")
	identifier, err := uuid.Parse(rawIdentifier)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid check identifier")
		return
	}

	lineWidth := h.defaultLineWidth
	if raw := r.URL.Query().Get("line_width"); raw != "" {
		lineWidth, err = strconv.Atoi(raw)
		if err != nil || lineWidth < 10 || lineWidth > 100 {
			middleware.RespondWithError(w, http.StatusBadRequest, "line width must be between 10 and 100")
			return
		}
	}

	html, err := h.checkService.PrintReceipt(r.Context(), identifier, lineWidth)
	if err != nil {
		if errors.Is(err, repository.ErrCheckNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "check not found")
			return
		}

		h.logger.Error("Receipt rendering failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to render receipt")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(html))
}

// parseHistoryQuery parses the history query string. Invalid values are
// reported per parameter rather than silently ignored.
func (h *CheckHandler) parseHistoryQuery(r *http.Request) (service.HistoryQuery, []middleware.ValidationError) {
	var errs []middleware.ValidationError
	q := r.URL.Query()

	query := service.HistoryQuery{
		SortOrder: repository.SortOrderAsc,
		Page:      1,
		Size:      10,
	}

	switch q.Get("sorting_rule") {
	case "", "asc":
	case "desc":
		query.SortOrder = repository.SortOrderDesc
	default:
		errs = append(errs, middleware.ValidationError{Field: "sorting_rule", Message: "Value must be one of: asc desc"})
	}

	if raw := q.Get("start_date"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			errs = append(errs, middleware.ValidationError{Field: "start_date", Message: "Date must be in YYYY-MM-DD format"})
		} else {
			query.Filter.StartDate = &t
		}
	}
	if raw := q.Get("end_date"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			errs = append(errs, middleware.ValidationError{Field: "end_date", Message: "Date must be in YYYY-MM-DD format"})
		} else {
			// Inclusive end date: cover the whole day
			t = t.Add(24*time.Hour - time.Nanosecond)
			query.Filter.EndDate = &t
		}
	}

	rawPrice := q.Get("total_price")
	rawRule := q.Get("total_price_filtering_rule")
	if rawPrice != "" {
		price, err := decimal.NewFromString(rawPrice)
		if err != nil {
			errs = append(errs, middleware.ValidationError{Field: "total_price", Message: "Invalid decimal value"})
		} else {
			query.Filter.TotalPrice = &price
		}
	}
	if rawRule != "" {
		rule := domain.TotalPriceRule(rawRule)
		if !rule.Valid() {
			errs = append(errs, middleware.ValidationError{Field: "total_price_filtering_rule", Message: "Value must be one of: gt ge lt le"})
		} else {
			query.Filter.TotalPriceRule = rule
		}
	}
	// The total-price filter needs both halves
	if (rawPrice == "") != (rawRule == "") {
		errs = append(errs, middleware.ValidationError{
			Field:   "total_price",
			Message: "total_price and total_price_filtering_rule must be supplied together",
		})
	}

	if raw := q.Get("purchase_type"); raw != "" {
		method := domain.PurchasingMethod(raw)
		if !method.Valid() {
			errs = append(errs, middleware.ValidationError{Field: "purchase_type", Message: "Value must be one of: cash cashless"})
		} else {
			query.Filter.PurchaseType = &method
		}
	}

	if raw := q.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			errs = append(errs, middleware.ValidationError{Field: "page", Message: "Value must be greater than or equal to 1"})
		} else {
			query.Page = page
		}
	}
	if raw := q.Get("size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 1 || size > 100 {
			errs = append(errs, middleware.ValidationError{Field: "size", Message: "Value must be between 1 and 100"})
		} else {
			query.Size = size
		}
	}

	return query, errs
}
