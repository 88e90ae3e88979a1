package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"checkpos/internal/domain"
	"checkpos/internal/money"
	"checkpos/internal/receipt"
	"checkpos/internal/repository"
)

// ProductInput is one requested sale line.
type ProductInput struct {
	Name     string
	Price    decimal.Decimal
	Quantity decimal.Decimal
}

// PaymentInput is the payment tendered for the whole check.
type PaymentInput struct {
	Type   domain.PurchasingMethod
	Amount decimal.Decimal
}

// CreateCheckInput is the full request to issue a check.
type CreateCheckInput struct {
	Products []ProductInput
	Payment  PaymentInput
}

// AnswerProduct is one sold line in the creation response.
type AnswerProduct struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity decimal.Decimal `json:"quantity"`
	Total    decimal.Decimal `json:"total"`
}

// AnswerPayment echoes the tendered payment in the creation response.
type AnswerPayment struct {
	Type   domain.PurchasingMethod `json:"type"`
	Amount decimal.Decimal         `json:"amount"`
}

// AnswerCheck is the response to a successful check creation.
type AnswerCheck struct {
	CheckID   uuid.UUID       `json:"check_id"`
	Products  []AnswerProduct `json:"products"`
	Payment   AnswerPayment   `json:"payment"`
	Total     decimal.Decimal `json:"total"`
	Rest      decimal.Decimal `json:"rest"`
	CreatedAt string          `json:"created_at"`
	URL       string          `json:"url"`
}

// CheckProductView is one sold line in the history response.
type CheckProductView struct {
	ProductID         uuid.UUID       `json:"product_id"`
	ProductName       string          `json:"product_name"`
	ProductPrice      decimal.Decimal `json:"product_price"`
	ProductDiscount   decimal.Decimal `json:"product_discount"`
	ProductQuantity   decimal.Decimal `json:"product_quantity"`
	ProductTotalPrice decimal.Decimal `json:"product_total_price"`
	ProductUnits      string          `json:"product_units"`
}

// CheckView is one check in the history response.
type CheckView struct {
	ID               uuid.UUID               `json:"id"`
	CreatedAt        time.Time               `json:"created_at"`
	PurchasingMethod domain.PurchasingMethod `json:"purchasing_method"`
	TotalPrice       decimal.Decimal         `json:"total_price"`
	CheckRest        decimal.Decimal         `json:"check_rest"`
	CheckProducts    []CheckProductView      `json:"check_products"`
	URL              string                  `json:"url"`
}

// CheckHistory is the paginated history response.
type CheckHistory struct {
	Checks     []CheckView `json:"checks"`
	Pagination Pagination  `json:"pagination"`
}

// HistoryQuery is the parsed, validated history request.
type HistoryQuery struct {
	SortOrder repository.SortOrder
	Filter    domain.CheckFilter
	Page      int
	Size      int
}

// HistoryCache caches serialized history responses. A nil implementation is
// allowed; the service then always hits the database.
type HistoryCache interface {
	Get(ctx context.Context, userID int64, query string) ([]byte, bool)
	Set(ctx context.Context, userID int64, query string, payload []byte)
	Invalidate(ctx context.Context, userID int64)
}

// ReceiptLinkBuilder builds the public link to a check's printable receipt.
type ReceiptLinkBuilder struct {
	baseURL   string
	lineWidth int
}

// NewReceiptLinkBuilder creates a link builder. lineWidth is the default
// receipt width embedded in generated links.
func NewReceiptLinkBuilder(baseURL string, lineWidth int) *ReceiptLinkBuilder {
	return &ReceiptLinkBuilder{
		baseURL:   strings.TrimRight(baseURL, "/"),
		lineWidth: lineWidth,
	}
}

// PrintLink returns the receipt URL for the given check identifier.
func (b *ReceiptLinkBuilder) PrintLink(identifier uuid.UUID) string {
	return fmt.Sprintf("%s/api/checks/print?check_identifier=%s&line_width=%d", b.baseURL, identifier, b.lineWidth)
}

// CheckService defines the interface for check business logic.
type CheckService interface {
	CreateCheck(ctx context.Context, userID int64, input CreateCheckInput) (*AnswerCheck, error)
	GetUserChecks(ctx context.Context, userID int64, query HistoryQuery) (*CheckHistory, error)
	PrintReceipt(ctx context.Context, identifier uuid.UUID, lineWidth int) (string, error)
}

type checkService struct {
	store     repository.Store
	userRepo  repository.UserRepository
	validator *SaleValidator
	links     *ReceiptLinkBuilder
	cache     HistoryCache
	logger    *zap.Logger
	places    int32
}

// NewCheckService creates a new instance of CheckService. cache may be nil.
func NewCheckService(
	store repository.Store,
	userRepo repository.UserRepository,
	links *ReceiptLinkBuilder,
	cache HistoryCache,
	logger *zap.Logger,
	places int32,
) CheckService {
	return &checkService{
		store:     store,
		userRepo:  userRepo,
		validator: NewSaleValidator(places),
		links:     links,
		cache:     cache,
		logger:    logger,
		places:    places,
	}
}

// CreateCheck issues a check for the given sale. The whole sequence runs in
// one transaction: resolving the catalog, validating the lines, creating the
// check with its sold-product snapshots, finalizing totals and decrementing
// stock. Any failure rolls everything back.
func (s *checkService) CreateCheck(ctx context.Context, userID int64, input CreateCheckInput) (*AnswerCheck, error) {
	var check *domain.Check

	err := s.store.ExecTx(ctx, func(store repository.Store) error {
		names := make([]string, 0, len(input.Products))
		for _, p := range input.Products {
			names = append(names, p.Name)
		}

		lines, err := store.Products().FindByNames(ctx, names)
		if err != nil {
			return fmt.Errorf("failed to resolve products: %w", err)
		}

		catalog := make(map[string]*domain.CatalogLine, len(lines))
		for _, line := range lines {
			catalog[line.Product.Title] = line
		}

		var notFound []string
		seen := make(map[string]bool, len(names))
		for _, name := range names {
			if catalog[name] == nil && !seen[name] {
				notFound = append(notFound, name)
				seen[name] = true
			}
		}
		if len(notFound) > 0 {
			return &ProductsNotFoundError{Names: notFound}
		}

		if violations := s.validator.Validate(input.Products, catalog); len(violations) > 0 {
			return &SaleConflictError{Violations: violations}
		}

		essence, err := s.resolveEssence(ctx, store, userID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		check = &domain.Check{
			Identifier:       uuid.New(),
			CreatedAt:        now,
			PurchasingMethod: input.Payment.Type,
			TotalPrice:       decimal.Zero,
			Rest:             decimal.Zero,
			EssenceID:        essence.ID,
		}
		if err := store.Checks().Create(ctx, check); err != nil {
			return err
		}

		total := decimal.Zero
		for _, p := range input.Products {
			line := catalog[p.Name]
			sold := &domain.SoldProduct{
				CheckID:           check.ID,
				StockID:           line.Stock.ID,
				ProductIdentifier: line.Product.Identifier,
				Title:             line.Product.Title,
				Description:       line.Product.Description,
				Units:             line.Product.Units,
				Quantity:          p.Quantity,
				Price:             money.Normalize(line.Price.Price, s.places),
				Discount:          line.Price.Discount,
				TotalPrice:        s.validator.LineTotal(p.Quantity, line.Price.Price),
				SoldAt:            now,
			}
			if err := store.SoldProducts().Create(ctx, sold); err != nil {
				return err
			}
			total = total.Add(sold.TotalPrice)
			check.Products = append(check.Products, sold)
		}

		rest := money.Normalize(input.Payment.Amount.Sub(total), s.places)
		if err := store.Checks().UpdateTotals(ctx, check.ID, total, rest); err != nil {
			return err
		}
		check.TotalPrice = total
		check.Rest = rest

		for _, p := range input.Products {
			line := catalog[p.Name]
			if err := store.Stock().Decrement(ctx, line.Stock.ID, p.Quantity, now); err != nil {
				if errors.Is(err, repository.ErrInsufficientStock) {
					// A concurrent sale got there first; report it the same
					// way as the upfront validation.
					return &SaleConflictError{Violations: []string{
						fmt.Sprintf("Product %s has not enough units in stock", p.Name),
					}}
				}
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, userID)
	}

	answer := &AnswerCheck{
		CheckID:   check.Identifier,
		Products:  make([]AnswerProduct, 0, len(check.Products)),
		Payment:   AnswerPayment{Type: input.Payment.Type, Amount: input.Payment.Amount},
		Total:     check.TotalPrice,
		Rest:      check.Rest,
		CreatedAt: check.CreatedAt.Format(time.RFC3339),
		URL:       s.links.PrintLink(check.Identifier),
	}
	for _, sold := range check.Products {
		answer.Products = append(answer.Products, AnswerProduct{
			Name:     sold.Title,
			Price:    sold.Price,
			Quantity: sold.Quantity,
			Total:    sold.TotalPrice,
		})
	}

	s.logger.Info("check created",
		zap.String("identifier", check.Identifier.String()),
		zap.Int64("user_id", userID),
		zap.String("total", check.TotalPrice.String()),
	)

	return answer, nil
}

// GetUserChecks returns one page of the user's check history. A user with no
// checks at all gets an empty page, not an error. Responses are served from
// the cache when an identical query was answered since the user's last check.
func (s *checkService) GetUserChecks(ctx context.Context, userID int64, query HistoryQuery) (*CheckHistory, error) {
	if query.Page < 1 {
		query.Page = 1
	}
	if query.Size < 1 {
		query.Size = 10
	}

	cacheKey := s.historyCacheKey(query)
	if s.cache != nil && cacheKey != "" {
		if payload, ok := s.cache.Get(ctx, userID, cacheKey); ok {
			history := &CheckHistory{}
			if err := json.Unmarshal(payload, history); err == nil {
				return history, nil
			}
			s.logger.Warn("discarding corrupt history cache entry", zap.Int64("user_id", userID))
		}
	}

	essence, err := s.store.Essences().FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrEssenceNotFound) {
			return &CheckHistory{Checks: []CheckView{}}, nil
		}
		return nil, fmt.Errorf("failed to find user essence: %w", err)
	}

	limit := query.Size
	offset := (query.Page - 1) * query.Size
	checks, total, err := s.store.Checks().ListByEssence(ctx, essence.ID, query.Filter, query.SortOrder, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list checks: %w", err)
	}

	history := &CheckHistory{
		Checks:     make([]CheckView, 0, len(checks)),
		Pagination: Paginate(query.Page, query.Size, total),
	}
	for _, check := range checks {
		view := CheckView{
			ID:               check.Identifier,
			CreatedAt:        check.CreatedAt,
			PurchasingMethod: check.PurchasingMethod,
			TotalPrice:       check.TotalPrice,
			CheckRest:        check.Rest,
			CheckProducts:    make([]CheckProductView, 0, len(check.Products)),
			URL:              s.links.PrintLink(check.Identifier),
		}
		for _, sold := range check.Products {
			view.CheckProducts = append(view.CheckProducts, CheckProductView{
				ProductID:         sold.ProductIdentifier,
				ProductName:       sold.Title,
				ProductPrice:      sold.Price,
				ProductDiscount:   sold.Discount,
				ProductQuantity:   sold.Quantity,
				ProductTotalPrice: sold.TotalPrice,
				ProductUnits:      sold.Units,
			})
		}
		history.Checks = append(history.Checks, view)
	}

	if s.cache != nil && cacheKey != "" {
		if payload, err := json.Marshal(history); err == nil {
			s.cache.Set(ctx, userID, cacheKey, payload)
		}
	}

	return history, nil
}

// PrintReceipt renders the check as an HTML-wrapped text receipt. This is a
// public lookup: possession of the identifier is the only credential.
func (s *checkService) PrintReceipt(ctx context.Context, identifier uuid.UUID, lineWidth int) (string, error) {
	check, err := s.store.Checks().FindByIdentifier(ctx, identifier)
	if err != nil {
		return "", err
	}

	essence, err := s.store.Essences().FindByID(ctx, check.EssenceID)
	if err != nil {
		return "", fmt.Errorf("failed to find check owner essence: %w", err)
	}

	owner, err := s.userRepo.FindByID(ctx, essence.UserID)
	if err != nil {
		return "", fmt.Errorf("failed to find check owner: %w", err)
	}

	data := receipt.Data{
		OwnerName:        owner.FirstName + " " + owner.LastName,
		Items:            make([]receipt.Item, 0, len(check.Products)),
		Total:            check.TotalPrice,
		PurchasingMethod: check.PurchasingMethod,
		Rest:             check.Rest,
		Date:             check.CreatedAt,
	}
	for _, sold := range check.Products {
		data.Items = append(data.Items, receipt.Item{
			Quantity:    sold.Quantity,
			UnitPrice:   sold.Price,
			Description: sold.Title,
			TotalPrice:  sold.TotalPrice,
		})
	}

	return receipt.ToHTML(receipt.Render(data, lineWidth)), nil
}

func (s *checkService) resolveEssence(ctx context.Context, store repository.Store, userID int64) (*domain.UserEssence, error) {
	essence, err := store.Essences().FindByUserID(ctx, userID)
	if err == nil {
		return essence, nil
	}
	if !errors.Is(err, repository.ErrEssenceNotFound) {
		return nil, fmt.Errorf("failed to find user essence: %w", err)
	}

	essence = &domain.UserEssence{UserID: userID}
	if err := store.Essences().Create(ctx, essence); err != nil {
		return nil, fmt.Errorf("failed to create user essence: %w", err)
	}
	return essence, nil
}

// historyCacheKey serializes the query so identical requests share one cache
// entry. An empty key disables caching for the request.
func (s *checkService) historyCacheKey(query HistoryQuery) string {
	payload, err := json.Marshal(struct {
		SortOrder repository.SortOrder
		Filter    domain.CheckFilter
		Page      int
		Size      int
	}{query.SortOrder, query.Filter, query.Page, query.Size})
	if err != nil {
		return ""
	}
	return string(payload)
}
