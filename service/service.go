package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"retail-inventory/journal"
	models "retail-inventory/model"
	"retail-inventory/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrCartEmpty         = errors.New("cart empty")
	ErrPromotionNotFound = models.NewInvalidArgument("promotion not found")
)

// Product listing filters accepted by ListProducts.
const (
	FilterAll       = "all"
	FilterActive    = "active"
	FilterAvailable = "available"
	FilterCart      = "cart"
)

// Promotion types accepted by CreatePromotion.
const (
	PromotionNone       = "none"
	PromotionPercent    = "percent"
	PromotionEveryXFree = "every_x_free"
)

type Service struct {
	store   store.Store
	journal journal.Journal
	logger  *zap.Logger

	mu         sync.RWMutex
	promotions map[string]models.Promotion
	order      []string
}

func NewService(s store.Store, j journal.Journal, logger *zap.Logger) *Service {
	if j == nil {
		j = journal.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:      s,
		journal:    j,
		logger:     logger,
		promotions: map[string]models.Promotion{},
	}
}

// RegisterPromotion makes p available to products by its current name.
func (s *Service) RegisterPromotion(p models.Promotion) error {
	if p == nil {
		return models.NewInvalidArgument("promotion required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.promotions[p.Name()]; ok {
		return models.NewInvalidArgumentf("promotion %q already exists", p.Name())
	}
	s.promotions[p.Name()] = p
	s.order = append(s.order, p.Name())
	return nil
}

func (s *Service) promotion(name string) (models.Promotion, error) {
	if name == "" {
		return models.DefaultPromotion, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.promotions[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrPromotionNotFound)
	}
	return p, nil
}

func (s *Service) CreatePromotion(in CreatePromotionInput) (string, error) {
	var (
		p   models.Promotion
		err error
	)
	switch in.Type {
	case "", PromotionNone:
		p, err = models.NewNoPromotion(in.Name)
	case PromotionPercent:
		p, err = models.NewPercentDiscount(in.Name, in.Percent)
	case PromotionEveryXFree:
		percent := 100
		if in.Percent != 0 {
			percent = in.Percent
		}
		p, err = models.NewEveryXDiscounted(in.Name, in.X, percent)
	default:
		return "", models.NewInvalidArgumentf("unknown promotion type %q", in.Type)
	}
	if err != nil {
		return "", err
	}
	if err := s.RegisterPromotion(p); err != nil {
		return "", err
	}
	return p.Name(), nil
}

// RenamePromotion renames a registered promotion. Every product sharing it
// shows the new name.
func (s *Service) RenamePromotion(oldName, newName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.promotions[oldName]
	if !ok {
		return fmt.Errorf("%s: %w", oldName, ErrPromotionNotFound)
	}
	if _, taken := s.promotions[newName]; taken {
		return models.NewInvalidArgumentf("promotion %q already exists", newName)
	}
	r, ok := p.(interface{ Rename(string) error })
	if !ok {
		return models.NewInvalidArgumentf("promotion %q cannot be renamed", oldName)
	}
	if err := r.Rename(newName); err != nil {
		return err
	}
	delete(s.promotions, oldName)
	s.promotions[newName] = p
	for i, n := range s.order {
		if n == oldName {
			s.order[i] = newName
		}
	}
	return nil
}

func (s *Service) ListPromotions() []PromotionDTO {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]PromotionDTO, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, toPromotionDTO(s.promotions[name]))
	}
	return out
}

func (s *Service) CreateProduct(in CreateProductInput) (string, error) {
	if in.Name == "" {
		return "", models.NewInvalidArgument("name required")
	}
	if in.Price.IsNegative() {
		return "", models.NewInvalidArgument("price must be >= 0")
	}
	kind, err := models.ParseKind(in.Kind)
	if err != nil {
		return "", err
	}
	promo, err := s.promotion(in.Promotion)
	if err != nil {
		return "", err
	}

	var p *models.Product
	switch kind {
	case models.KindUnlimited:
		p, err = models.NewUnlimitedProduct(in.Name, in.Price, models.WithPromotion(promo))
	case models.KindCapped:
		p, err = models.NewCappedProduct(in.Name, in.Price, in.Quantity, in.Maximum, models.WithPromotion(promo))
	default:
		p, err = models.NewProduct(in.Name, in.Price, in.Quantity, models.WithPromotion(promo))
	}
	if err != nil {
		return "", err
	}
	return s.store.AddProduct(p)
}

func (s *Service) RemoveProduct(name string) (string, error) {
	p, ok := s.store.Product(name)
	if !ok {
		return "", fmt.Errorf("%s: %w", name, store.ErrProductNotFound)
	}
	return s.store.RemoveProduct(p)
}

func (s *Service) ListProducts(filter string, byPrice bool) ([]ProductDTO, error) {
	var ps []*models.Product
	switch filter {
	case "", FilterAll:
		ps = s.store.Products()
	case FilterActive:
		ps = s.store.ActiveProducts()
	case FilterAvailable:
		ps = s.store.AvailableProducts()
	case FilterCart:
		ps = s.store.AvailableForCart()
	default:
		return nil, models.NewInvalidArgumentf("unknown filter %q", filter)
	}
	if byPrice {
		models.SortByPrice(ps)
	}
	out := make([]ProductDTO, 0, len(ps))
	for _, p := range ps {
		out = append(out, toProductDTO(p))
	}
	return out, nil
}

func (s *Service) TotalQuantity() int {
	return s.store.TotalQuantity()
}

func (s *Service) UpdateStock(name string, newStock int) error {
	if newStock < 0 {
		return models.NewInvalidArgument("stock cannot be negative")
	}
	return s.store.UpdateStock(name, newStock)
}

func (s *Service) UpdatePrice(name string, price decimal.Decimal) error {
	if price.IsNegative() {
		return models.NewInvalidArgument("price must be >= 0")
	}
	return s.store.UpdatePrice(name, price)
}

func (s *Service) UpdatePromotion(name, promotion string) error {
	promo, err := s.promotion(promotion)
	if err != nil {
		return err
	}
	return s.store.UpdatePromotion(name, promo)
}

func (s *Service) AddToCart(name string, qty int) error {
	if name == "" {
		return models.NewInvalidArgument("product required")
	}
	if qty <= 0 {
		return models.NewInvalidArgument("quantity must be > 0")
	}
	return s.store.AddToCart(name, qty)
}

// GetCart lists the cart with each line priced as it would be if the cart
// were settled now.
func (s *Service) GetCart() ([]CartDTO, decimal.Decimal, error) {
	lines := s.store.CartLines()
	total := decimal.Zero
	out := make([]CartDTO, 0, len(lines))
	for _, p := range s.store.Products() {
		qty, ok := lines[p.Name()]
		if !ok {
			continue
		}
		price := p.Price()
		estimate := p.Promotion().Apply(price, qty)
		out = append(out, CartDTO{Product: p.Name(), Quantity: qty, Price: price, Estimate: estimate})
		total = total.Add(estimate)
		delete(lines, p.Name())
	}
	if len(lines) > 0 {
		return nil, decimal.Zero, fmt.Errorf("%d cart lines: %w", len(lines), store.ErrProductNotFound)
	}
	return out, total, nil
}

func (s *Service) ClearCart() {
	s.store.ClearCart()
}

// Checkout settles the cart and hands the order to the journal. A journal
// failure is logged; the settlement itself is never undone.
func (s *Service) Checkout(ctx context.Context) (OrderDTO, error) {
	if len(s.store.CartLines()) == 0 {
		return OrderDTO{}, ErrCartEmpty
	}
	order := s.store.Settle()
	if err := s.journal.RecordOrder(ctx, order); err != nil {
		s.logger.Error("recording order failed", zap.String("order_id", order.ID.String()), zap.Error(err))
	}
	return toOrderDTO(order), nil
}

// DTOs
type CreateProductInput struct {
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Kind      string          `json:"kind,omitempty"`
	Maximum   int             `json:"maximum,omitempty"`
	Promotion string          `json:"promotion,omitempty"`
}

type CreatePromotionInput struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Percent int    `json:"percent,omitempty"`
	X       int    `json:"x,omitempty"`
}

type ProductDTO struct {
	Name      string          `json:"name"`
	Kind      string          `json:"kind"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Unlimited bool            `json:"unlimited,omitempty"`
	Active    bool            `json:"active"`
	Maximum   int             `json:"maximum,omitempty"`
	Promotion string          `json:"promotion"`
}

type PromotionDTO struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Percent int    `json:"percent,omitempty"`
	X       int    `json:"x,omitempty"`
}

type CartDTO struct {
	Product  string          `json:"product"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Estimate decimal.Decimal `json:"estimate"`
}

type OrderLineDTO struct {
	Product   string          `json:"product"`
	Quantity  int             `json:"quantity"`
	Amount    decimal.Decimal `json:"amount"`
	Promotion string          `json:"promotion,omitempty"`
	Error     string          `json:"error,omitempty"`
}

type OrderDTO struct {
	ID        uuid.UUID       `json:"id"`
	Lines     []OrderLineDTO  `json:"lines"`
	Total     decimal.Decimal `json:"total"`
	Requested int             `json:"requested"`
	Fulfilled int             `json:"fulfilled"`
	CreatedAt time.Time       `json:"created_at"`
}

func toProductDTO(p *models.Product) ProductDTO {
	d := ProductDTO{
		Name:      p.Name(),
		Kind:      p.Kind().String(),
		Price:     p.Price(),
		Active:    p.IsActive(),
		Promotion: p.Promotion().Name(),
	}
	if p.IsUnlimited() {
		d.Unlimited = true
	} else {
		d.Quantity = p.Quantity()
	}
	if maximum, ok := p.Maximum(); ok {
		d.Maximum = maximum
	}
	return d
}

func toPromotionDTO(p models.Promotion) PromotionDTO {
	d := PromotionDTO{Name: p.Name(), Type: PromotionNone}
	switch v := p.(type) {
	case *models.PercentDiscount:
		d.Type = PromotionPercent
		d.Percent = v.Percent()
	case *models.EveryXFree:
		d.Type = PromotionEveryXFree
		d.Percent = v.Percent()
		d.X = v.X()
	}
	return d
}

func toOrderDTO(o models.Order) OrderDTO {
	od := OrderDTO{
		ID:        o.ID,
		Total:     o.Total,
		Requested: o.Requested,
		Fulfilled: o.Fulfilled,
		CreatedAt: o.CreatedAt,
		Lines:     make([]OrderLineDTO, 0, len(o.Lines)),
	}
	for _, l := range o.Lines {
		line := OrderLineDTO{Product: l.Product, Quantity: l.Quantity, Amount: l.Amount, Promotion: l.Promotion}
		if l.Err != nil {
			line.Error = l.Err.Error()
		}
		od.Lines = append(od.Lines, line)
	}
	return od
}
