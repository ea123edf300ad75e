package store

import (
	"sync"
	"time"

	models "retail-inventory/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// MemoryStore is a Store holding the catalog and its single cart in process
// memory.
//
// Locking: mu guards the structure of the products slice only. Stock and
// price live behind each product's own mutex, and the cart has its own.
type MemoryStore struct {
	mu       sync.RWMutex
	products []*models.Product
	cart     *Cart

	logger *zap.Logger
	strict bool
	now    func() time.Time
}

// Option configures a MemoryStore.
type Option func(*MemoryStore)

func WithLogger(l *zap.Logger) Option {
	return func(s *MemoryStore) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStrictContracts makes Settle panic when the cart references a product
// that is no longer in the catalog, instead of logging and skipping the line.
func WithStrictContracts(strict bool) Option {
	return func(s *MemoryStore) { s.strict = strict }
}

// WithClock overrides the time source stamped on orders.
func WithClock(now func() time.Time) Option {
	return func(s *MemoryStore) { s.now = now }
}

// NewMemoryStore creates a store with the given catalog. Product names must
// be unique.
func NewMemoryStore(products []*models.Product, opts ...Option) (*MemoryStore, error) {
	s := &MemoryStore{
		cart:   NewCart(),
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	for _, p := range products {
		if _, err := s.AddProduct(p); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Cart exposes the store's cart.
func (s *MemoryStore) Cart() *Cart { return s.cart }

// AddProduct appends p to the catalog and returns its name.
func (s *MemoryStore) AddProduct(p *models.Product) (string, error) {
	if p == nil {
		return "", models.NewInvalidArgument("Store products must be instances of Product")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.products {
		if existing.Name() == p.Name() {
			return "", models.NewInvalidArgumentf("A product named %s is already in the store", p.Name())
		}
	}
	s.products = append(s.products, p)
	return p.Name(), nil
}

// RemoveProduct removes p from the catalog and returns its name. Removing a
// product that is not in the catalog is not an error.
func (s *MemoryStore) RemoveProduct(p *models.Product) (string, error) {
	if p == nil {
		return "", models.NewInvalidArgument("Store products must be instances of Product")
	}
	s.mu.Lock()
	for i, existing := range s.products {
		if existing == p {
			s.products = append(s.products[:i:i], s.products[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	if pending := s.cart.ItemQuantity(p.Name()); pending > 0 {
		s.logger.Warn("removed product still has cart quantity",
			zap.String("product", p.Name()), zap.Int("quantity", pending))
	}
	return p.Name(), nil
}

// Product looks a catalog entry up by name.
func (s *MemoryStore) Product(name string) (*models.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if p.Name() == name {
			return p, true
		}
	}
	return nil, false
}

// Products returns the catalog in insertion order. The slice is a copy; the
// products are shared.
func (s *MemoryStore) Products() []*models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Product, len(s.products))
	copy(out, s.products)
	return out
}

// AddToCart adds qty units of the named product to the cart, as long as the
// stock not yet claimed by the cart covers them and the product's cap allows it.
func (s *MemoryStore) AddToCart(name string, qty int) error {
	p, err := s.lookup(name)
	if err != nil {
		s.logger.Info("cart add rejected", zap.String("product", name), zap.Error(err))
		return err
	}
	if err := s.cart.add(p, qty, p.Quantity()); err != nil {
		s.logger.Info("cart add rejected", zap.String("product", name), zap.Int("quantity", qty), zap.Error(err))
		return err
	}
	return nil
}

func (s *MemoryStore) CartQuantity(name string) int { return s.cart.ItemQuantity(name) }

func (s *MemoryStore) CartLines() map[string]int { return s.cart.Lines() }

func (s *MemoryStore) ClearCart() { s.cart.Clear() }

// Settle turns the cart into an order. Each line buys its product's stock and
// is priced by the product's current promotion. A line that cannot be
// fulfilled is recorded with its error and does not stop the others. The
// cart is empty afterwards whatever the outcome.
func (s *MemoryStore) Settle() models.Order {
	lines := s.cart.Drain()

	order := models.Order{
		ID:        uuid.New(),
		Lines:     make([]models.OrderLine, 0, len(lines)),
		Total:     decimal.Zero,
		CreatedAt: s.now(),
	}

	for _, name := range sortedNames(lines) {
		qty := lines[name]
		order.Requested += qty
		line := models.OrderLine{Product: name, Quantity: qty, Amount: decimal.Zero}

		p, ok := s.Product(name)
		if !ok {
			err := models.NewInternalf("Cart references %s which is not in the store", name)
			if s.strict {
				panic(err)
			}
			s.logger.Error("cart line without catalog product",
				zap.String("product", name), zap.Int("quantity", qty))
			line.Err = err
			order.Lines = append(order.Lines, line)
			continue
		}

		amount, promotion, err := p.Purchase(qty)
		if err != nil {
			s.logger.Warn("cart line not fulfilled",
				zap.String("product", name), zap.Int("requested", qty), zap.Error(err))
			line.Err = err
			order.Lines = append(order.Lines, line)
			continue
		}

		line.Amount = amount
		line.Promotion = promotion.Name()
		order.Total = order.Total.Add(amount)
		order.Fulfilled += qty
		order.Lines = append(order.Lines, line)
	}

	s.logger.Info("order settled",
		zap.String("order_id", order.ID.String()),
		zap.String("total", order.Total.String()),
		zap.Int("requested", order.Requested),
		zap.Int("fulfilled", order.Fulfilled))
	return order
}

var _ Store = (*MemoryStore)(nil)
