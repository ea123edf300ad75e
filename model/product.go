package models

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
)

// Unlimited is the quantity reported by products that are not stocked.
const Unlimited = math.MaxInt

// Kind distinguishes the product variants.
type Kind int

const (
	KindStocked Kind = iota
	KindUnlimited
	KindCapped
)

func (k Kind) String() string {
	switch k {
	case KindStocked:
		return "stocked"
	case KindUnlimited:
		return "unlimited"
	case KindCapped:
		return "capped"
	default:
		return "unknown"
	}
}

// ParseKind maps the names returned by Kind.String back to a Kind.
// An empty string is a stocked product.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(s) {
	case "", "stocked":
		return KindStocked, nil
	case "unlimited":
		return KindUnlimited, nil
	case "capped":
		return KindCapped, nil
	default:
		return 0, NewInvalidArgumentf("Unknown product kind %q", s)
	}
}

// Product is a catalog entry carrying stock. All state is guarded by the
// product's own mutex so purchases of different products never contend.
type Product struct {
	mu        sync.Mutex
	name      string
	kind      Kind
	price     decimal.Decimal
	quantity  int
	active    bool
	maximum   int
	promotion Promotion
}

// Option configures a Product at construction.
type Option func(*Product)

// WithPromotion sets the promotion applied at settlement. A nil promotion
// keeps DefaultPromotion.
func WithPromotion(p Promotion) Option {
	return func(pr *Product) {
		if p != nil {
			pr.promotion = p
		}
	}
}

// NewProduct creates a stocked product. It is active while quantity > 0.
func NewProduct(name string, price decimal.Decimal, quantity int, opts ...Option) (*Product, error) {
	if err := checkProduct(name, price, quantity); err != nil {
		return nil, err
	}
	return build(&Product{name: name, kind: KindStocked, price: price, quantity: quantity}, opts), nil
}

// NewUnlimitedProduct creates a product whose stock never runs out, such as
// a license or a service.
func NewUnlimitedProduct(name string, price decimal.Decimal, opts ...Option) (*Product, error) {
	if err := checkProduct(name, price, 0); err != nil {
		return nil, err
	}
	return build(&Product{name: name, kind: KindUnlimited, price: price, quantity: Unlimited}, opts), nil
}

// NewCappedProduct creates a stocked product of which at most maximum units
// may be in a single order. The cap is enforced by the cart.
func NewCappedProduct(name string, price decimal.Decimal, quantity, maximum int, opts ...Option) (*Product, error) {
	if err := checkProduct(name, price, quantity); err != nil {
		return nil, err
	}
	if maximum < 1 {
		return nil, NewInvalidArgumentf("The maximum of %s must be at least 1, got %d", name, maximum)
	}
	return build(&Product{name: name, kind: KindCapped, price: price, quantity: quantity, maximum: maximum}, opts), nil
}

func build(p *Product, opts []Option) *Product {
	p.promotion = DefaultPromotion
	p.active = p.quantity > 0
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func checkProduct(name string, price decimal.Decimal, quantity int) error {
	if name == "" {
		return NewInvalidArgument("The product name should not be empty")
	}
	if price.IsNegative() {
		return NewInvalidArgumentf("The price of %s cannot be negative", name)
	}
	if quantity < 0 {
		return NewInvalidArgumentf("The quantity of %s cannot be negative", name)
	}
	return nil
}

// Name is immutable and needs no lock.
func (p *Product) Name() string { return p.name }

func (p *Product) Kind() Kind { return p.kind }

func (p *Product) IsUnlimited() bool { return p.kind == KindUnlimited }

// Maximum returns the per-order cap of a capped product.
func (p *Product) Maximum() (int, bool) {
	if p.kind != KindCapped {
		return 0, false
	}
	return p.maximum, true
}

func (p *Product) Price() decimal.Decimal {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.price
}

// Quantity returns the current stock, or Unlimited.
func (p *Product) Quantity() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.quantity
}

func (p *Product) IsActive() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

// InStock reports whether at least one unit can be bought.
func (p *Product) InStock() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.quantity > 0
}

func (p *Product) Promotion() Promotion {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.promotion
}

// SetQuantity replaces the stock and re-derives the active flag.
func (p *Product) SetQuantity(quantity int) error {
	if p.kind == KindUnlimited {
		return NewInvalidArgumentf("The quantity of %s is unlimited and cannot be set", p.name)
	}
	if quantity < 0 {
		return NewInvalidArgumentf("The quantity of %s cannot be negative", p.name)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.quantity = quantity
	p.active = quantity > 0
	return nil
}

func (p *Product) SetPrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return NewInvalidArgumentf("The price of %s cannot be negative", p.name)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.price = price
	return nil
}

// SetPromotion replaces the promotion; nil restores DefaultPromotion.
func (p *Product) SetPromotion(promotion Promotion) {
	if promotion == nil {
		promotion = DefaultPromotion
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.promotion = promotion
}

// Buy removes quantity units from stock and returns their undiscounted value.
// A request larger than the stock fails with an OUT_OF_STOCK CommandError and
// leaves the product untouched.
func (p *Product) Buy(quantity int) (decimal.Decimal, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.take(quantity); err != nil {
		return decimal.Zero, err
	}
	return lineTotal(p.price, quantity), nil
}

// Purchase is Buy followed by pricing through the product's promotion, both
// under one lock so the bill matches the stock that was taken. The returned
// promotion is the one that priced the line.
func (p *Product) Purchase(quantity int) (decimal.Decimal, Promotion, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.take(quantity); err != nil {
		return decimal.Zero, nil, err
	}
	return p.promotion.Apply(p.price, quantity), p.promotion, nil
}

// take must be called with p.mu held.
func (p *Product) take(quantity int) error {
	if quantity < 0 {
		return NewInvalidArgumentf("Cannot buy a negative quantity (%d) of %s", quantity, p.name)
	}
	if p.kind == KindUnlimited {
		return nil
	}
	if p.quantity < quantity {
		return NewOutOfStock(p.name, p.quantity, quantity)
	}
	p.quantity -= quantity
	p.active = p.quantity > 0
	return nil
}

// Less orders products by price.
func (p *Product) Less(other *Product) bool {
	return p.Price().LessThan(other.Price())
}

// SortByPrice sorts products by ascending price, keeping catalog order for
// equal prices.
func SortByPrice(products []*Product) {
	slices.SortStableFunc(products, func(a, b *Product) int {
		return a.Price().Cmp(b.Price())
	})
}

func (p *Product) String() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	quantity := fmt.Sprint(p.quantity)
	if p.kind == KindUnlimited {
		quantity = "Unlimited"
	}
	s := fmt.Sprintf("%s, Price: %s, Quantity: %s", p.name, p.price.String(), quantity)
	if p.kind == KindCapped {
		s += fmt.Sprintf(", Maximum: %d", p.maximum)
	}
	return s + ", Promotion: " + p.promotion.Name()
}
