package models

import (
	"sync"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Promotion prices a cart line. Implementations are shared across products
// and must be safe for concurrent use.
type Promotion interface {
	Name() string
	Apply(price decimal.Decimal, quantity int) decimal.Decimal
}

// DefaultPromotion is the promotion of every product created without one.
var DefaultPromotion Promotion = noPromotion{}

type noPromotion struct{}

func (noPromotion) Name() string { return "No promotion" }

func (noPromotion) Apply(price decimal.Decimal, quantity int) decimal.Decimal {
	return lineTotal(price, quantity)
}

// label holds the only mutable part of a promotion.
type label struct {
	mu   sync.RWMutex
	name string
}

func checkName(name string) error {
	if name == "" {
		return NewInvalidArgument("Provide a name for the promotion")
	}
	return nil
}

func (l *label) Name() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.name
}

// Rename changes the display name of the promotion.
func (l *label) Rename(name string) error {
	if err := checkName(name); err != nil {
		return err
	}
	l.mu.Lock()
	l.name = name
	l.mu.Unlock()
	return nil
}

// NoPromotion charges the full price. Use it when a named "no discount"
// entry is needed; otherwise DefaultPromotion.
type NoPromotion struct {
	label
}

func NewNoPromotion(name string) (*NoPromotion, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	return &NoPromotion{label: label{name: name}}, nil
}

func (p *NoPromotion) Apply(price decimal.Decimal, quantity int) decimal.Decimal {
	return lineTotal(price, quantity)
}

// PercentDiscount takes a percentage off the whole line.
type PercentDiscount struct {
	label
	percent int
}

// NewPercentDiscount accepts percent in (0, 100]; 20 means 20% off.
func NewPercentDiscount(name string, percent int) (*PercentDiscount, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	if percent <= 0 || percent > 100 {
		return nil, NewInvalidArgumentf("Percent must be in (0, 100], got %d", percent)
	}
	return &PercentDiscount{label: label{name: name}, percent: percent}, nil
}

func (p *PercentDiscount) Percent() int { return p.percent }

func (p *PercentDiscount) Apply(price decimal.Decimal, quantity int) decimal.Decimal {
	return lineTotal(price, quantity).
		Mul(decimal.NewFromInt(int64(100 - p.percent))).
		Div(hundred)
}

// EveryXFree discounts every x-th item of a line by percent (100 makes it free).
type EveryXFree struct {
	label
	x       int
	percent int
}

// NewEveryXFree makes every x-th item free.
func NewEveryXFree(name string, x int) (*EveryXFree, error) {
	return NewEveryXDiscounted(name, x, 100)
}

// NewEveryXDiscounted takes percent off every x-th item. x must be > 1 and
// percent within [0, 100].
func NewEveryXDiscounted(name string, x, percent int) (*EveryXFree, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	if x <= 1 {
		return nil, NewInvalidArgumentf("X must be greater than 1, got %d", x)
	}
	if percent < 0 || percent > 100 {
		return nil, NewInvalidArgumentf("Percent must be in [0, 100], got %d", percent)
	}
	return &EveryXFree{label: label{name: name}, x: x, percent: percent}, nil
}

func (p *EveryXFree) X() int       { return p.x }
func (p *EveryXFree) Percent() int { return p.percent }

func (p *EveryXFree) Apply(price decimal.Decimal, quantity int) decimal.Decimal {
	discounted := decimal.NewFromInt(int64(quantity / p.x))
	off := price.Mul(discounted).Mul(decimal.NewFromInt(int64(p.percent))).Div(hundred)
	return lineTotal(price, quantity).Sub(off)
}

func lineTotal(price decimal.Decimal, quantity int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(quantity)))
}
