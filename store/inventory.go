package store

import (
	"fmt"

	models "retail-inventory/model"

	"github.com/shopspring/decimal"
)

// ErrProductNotFound is returned when a name does not match a catalog entry.
var ErrProductNotFound = models.NewInvalidArgument("product not found")

func (s *MemoryStore) lookup(name string) (*models.Product, error) {
	p, ok := s.Product(name)
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrProductNotFound)
	}
	return p, nil
}

// UpdateStock sets the absolute stock for a product (admin operation).
func (s *MemoryStore) UpdateStock(name string, newStock int) error {
	p, err := s.lookup(name)
	if err != nil {
		return err
	}
	return p.SetQuantity(newStock)
}

// GetStock returns current stock for a product, models.Unlimited for
// products that are not stocked.
func (s *MemoryStore) GetStock(name string) (int, error) {
	p, err := s.lookup(name)
	if err != nil {
		return 0, err
	}
	return p.Quantity(), nil
}

func (s *MemoryStore) UpdatePrice(name string, price decimal.Decimal) error {
	p, err := s.lookup(name)
	if err != nil {
		return err
	}
	return p.SetPrice(price)
}

// UpdatePromotion swaps the promotion used by future settlements. Lines
// already in the cart are priced with whatever is set at settlement time.
func (s *MemoryStore) UpdatePromotion(name string, promotion models.Promotion) error {
	p, err := s.lookup(name)
	if err != nil {
		return err
	}
	p.SetPromotion(promotion)
	return nil
}

// TotalQuantity sums the stock of the catalog, skipping unlimited products.
func (s *MemoryStore) TotalQuantity() int {
	total := 0
	for _, p := range s.Products() {
		if p.IsUnlimited() {
			continue
		}
		total += p.Quantity()
	}
	return total
}

func (s *MemoryStore) ActiveProducts() []*models.Product {
	return s.filter(func(p *models.Product) bool { return p.IsActive() })
}

// AvailableProducts returns the active products that have stock left.
func (s *MemoryStore) AvailableProducts() []*models.Product {
	return s.filter(func(p *models.Product) bool { return p.IsActive() && p.InStock() })
}

// AvailableForCart narrows AvailableProducts to those whose cart quantity is
// still below their cap. Uncapped products stay available.
func (s *MemoryStore) AvailableForCart() []*models.Product {
	return s.filter(func(p *models.Product) bool {
		if !p.IsActive() || !p.InStock() {
			return false
		}
		maximum, capped := p.Maximum()
		return !capped || s.cart.ItemQuantity(p.Name()) < maximum
	})
}

func (s *MemoryStore) filter(keep func(*models.Product) bool) []*models.Product {
	out := []*models.Product{}
	for _, p := range s.Products() {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}
