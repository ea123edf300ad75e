package store

import (
	models "retail-inventory/model"

	"github.com/shopspring/decimal"
)

// Store is the catalog, cart and settlement surface used by the service layer.
type Store interface {
	AddProduct(p *models.Product) (string, error)
	RemoveProduct(p *models.Product) (string, error)
	Product(name string) (*models.Product, bool)

	Products() []*models.Product
	ActiveProducts() []*models.Product
	AvailableProducts() []*models.Product
	AvailableForCart() []*models.Product
	TotalQuantity() int

	AddToCart(name string, qty int) error
	CartQuantity(name string) int
	CartLines() map[string]int
	ClearCart()

	Settle() models.Order

	GetStock(name string) (int, error)
	UpdateStock(name string, newStock int) error
	UpdatePrice(name string, price decimal.Decimal) error
	UpdatePromotion(name string, promotion models.Promotion) error
}
