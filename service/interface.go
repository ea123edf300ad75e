package service

import (
	"context"

	"github.com/shopspring/decimal"
)

type ServiceInterface interface {
	CreateProduct(in CreateProductInput) (string, error)
	RemoveProduct(name string) (string, error)
	ListProducts(filter string, byPrice bool) ([]ProductDTO, error)
	TotalQuantity() int
	UpdateStock(name string, newStock int) error
	UpdatePrice(name string, price decimal.Decimal) error
	UpdatePromotion(name, promotion string) error

	CreatePromotion(in CreatePromotionInput) (string, error)
	RenamePromotion(oldName, newName string) error
	ListPromotions() []PromotionDTO

	AddToCart(name string, qty int) error
	GetCart() ([]CartDTO, decimal.Decimal, error)
	ClearCart()
	Checkout(ctx context.Context) (OrderDTO, error)
}
