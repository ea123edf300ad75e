package store

import (
	"fmt"
	"sort"
	"sync"

	models "retail-inventory/model"
)

// Cart collects the quantities requested per product name until the order
// is settled. It never touches stock.
//
// total is the sum of all lines and never exceeds models.Unlimited, so no
// line or order count derived from the cart can overflow.
type Cart struct {
	mu    sync.Mutex
	items map[string]int
	total int
}

func NewCart() *Cart {
	return &Cart{items: map[string]int{}}
}

// AddItem adds quantity units of product. A rejected request leaves the cart
// unchanged and is reported through the returned error.
func (c *Cart) AddItem(product *models.Product, quantity int) error {
	return c.add(product, quantity, models.Unlimited)
}

// add also refuses to let the line grow beyond stock units. Limits are
// compared against the room left so the sums below cannot wrap.
func (c *Cart) add(product *models.Product, quantity, stock int) error {
	if product == nil {
		return models.NewInvalidArgument("Provide a product to add to the shopping cart")
	}
	if quantity <= 0 {
		return models.NewInvalidArgumentf("Provide a positive quantity of %s, got %d", product.Name(), quantity)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	name := product.Name()
	inCart := c.items[name]

	if maximum, capped := product.Maximum(); capped {
		if quantity > maximum {
			return models.NewLimitExceeded(name, maximum, quantity,
				fmt.Sprintf("You can only have %d of %s", maximum, name))
		}
		if quantity > maximum-inCart {
			return models.NewLimitExceeded(name, maximum, inCart+quantity,
				fmt.Sprintf("The maximum of %s has been reached", name))
		}
	}
	if stock != models.Unlimited && quantity > stock-inCart {
		return models.NewOutOfStock(name, max(stock-inCart, 0), quantity)
	}
	if quantity > models.Unlimited-c.total {
		return models.NewInvalidArgumentf("The shopping cart cannot hold %d more of %s", quantity, name)
	}

	c.items[name] = inCart + quantity
	c.total += quantity
	return nil
}

// ItemQuantity returns 0 for products not in the cart.
func (c *Cart) ItemQuantity(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.items[name]
}

// Len is the number of distinct products in the cart.
func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// TotalQuantity sums the quantities of all lines.
func (c *Cart) TotalQuantity() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}

// Lines returns a copy of the cart.
func (c *Cart) Lines() map[string]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]int, len(c.items))
	for name, q := range c.items {
		out[name] = q
	}
	return out
}

func (c *Cart) Clear() {
	c.mu.Lock()
	c.items = map[string]int{}
	c.total = 0
	c.mu.Unlock()
}

// Drain empties the cart and returns what it held.
func (c *Cart) Drain() map[string]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.items
	c.items = map[string]int{}
	c.total = 0
	return out
}

func sortedNames(lines map[string]int) []string {
	names := make([]string, 0, len(lines))
	for name := range lines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
