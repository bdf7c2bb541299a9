package dashboard

import (
	"fmt"

	"rfid-console/internal/domain"
)

// CartLine is one product in the sale cart.
type CartLine struct {
	Product  domain.ProductWithStock
	Quantity int
}

// Cart holds at most one line per product, each with
// 1 <= Quantity <= Product.StockQuantity. Every mutation either keeps that
// true or leaves the cart unchanged and returns an error.
type Cart struct {
	lines []CartLine
}

func (c *Cart) index(productID int64) int {
	for i, l := range c.lines {
		if l.Product.ID == productID {
			return i
		}
	}
	return -1
}

// Add merges qty of p into the cart.
func (c *Cart) Add(p domain.ProductWithStock, qty int) error {
	if qty < 1 {
		return domain.NewDomainError("Cart.Add", domain.ErrInvalidInput, "quantity must be at least 1")
	}
	i := c.index(p.ID)
	total := qty
	if i >= 0 {
		total += c.lines[i].Quantity
	}
	if total > p.StockQuantity {
		return domain.NewDomainError("Cart.Add", domain.ErrInsufficientStock,
			fmt.Sprintf("available: %d", p.StockQuantity))
	}
	if i >= 0 {
		// Keep the freshest stock figure so later updates check against it.
		c.lines[i] = CartLine{Product: p, Quantity: total}
		return nil
	}
	c.lines = append(c.lines, CartLine{Product: p, Quantity: qty})
	return nil
}

// SetQuantity replaces the quantity of an existing line.
func (c *Cart) SetQuantity(productID int64, qty int) error {
	i := c.index(productID)
	if i < 0 {
		return domain.NewDomainError("Cart.SetQuantity", domain.ErrNotFound, fmt.Sprintf("product %d not in cart", productID))
	}
	if qty < 1 {
		return domain.NewDomainError("Cart.SetQuantity", domain.ErrInvalidInput, "quantity must be at least 1")
	}
	if stock := c.lines[i].Product.StockQuantity; qty > stock {
		return domain.NewDomainError("Cart.SetQuantity", domain.ErrInsufficientStock,
			fmt.Sprintf("available: %d", stock))
	}
	c.lines[i].Quantity = qty
	return nil
}

// Remove drops the line for productID, if any.
func (c *Cart) Remove(productID int64) {
	if i := c.index(productID); i >= 0 {
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
	}
}

// Line returns the line for productID.
func (c *Cart) Line(productID int64) (CartLine, bool) {
	if i := c.index(productID); i >= 0 {
		return c.lines[i], true
	}
	return CartLine{}, false
}

// Lines returns a copy of the lines in insertion order.
func (c *Cart) Lines() []CartLine {
	if len(c.lines) == 0 {
		return nil
	}
	return append([]CartLine(nil), c.lines...)
}

// Len is the number of distinct products.
func (c *Cart) Len() int { return len(c.lines) }

// Total is the sum of line quantities.
func (c *Cart) Total() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// Items converts the cart to a batch sale request.
func (c *Cart) Items() []domain.SaleItem {
	items := make([]domain.SaleItem, 0, len(c.lines))
	for _, l := range c.lines {
		items = append(items, domain.SaleItem{ProductID: l.Product.ID, Quantity: l.Quantity})
	}
	return items
}

// Reset empties the cart.
func (c *Cart) Reset() { c.lines = nil }
