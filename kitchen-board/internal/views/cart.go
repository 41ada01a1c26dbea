package views

import (
	"slices"

	"kebab-orders/pkg/domain"
	"kebab-orders/pkg/lifecycle"
)

// Cart collects menu items for a new order. The zero value is empty.
type Cart struct {
	lines []domain.Item
}

// Add puts one more unit of a menu item in the cart.
func (c *Cart) Add(menuID string) error {
	item, ok := domain.MenuItemByID(menuID)
	if !ok {
		return domain.NewValidationError("unknown menu item %q", menuID)
	}

	if idx := c.index(menuID); idx >= 0 {
		c.lines[idx].Quantity++
		return nil
	}
	c.lines = append(c.lines, domain.Item{ID: item.ID, Name: item.Name, Quantity: 1, Price: item.Price})
	return nil
}

// RemoveOne takes one unit away and drops the line when it reaches zero.
func (c *Cart) RemoveOne(menuID string) {
	idx := c.index(menuID)
	if idx < 0 {
		return
	}
	c.lines[idx].Quantity--
	if c.lines[idx].Quantity <= 0 {
		c.lines = slices.Delete(c.lines, idx, idx+1)
	}
}

func (c *Cart) DeleteLine(menuID string) {
	if idx := c.index(menuID); idx >= 0 {
		c.lines = slices.Delete(c.lines, idx, idx+1)
	}
}

func (c *Cart) Lines() []domain.Item {
	return slices.Clone(c.lines)
}

func (c *Cart) Total() string {
	return lifecycle.ComputeTotal(c.lines)
}

func (c *Cart) Empty() bool {
	return len(c.lines) == 0
}

func (c *Cart) Reset() {
	c.lines = nil
}

// Clone returns an independent copy of the cart.
func (c *Cart) Clone() Cart {
	return Cart{lines: c.Lines()}
}

func (c *Cart) index(menuID string) int {
	return slices.IndexFunc(c.lines, func(item domain.Item) bool { return item.ID == menuID })
}
