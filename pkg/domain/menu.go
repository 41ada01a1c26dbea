package domain

import "github.com/shopspring/decimal"

type MenuItem struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// Menu is the fixed list of dishes offered by the restaurant.
var Menu = []MenuItem{
	{ID: "k1", Name: "Kebab de Pollo", Price: decimal.RequireFromString("5.50")},
	{ID: "k2", Name: "Kebab de Ternera", Price: decimal.RequireFromString("6.00")},
	{ID: "k3", Name: "Falafel", Price: decimal.RequireFromString("5.00")},
	{ID: "d1", Name: "Durum de Pollo", Price: decimal.RequireFromString("6.50")},
	{ID: "d2", Name: "Durum de Ternera", Price: decimal.RequireFromString("7.00")},
	{ID: "s1", Name: "Ensalada Kebab", Price: decimal.RequireFromString("4.50")},
	{ID: "b1", Name: "Bebida", Price: decimal.RequireFromString("1.50")},
}

func MenuItemByID(id string) (MenuItem, bool) {
	for _, item := range Menu {
		if item.ID == id {
			return item, true
		}
	}
	return MenuItem{}, false
}
