package models

import "github.com/shopspring/decimal"

// moneyLimit is the first value a numeric(12,2) column cannot hold.
var moneyLimit = decimal.New(1, 10)

// FitsMoneyColumn reports whether d, rounded to cents, fits a numeric(12,2) column.
func FitsMoneyColumn(d decimal.Decimal) bool {
	return d.Round(2).Abs().LessThan(moneyLimit)
}

// All lists every persisted model, in dependency order, for sqlite auto-migration.
func All() []any {
	return []any{
		&User{},
		&Product{},
		&Cart{},
		&CartItem{},
		&WishlistItem{},
		&Order{},
		&OrderItem{},
		&StoreContent{},
		&OutboxEvent{},
	}
}
