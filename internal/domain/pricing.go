package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

func HasChanged(item LineItem) bool {
	return item.PriceAtAdd != item.SKU.Price
}

// Difference is the signed delta current price minus snapshot.
func Difference(item LineItem) int64 {
	return item.SKU.Price - item.PriceAtAdd
}

func IsIncrease(item LineItem) bool {
	return Difference(item) > 0
}

func IsDecrease(item LineItem) bool {
	return Difference(item) < 0
}

// TotalSavings sums price decreases weighted by quantity. Increases are not subtracted.
func TotalSavings(items []LineItem) int64 {
	var total int64
	for _, item := range items {
		if IsDecrease(item) {
			total += (item.PriceAtAdd - item.SKU.Price) * int64(item.Quantity)
		}
	}
	return total
}

// DiscountPercent returns the rounded discount of price against compareAt,
// or 0 when there is no discount to show.
func DiscountPercent(compareAt, price int64) int64 {
	if compareAt <= 0 || compareAt <= price {
		return 0
	}

	c := decimal.NewFromInt(compareAt)
	return decimal.NewFromInt(compareAt - price).
		Div(c).
		Mul(hundred).
		Round(0).
		IntPart()
}

type PriceChange struct {
	SKUID      uuid.UUID
	Quantity   int
	PriceAtAdd int64
	Current    int64
	Difference int64
}

func (c PriceChange) IsIncrease() bool {
	return c.Difference > 0
}

type PriceReport struct {
	Changes      []PriceChange
	TotalSavings int64
}

func (r PriceReport) HasChanges() bool {
	return len(r.Changes) > 0
}

func Reconcile(items []LineItem) PriceReport {
	var changes []PriceChange
	for _, item := range items {
		if !HasChanged(item) {
			continue
		}
		changes = append(changes, PriceChange{
			SKUID:      item.SKUID,
			Quantity:   item.Quantity,
			PriceAtAdd: item.PriceAtAdd,
			Current:    item.SKU.Price,
			Difference: Difference(item),
		})
	}

	return PriceReport{
		Changes:      changes,
		TotalSavings: TotalSavings(items),
	}
}
