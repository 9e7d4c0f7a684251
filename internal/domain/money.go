package domain

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// Money holds an amount in minor currency units.
type Money struct {
	Amount   int64
	Currency currency.Unit
}

func NewMoney(amount int64, cur currency.Unit) Money {
	return Money{Amount: amount, Currency: cur}
}

func (m Money) scale() int32 {
	scale, _ := currency.Standard.Rounding(m.Currency)
	return int32(scale)
}

// Decimal returns the amount in major units, e.g. 2500 EUR cents -> 25.00.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Amount, -m.scale())
}

func (m Money) String() string {
	return m.Decimal().StringFixed(m.scale()) + " " + m.Currency.String()
}
