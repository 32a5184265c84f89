// Package risk sizes buy orders against the cash on hand.
package risk

import "github.com/shopspring/decimal"

type Inputs struct {
	Cash   decimal.Decimal
	Equity decimal.Decimal
	Price  decimal.Decimal
	// Fraction of equity to commit, in (0, 1]. Zero means all available
	// cash.
	Fraction decimal.Decimal
}

type Result struct {
	Units  int64
	Cost   decimal.Decimal
	Budget decimal.Decimal
}

// Calculate returns the largest whole number of units whose cost fits both
// the cash and the equity fraction. Units is zero when nothing fits or the
// price is unknown.
func Calculate(in Inputs) Result {
	budget := in.Cash
	if in.Fraction.IsPositive() && in.Fraction.LessThan(decimal.NewFromInt(1)) {
		budget = decimal.Min(budget, in.Equity.Mul(in.Fraction))
	}
	if !in.Price.IsPositive() || !budget.IsPositive() {
		return Result{Budget: budget}
	}

	units := budget.Div(in.Price).Floor().IntPart()
	// Div rounds to DivisionPrecision, so step back if it overshot.
	for units > 0 && in.Price.Mul(decimal.NewFromInt(units)).GreaterThan(budget) {
		units--
	}
	return Result{
		Units:  units,
		Cost:   in.Price.Mul(decimal.NewFromInt(units)),
		Budget: budget,
	}
}

// MaxAffordable is the number of whole units cash buys at price.
func MaxAffordable(cash, price decimal.Decimal) int64 {
	return Calculate(Inputs{Cash: cash, Price: price}).Units
}
