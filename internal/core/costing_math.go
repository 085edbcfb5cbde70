package core

import (
	"github.com/shopspring/decimal"
)

// Money/quantity scale conventions: quantities and invoice amounts round
// half-up to 4 decimals, cost per base unit to 6.
const (
	quantityScale = 4
	costScale     = 6
)

var hundred = decimal.NewFromInt(100)

// FinalFactor converts a user-entered purchase size into base units:
// userFactor purchase-unit contents expressed in conversionUnit, times the
// conversion unit's own factor to base. E.g. a 25 kg sack with kg→g factor
// 1000 yields 25000 g per sack.
func FinalFactor(userFactor, unitFactorToBase decimal.Decimal) decimal.Decimal {
	return userFactor.Mul(unitFactorToBase)
}

// CostPerBaseUnit spreads the price of one purchase unit over the base
// units it contains, rounded half-up to 6 decimals.
func CostPerBaseUnit(totalPrice, finalFactor decimal.Decimal) decimal.Decimal {
	return totalPrice.DivRound(finalFactor, costScale)
}

// ItemSubtotal is quantity × unit price, rounded half-up to 4 decimals.
func ItemSubtotal(quantity, unitPrice decimal.Decimal) decimal.Decimal {
	return quantity.Mul(unitPrice).Round(quantityScale)
}

// ItemTax is subtotal × taxPercentage / 100, rounded half-up to 4 decimals.
func ItemTax(subtotal, taxPercentage decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(taxPercentage).DivRound(hundred, quantityScale)
}

// BaseQuantity converts a purchased quantity into base units using the
// invoice line's conversion factor snapshot.
func BaseQuantity(quantity, conversionFactor decimal.Decimal) decimal.Decimal {
	return quantity.Mul(conversionFactor).Round(quantityScale)
}
