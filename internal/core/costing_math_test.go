package core_test

import (
	"testing"

	"beet-backend/internal/core"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestFinalFactor(t *testing.T) {
	tests := []struct {
		name       string
		userFactor string
		unitFactor string
		want       string
	}{
		{"25 kg sack in grams", "25", "1000", "25000"},
		{"base unit passthrough", "500", "1", "500"},
		{"5 L jug in milliliters", "5", "1000", "5000"},
		{"fractional purchase size", "0.5", "1000", "500"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := core.FinalFactor(dec(tt.userFactor), dec(tt.unitFactor))
			if !got.Equal(dec(tt.want)) {
				t.Errorf("FinalFactor(%s, %s) = %s, want %s", tt.userFactor, tt.unitFactor, got, tt.want)
			}
			if !got.IsPositive() {
				t.Errorf("final factor must be strictly positive, got %s", got)
			}
		})
	}
}

func TestCostPerBaseUnit(t *testing.T) {
	tests := []struct {
		name        string
		totalPrice  string
		finalFactor string
		want        string
	}{
		{"45000 over 25000 g", "45000", "25000", "1.8"},
		{"repeating decimal rounds half-up", "10", "3", "3.333333"},
		{"sub-unit cost", "1", "25000", "0.00004"},
		{"exact division", "1000", "500", "2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := core.CostPerBaseUnit(dec(tt.totalPrice), dec(tt.finalFactor))
			if !got.Equal(dec(tt.want)) {
				t.Errorf("CostPerBaseUnit(%s, %s) = %s, want %s", tt.totalPrice, tt.finalFactor, got, tt.want)
			}
		})
	}
}

func TestCostPerBaseUnit_SixDecimalScale(t *testing.T) {
	// 100 / 7 = 14.285714285… must land on exactly 6 decimals.
	got := core.CostPerBaseUnit(dec("100"), dec("7"))
	if got.String() != "14.285714" {
		t.Errorf("expected 14.285714, got %s", got)
	}
}

func TestItemSubtotalAndTax(t *testing.T) {
	subtotal := core.ItemSubtotal(dec("2"), dec("50000"))
	if !subtotal.Equal(dec("100000")) {
		t.Errorf("expected subtotal 100000, got %s", subtotal)
	}

	tax := core.ItemTax(subtotal, dec("19"))
	if !tax.Equal(dec("19000")) {
		t.Errorf("expected tax 19000, got %s", tax)
	}

	// Rounding to 4 decimals, half-up.
	tax = core.ItemTax(dec("0.0001"), dec("19"))
	if got := tax.String(); got != "0" {
		t.Errorf("expected 0.000019 to round to 0, got %s", got)
	}
	tax = core.ItemTax(dec("10.5263"), dec("19"))
	if got := tax.StringFixed(4); got != "2.0000" {
		t.Errorf("expected 2.0000, got %s", got)
	}
}

func TestBaseQuantity(t *testing.T) {
	got := core.BaseQuantity(dec("2"), dec("25000"))
	if !got.Equal(dec("50000")) {
		t.Errorf("expected 50000 base units, got %s", got)
	}

	got = core.BaseQuantity(dec("1.5"), dec("333.3333"))
	if got.String() != "500" {
		t.Errorf("expected 499.99995 to round to 500, got %s", got)
	}
}

func TestManualReason(t *testing.T) {
	allowed := []core.TransactionReason{core.ReasonAdjustment, core.ReasonWaste, core.ReasonCorrection}
	for _, r := range allowed {
		if !core.ManualReason(r) {
			t.Errorf("expected %s to be allowed for manual adjustments", r)
		}
	}
	reserved := []core.TransactionReason{core.ReasonInitial, core.ReasonPurchase, core.ReasonSale}
	for _, r := range reserved {
		if core.ManualReason(r) {
			t.Errorf("expected %s to be reserved for system paths", r)
		}
	}
}

func TestErrorKinds(t *testing.T) {
	err := core.TypeMismatchf("cannot convert %s into %s", "Liter", "Gram")
	if core.KindOf(err) != core.KindTypeMismatch {
		t.Errorf("expected KindTypeMismatch, got %q", core.KindOf(err))
	}
	if !core.IsKind(err, core.KindTypeMismatch) {
		t.Error("IsKind should match the error's own kind")
	}
	if core.IsKind(err, core.KindNotFound) {
		t.Error("IsKind must not match a different kind")
	}
	if core.KindOf(dummyErr{}) != "" {
		t.Error("non-business errors must have no kind")
	}
}

type dummyErr struct{}

func (dummyErr) Error() string { return "boom" }
