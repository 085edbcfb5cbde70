package app

import (
	"testing"

	"beet-backend/internal/core"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func d(i int64) *decimal.Decimal {
	v := decimal.NewFromInt(i)
	return &v
}

func TestResolveTax(t *testing.T) {
	item := &InvoiceItemRequest{TaxPercentage: d(5)}
	if got := resolveTax(item, d(8)); !got.Equal(decimal.NewFromInt(5)) {
		t.Errorf("item-level percentage must win, got %s", got)
	}

	item = &InvoiceItemRequest{}
	if got := resolveTax(item, d(8)); !got.Equal(decimal.NewFromInt(8)) {
		t.Errorf("invoice-level percentage must be the fallback, got %s", got)
	}

	if got := resolveTax(item, nil); !got.Equal(decimal.NewFromInt(19)) {
		t.Errorf("regional default must apply last, got %s", got)
	}

	// An explicit zero is a valid exemption, not a missing value.
	item = &InvoiceItemRequest{TaxPercentage: d(0)}
	if got := resolveTax(item, d(8)); !got.IsZero() {
		t.Errorf("explicit zero must not fall through, got %s", got)
	}
}

func TestCheckRequest(t *testing.T) {
	s := &appService{validate: validator.New(validator.WithRequiredStructEnabled())}

	req := AdjustStockRequest{
		Mode:   core.ModeReplace,
		Value:  decimal.NewFromInt(10),
		Reason: core.ReasonCorrection,
	}
	if err := s.checkRequest(req); err != nil {
		t.Errorf("valid request rejected: %v", err)
	}

	req.Reason = core.ReasonPurchase
	err := s.checkRequest(req)
	if !core.IsKind(err, core.KindInvalidArgument) {
		t.Errorf("expected InvalidArgument for a reserved reason, got %v", err)
	}

	inv := RegisterInvoiceRequest{SupplierID: uuid.New()}
	if err := s.checkRequest(inv); !core.IsKind(err, core.KindInvalidArgument) {
		t.Errorf("expected InvalidArgument for an invoice without items, got %v", err)
	}
}
