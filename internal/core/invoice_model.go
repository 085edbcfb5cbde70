package core

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type InvoiceStatus string

const (
	// InvoiceCompleted is the terminal state every registered invoice lands
	// in; there are no draft or pending invoices in this engine.
	InvoiceCompleted InvoiceStatus = "COMPLETED"
	InvoiceCancelled InvoiceStatus = "CANCELLED"
)

// Invoice is a supplier invoice header with its owned items. Subtotal,
// TotalTax, and TotalAmount are computed server-side from the items.
type Invoice struct {
	ID                    uuid.UUID
	OwnerID               uuid.UUID
	RestaurantID          uuid.UUID
	SupplierID            uuid.UUID
	SupplierName          string // populated by read queries only
	SupplierInvoiceNumber *string
	EmissionDate          *time.Time
	ReceivedAt            time.Time
	Subtotal              decimal.Decimal
	TotalTax              decimal.Decimal
	TotalAmount           decimal.Decimal
	Notes                 *string
	Status                InvoiceStatus
	CreatedAt             time.Time
	CreatedBy             uuid.UUID
	Items                 []InvoiceItem
}

// InvoiceItem is one purchased line. ConversionFactorUsed is a snapshot of
// the supplier item's factor at purchase time; later changes to the supplier
// item never alter a historical invoice.
type InvoiceItem struct {
	ID                   uuid.UUID
	InvoiceID            uuid.UUID
	SupplierItemID       uuid.UUID
	QuantityPurchased    decimal.Decimal
	UnitPricePurchased   decimal.Decimal
	TaxPercentage        decimal.Decimal
	Subtotal             decimal.Decimal
	TaxAmount            decimal.Decimal
	ConversionFactorUsed decimal.Decimal
}

// InvoiceInput is the raw invoice as submitted; totals are not part of it.
type InvoiceInput struct {
	SupplierID            uuid.UUID
	SupplierInvoiceNumber string
	EmissionDate          *time.Time
	Notes                 string
	Items                 []InvoiceItemInput
}

// InvoiceItemInput is one raw line. TaxPercentage must already be resolved
// (item value, invoice-level value, or the regional default).
type InvoiceItemInput struct {
	SupplierItemID       uuid.UUID
	QuantityPurchased    decimal.Decimal
	UnitPricePurchased   decimal.Decimal
	TaxPercentage        decimal.Decimal
	ConversionFactorUsed decimal.Decimal
}

// InvoiceService registers supplier invoices and applies them to cost basis
// and stock in one atomic business transaction.
type InvoiceService interface {
	// RegisterInvoice computes item and header totals, persists the invoice,
	// and for each item overwrites the supplier item's last cost base and
	// increases stock with a PURCHASE ledger entry. Everything commits or
	// nothing does; no internal retries.
	RegisterInvoice(ctx context.Context, input InvoiceInput,
		ownerID, restaurantID, actorID uuid.UUID) (*Invoice, error)

	// GetInvoice returns one invoice with its items.
	GetInvoice(ctx context.Context, invoiceID, restaurantID uuid.UUID) (*Invoice, error)

	// ListInvoices returns invoices of a restaurant, newest first, optionally
	// filtered by supplier name or invoice number. page is zero-based.
	ListInvoices(ctx context.Context, restaurantID uuid.UUID, page, size int, search string) ([]Invoice, int64, error)
}
