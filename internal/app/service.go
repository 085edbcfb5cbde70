package app

import (
	"context"

	"github.com/google/uuid"
)

// ApplicationService is the single interface the web adapter calls. It
// decouples presentation from business logic: implementations validate the
// raw requests, resolve defaults, and delegate to the core services.
type ApplicationService interface {
	// ListUnits returns the full measurement unit catalog.
	ListUnits(ctx context.Context) (*UnitListResult, error)

	// CreateIngredient creates a master ingredient with its first supplier
	// item and returns the enriched view including the computed cost basis.
	CreateIngredient(ctx context.Context, req CreateIngredientRequest) (*IngredientResult, error)

	// GetIngredient returns one ingredient scoped to its owner.
	GetIngredient(ctx context.Context, ingredientID, ownerID uuid.UUID) (*IngredientResult, error)

	// ListSuppliers returns all suppliers of an owner.
	ListSuppliers(ctx context.Context, ownerID uuid.UUID) (*SupplierListResult, error)

	// GetSupplier returns one supplier scoped to its owner.
	GetSupplier(ctx context.Context, supplierID, ownerID uuid.UUID) (*SupplierView, error)

	// ListSupplierItems returns the purchasable presentations one supplier offers.
	ListSupplierItems(ctx context.Context, supplierID uuid.UUID) (*SupplierItemListResult, error)

	// ActivateIngredient starts stock tracking for an ingredient in a restaurant.
	ActivateIngredient(ctx context.Context, req ActivateIngredientRequest) (*StockResult, error)

	// GetStock returns the stock row of one ingredient in one restaurant.
	GetStock(ctx context.Context, restaurantID, ingredientID uuid.UUID) (*StockResult, error)

	// ListStocks returns every tracked stock of a restaurant.
	ListStocks(ctx context.Context, restaurantID uuid.UUID) (*StockListResult, error)

	// AdjustStock applies a manual REPLACE or DELTA adjustment and returns the
	// ledger entry it produced.
	AdjustStock(ctx context.Context, req AdjustStockRequest) (*TransactionResult, error)

	// ListStockTransactions returns a stock's ledger page, newest first.
	ListStockTransactions(ctx context.Context, stockID uuid.UUID, page, size int) (*TransactionListResult, error)

	// RegisterInvoice resolves per-item tax percentages, registers the invoice,
	// and applies its cost and stock effects atomically.
	RegisterInvoice(ctx context.Context, req RegisterInvoiceRequest) (*InvoiceResult, error)

	// GetInvoice returns one invoice with its items, scoped to a restaurant.
	GetInvoice(ctx context.Context, invoiceID, restaurantID uuid.UUID) (*InvoiceResult, error)

	// ListInvoices returns a restaurant's invoices, newest first, optionally
	// filtered by supplier name or invoice number.
	ListInvoices(ctx context.Context, restaurantID uuid.UUID, page, size int, search string) (*InvoiceListResult, error)
}
