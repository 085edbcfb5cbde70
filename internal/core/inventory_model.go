package core

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// TransactionReason classifies a ledger entry. Matches the DB
// 'transaction_reason' enum.
//
// INITIAL, PURCHASE, and SALE are reserved for system-driven paths;
// manual adjustments may only use ADJUSTMENT, WASTE, or CORRECTION.
type TransactionReason string

const (
	ReasonInitial    TransactionReason = "INITIAL"
	ReasonAdjustment TransactionReason = "ADJUSTMENT"
	ReasonWaste      TransactionReason = "WASTE"
	ReasonCorrection TransactionReason = "CORRECTION"
	ReasonPurchase   TransactionReason = "PURCHASE"
	ReasonSale       TransactionReason = "SALE"
)

// ManualReason reports whether reason is allowed on a manual adjustment.
func ManualReason(reason TransactionReason) bool {
	switch reason {
	case ReasonAdjustment, ReasonWaste, ReasonCorrection:
		return true
	}
	return false
}

// AdjustmentMode selects how a manual adjustment value is interpreted.
type AdjustmentMode string

const (
	// ModeReplace sets the stock to the given value; delta is derived.
	ModeReplace AdjustmentMode = "REPLACE"
	// ModeDelta adds the (possibly negative) value to the stock.
	ModeDelta AdjustmentMode = "DELTA"
)

// InventoryStock is the mutable stock level of one ingredient in one
// restaurant. One row per (ingredient, restaurant) pair.
type InventoryStock struct {
	ID                 uuid.UUID
	MasterIngredientID uuid.UUID
	RestaurantID       uuid.UUID
	CurrentStock       decimal.Decimal
	MinStock           decimal.Decimal
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// InventoryTransaction is one row of the append-only audit ledger.
// Rows are created, never mutated; ResultingStock = PreviousStock + Delta
// holds for every row, and consecutive rows of one stock chain.
type InventoryTransaction struct {
	ID                uuid.UUID
	IngredientStockID uuid.UUID
	Delta             decimal.Decimal
	Reason            TransactionReason
	InvoiceID         *uuid.UUID
	PreviousStock     decimal.Decimal
	ResultingStock    decimal.Decimal
	Notes             *string
	CreatedAt         time.Time
	CreatedBy         uuid.UUID
}

// InventoryService owns stock levels and the transaction ledger.
type InventoryService interface {
	// GetStock returns the stock row for (restaurant, ingredient), or a
	// NotFound error when the ingredient was never activated there.
	GetStock(ctx context.Context, restaurantID, ingredientID uuid.UUID) (*InventoryStock, error)

	// ListStocks returns all stock rows of a restaurant.
	ListStocks(ctx context.Context, restaurantID uuid.UUID) ([]InventoryStock, error)

	// Activate creates the stock row for (ingredient, restaurant) with an
	// initial level and appends the INITIAL ledger entry. A second
	// activation of the same pair is rejected with AlreadyExists.
	Activate(ctx context.Context, ingredientID, restaurantID uuid.UUID,
		initialStock, minStock decimal.Decimal, actorID uuid.UUID) (*InventoryStock, error)

	// AdjustStock applies a manual adjustment in REPLACE or DELTA mode and
	// appends the ledger entry. Reasons reserved for system paths
	// (INITIAL, PURCHASE, SALE) are rejected with InvalidArgument.
	AdjustStock(ctx context.Context, stockID uuid.UUID, mode AdjustmentMode,
		value decimal.Decimal, reason TransactionReason, notes string,
		actorID uuid.UUID) (*InventoryTransaction, error)

	// IncreaseFromPurchaseTx increases stock by baseQuantity within the
	// caller's transaction, auto-activating a zero stock row if the
	// ingredient has never been activated in the restaurant. Used only by
	// the invoice processor; the ledger entry carries reason PURCHASE and
	// the invoice id.
	IncreaseFromPurchaseTx(ctx context.Context, tx pgx.Tx,
		ingredientID, restaurantID uuid.UUID, baseQuantity decimal.Decimal,
		invoiceID, actorID uuid.UUID) (*InventoryTransaction, error)

	// ListTransactions returns the ledger of one stock, most recent first.
	// page is zero-based.
	ListTransactions(ctx context.Context, stockID uuid.UUID, page, size int) ([]InventoryTransaction, int64, error)
}
