package core

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MasterIngredient is the per-owner catalog entry for an ingredient. Name is
// unique per owner. ActiveSupplierItemID points at the supplier item whose
// last purchase defines the current cost basis; it is the only field that
// changes after creation.
type MasterIngredient struct {
	ID                   uuid.UUID
	OwnerID              uuid.UUID
	Name                 string
	BaseUnitID           uuid.UUID
	ActiveSupplierItemID *uuid.UUID
	CreatedAt            time.Time
}

// SupplierItem is one purchasable presentation of an ingredient from one
// supplier. ConversionFactor (purchase unit -> base units) is computed at
// creation and immutable; LastCostBase is overwritten by every purchase.
type SupplierItem struct {
	ID                 uuid.UUID
	MasterIngredientID uuid.UUID
	SupplierID         uuid.UUID
	BrandName          *string
	PurchaseUnitName   string
	ConversionFactor   decimal.Decimal
	LastCostBase       decimal.Decimal
	CreatedAt          time.Time
}

// CreateIngredientInput carries everything needed to create an ingredient
// together with its first supplier item.
type CreateIngredientInput struct {
	Name             string
	BaseUnitID       uuid.UUID
	Supplier         SupplierCandidate
	BrandName        string
	PurchaseUnitName string
	// ConversionUnitID is the unit the user expressed the purchase size in
	// (e.g. "kg" when a sack holds 25 kg).
	ConversionUnitID uuid.UUID
	// UserConversionFactor is how many conversion units one purchase unit
	// holds (e.g. 25 for a 25 kg sack). Must be > 0.
	UserConversionFactor decimal.Decimal
	// TotalPrice is the price paid for one purchase unit. Must be > 0.
	TotalPrice decimal.Decimal
}

// CostingService creates ingredients and maintains the purchase-unit ->
// base-unit conversion math behind the cost basis.
type CostingService interface {
	// CreateIngredient creates the master ingredient, its first supplier
	// item (resolving or creating the supplier), computes the conversion
	// factor and cost per base unit, and marks the item active. All steps
	// run in one transaction.
	CreateIngredient(ctx context.Context, input CreateIngredientInput, ownerID uuid.UUID) (*MasterIngredient, error)

	// GetIngredient returns an ingredient by id, scoped to the owner.
	GetIngredient(ctx context.Context, ingredientID, ownerID uuid.UUID) (*MasterIngredient, error)

	// ListSupplierItems returns all supplier items offered by one supplier,
	// ordered by creation time.
	ListSupplierItems(ctx context.Context, supplierID uuid.UUID) ([]SupplierItem, error)
}
