package app

import (
	"time"

	"beet-backend/internal/core"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// defaultTaxPercentage is the regional VAT applied when neither the item nor
// the invoice carries an explicit percentage.
var defaultTaxPercentage = decimal.NewFromInt(19)

// SupplierRef identifies the supplier of a new ingredient: either an existing
// supplier by id, or the fields of a supplier to find or create.
type SupplierRef struct {
	ID             *uuid.UUID `json:"id,omitempty"`
	DocumentTypeID *uuid.UUID `json:"documentTypeId,omitempty"`
	DocumentNumber string     `json:"documentNumber,omitempty"`
	Name           string     `json:"name,omitempty" validate:"max=160"`
	ContactName    string     `json:"contactName,omitempty" validate:"max=120"`
	Email          string     `json:"email,omitempty" validate:"omitempty,email"`
	Phone          string     `json:"phone,omitempty" validate:"max=40"`
	Address        string     `json:"address,omitempty" validate:"max=300"`
}

// CreateIngredientRequest is the input for creating an ingredient with its
// first supplier item.
type CreateIngredientRequest struct {
	OwnerID              uuid.UUID       `json:"-"`
	ActorID              uuid.UUID       `json:"-"`
	Name                 string          `json:"name" validate:"required,max=120"`
	BaseUnitID           uuid.UUID       `json:"baseUnitId" validate:"required"`
	Supplier             SupplierRef     `json:"supplier"`
	BrandName            string          `json:"brandName,omitempty" validate:"max=120"`
	PurchaseUnitName     string          `json:"purchaseUnitName" validate:"required,max=80"`
	ConversionUnitID     uuid.UUID       `json:"conversionUnitId" validate:"required"`
	UserConversionFactor decimal.Decimal `json:"conversionFactor" validate:"required"`
	TotalPrice           decimal.Decimal `json:"totalPrice" validate:"required"`
}

// ActivateIngredientRequest starts stock tracking for an ingredient in a
// restaurant.
type ActivateIngredientRequest struct {
	RestaurantID uuid.UUID       `json:"-"`
	ActorID      uuid.UUID       `json:"-"`
	IngredientID uuid.UUID       `json:"ingredientId" validate:"required"`
	InitialStock decimal.Decimal `json:"initialStock"`
	MinStock     decimal.Decimal `json:"minStock"`
}

// AdjustStockRequest is a manual stock correction. Mode REPLACE sets the
// level to Value; mode DELTA shifts it by Value.
type AdjustStockRequest struct {
	ActorID uuid.UUID              `json:"-"`
	StockID uuid.UUID              `json:"-"`
	Mode    core.AdjustmentMode    `json:"mode" validate:"required,oneof=REPLACE DELTA"`
	Value   decimal.Decimal        `json:"value"`
	Reason  core.TransactionReason `json:"reason" validate:"required,oneof=ADJUSTMENT WASTE CORRECTION"`
	Notes   string                 `json:"notes,omitempty" validate:"max=500"`
}

// RegisterInvoiceRequest is a supplier invoice as submitted. TaxPercentage
// is the invoice-level fallback for items without their own percentage.
type RegisterInvoiceRequest struct {
	OwnerID               uuid.UUID            `json:"-"`
	RestaurantID          uuid.UUID            `json:"-"`
	ActorID               uuid.UUID            `json:"-"`
	SupplierID            uuid.UUID            `json:"supplierId" validate:"required"`
	SupplierInvoiceNumber string               `json:"supplierInvoiceNumber,omitempty" validate:"max=80"`
	EmissionDate          *time.Time           `json:"emissionDate,omitempty"`
	TaxPercentage         *decimal.Decimal     `json:"taxPercentage,omitempty"`
	Notes                 string               `json:"notes,omitempty" validate:"max=500"`
	Items                 []InvoiceItemRequest `json:"items" validate:"required,min=1,dive"`
}

// InvoiceItemRequest is one purchased line. ConversionFactor may be omitted
// to reuse the supplier item's stored factor.
type InvoiceItemRequest struct {
	SupplierItemID   uuid.UUID        `json:"supplierItemId" validate:"required"`
	Quantity         decimal.Decimal  `json:"quantity" validate:"required"`
	UnitPrice        decimal.Decimal  `json:"unitPrice"`
	TaxPercentage    *decimal.Decimal `json:"taxPercentage,omitempty"`
	ConversionFactor *decimal.Decimal `json:"conversionFactor,omitempty"`
}

// resolveTax picks the effective percentage for one item: its own value,
// then the invoice-level value, then the regional default.
func resolveTax(item *InvoiceItemRequest, invoiceLevel *decimal.Decimal) decimal.Decimal {
	if item.TaxPercentage != nil {
		return *item.TaxPercentage
	}
	if invoiceLevel != nil {
		return *invoiceLevel
	}
	return defaultTaxPercentage
}
