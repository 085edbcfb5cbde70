package app

import (
	"time"

	"beet-backend/internal/core"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UnitView is the wire form of a measurement unit.
type UnitView struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	Abbreviation string          `json:"abbreviation"`
	Type         core.UnitType   `json:"type"`
	IsBase       bool            `json:"isBase"`
	FactorToBase decimal.Decimal `json:"factorToBase"`
}

// UnitListResult is returned by ListUnits.
type UnitListResult struct {
	Units []UnitView `json:"units"`
}

// SupplierView is the wire form of a supplier.
type SupplierView struct {
	ID             uuid.UUID  `json:"id"`
	Name           string     `json:"name"`
	DocumentTypeID *uuid.UUID `json:"documentTypeId,omitempty"`
	DocumentNumber string     `json:"documentNumber"`
	ContactName    *string    `json:"contactName,omitempty"`
	Email          *string    `json:"email,omitempty"`
	Phone          *string    `json:"phone,omitempty"`
	IsActive       bool       `json:"isActive"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// SupplierListResult is returned by ListSuppliers.
type SupplierListResult struct {
	Suppliers []SupplierView `json:"suppliers"`
}

// SupplierItemView is the wire form of one purchasable presentation.
type SupplierItemView struct {
	ID                 uuid.UUID       `json:"id"`
	MasterIngredientID uuid.UUID       `json:"masterIngredientId"`
	SupplierID         uuid.UUID       `json:"supplierId"`
	BrandName          *string         `json:"brandName,omitempty"`
	PurchaseUnitName   string          `json:"purchaseUnitName"`
	ConversionFactor   decimal.Decimal `json:"conversionFactor"`
	LastCostBase       decimal.Decimal `json:"lastCostBase"`
	CreatedAt          time.Time       `json:"createdAt"`
}

// SupplierItemListResult is returned by ListSupplierItems.
type SupplierItemListResult struct {
	Items []SupplierItemView `json:"items"`
}

// IngredientResult is returned by ingredient operations.
type IngredientResult struct {
	ID                   uuid.UUID  `json:"id"`
	Name                 string     `json:"name"`
	BaseUnitID           uuid.UUID  `json:"baseUnitId"`
	ActiveSupplierItemID *uuid.UUID `json:"activeSupplierItemId,omitempty"`
	CreatedAt            time.Time  `json:"createdAt"`
}

// StockResult is returned by stock reads and activation.
type StockResult struct {
	ID                 uuid.UUID       `json:"id"`
	MasterIngredientID uuid.UUID       `json:"masterIngredientId"`
	RestaurantID       uuid.UUID       `json:"restaurantId"`
	CurrentStock       decimal.Decimal `json:"currentStock"`
	MinStock           decimal.Decimal `json:"minStock"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}

// StockListResult is returned by ListStocks.
type StockListResult struct {
	Stocks []StockResult `json:"stocks"`
}

// TransactionResult is one immutable ledger entry.
type TransactionResult struct {
	ID             uuid.UUID              `json:"id"`
	StockID        uuid.UUID              `json:"stockId"`
	Delta          decimal.Decimal        `json:"delta"`
	Reason         core.TransactionReason `json:"reason"`
	InvoiceID      *uuid.UUID             `json:"invoiceId,omitempty"`
	PreviousStock  decimal.Decimal        `json:"previousStock"`
	ResultingStock decimal.Decimal        `json:"resultingStock"`
	Notes          *string                `json:"notes,omitempty"`
	CreatedAt      time.Time              `json:"createdAt"`
}

// TransactionListResult is one ledger page plus the overall count.
type TransactionListResult struct {
	Entries []TransactionResult `json:"entries"`
	Total   int64               `json:"total"`
	Page    int                 `json:"page"`
	Size    int                 `json:"size"`
}

// InvoiceItemResult is one invoice line with its computed amounts.
type InvoiceItemResult struct {
	ID                   uuid.UUID       `json:"id"`
	SupplierItemID       uuid.UUID       `json:"supplierItemId"`
	Quantity             decimal.Decimal `json:"quantity"`
	UnitPrice            decimal.Decimal `json:"unitPrice"`
	TaxPercentage        decimal.Decimal `json:"taxPercentage"`
	Subtotal             decimal.Decimal `json:"subtotal"`
	TaxAmount            decimal.Decimal `json:"taxAmount"`
	ConversionFactorUsed decimal.Decimal `json:"conversionFactorUsed"`
}

// InvoiceResult is returned by invoice operations.
type InvoiceResult struct {
	ID                    uuid.UUID           `json:"id"`
	SupplierID            uuid.UUID           `json:"supplierId"`
	SupplierName          string              `json:"supplierName,omitempty"`
	SupplierInvoiceNumber *string             `json:"supplierInvoiceNumber,omitempty"`
	EmissionDate          *time.Time          `json:"emissionDate,omitempty"`
	ReceivedAt            time.Time           `json:"receivedAt"`
	Subtotal              decimal.Decimal     `json:"subtotal"`
	TotalTax              decimal.Decimal     `json:"totalTax"`
	TotalAmount           decimal.Decimal     `json:"totalAmount"`
	Notes                 *string             `json:"notes,omitempty"`
	Status                core.InvoiceStatus  `json:"status"`
	Items                 []InvoiceItemResult `json:"items,omitempty"`
}

// InvoiceListResult is one invoice page plus the overall count.
type InvoiceListResult struct {
	Invoices []InvoiceResult `json:"invoices"`
	Total    int64           `json:"total"`
	Page     int             `json:"page"`
	Size     int             `json:"size"`
}

func ingredientResult(ing *core.MasterIngredient) *IngredientResult {
	return &IngredientResult{
		ID:                   ing.ID,
		Name:                 ing.Name,
		BaseUnitID:           ing.BaseUnitID,
		ActiveSupplierItemID: ing.ActiveSupplierItemID,
		CreatedAt:            ing.CreatedAt,
	}
}

func stockResult(st *core.InventoryStock) *StockResult {
	return &StockResult{
		ID:                 st.ID,
		MasterIngredientID: st.MasterIngredientID,
		RestaurantID:       st.RestaurantID,
		CurrentStock:       st.CurrentStock,
		MinStock:           st.MinStock,
		UpdatedAt:          st.UpdatedAt,
	}
}

func transactionResult(e *core.InventoryTransaction) *TransactionResult {
	return &TransactionResult{
		ID:             e.ID,
		StockID:        e.IngredientStockID,
		Delta:          e.Delta,
		Reason:         e.Reason,
		InvoiceID:      e.InvoiceID,
		PreviousStock:  e.PreviousStock,
		ResultingStock: e.ResultingStock,
		Notes:          e.Notes,
		CreatedAt:      e.CreatedAt,
	}
}

func invoiceResult(inv *core.Invoice) *InvoiceResult {
	out := &InvoiceResult{
		ID:                    inv.ID,
		SupplierID:            inv.SupplierID,
		SupplierName:          inv.SupplierName,
		SupplierInvoiceNumber: inv.SupplierInvoiceNumber,
		EmissionDate:          inv.EmissionDate,
		ReceivedAt:            inv.ReceivedAt,
		Subtotal:              inv.Subtotal,
		TotalTax:              inv.TotalTax,
		TotalAmount:           inv.TotalAmount,
		Notes:                 inv.Notes,
		Status:                inv.Status,
	}
	for _, it := range inv.Items {
		out.Items = append(out.Items, InvoiceItemResult{
			ID:                   it.ID,
			SupplierItemID:       it.SupplierItemID,
			Quantity:             it.QuantityPurchased,
			UnitPrice:            it.UnitPricePurchased,
			TaxPercentage:        it.TaxPercentage,
			Subtotal:             it.Subtotal,
			TaxAmount:            it.TaxAmount,
			ConversionFactorUsed: it.ConversionFactorUsed,
		})
	}
	return out
}
