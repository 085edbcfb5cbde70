package app

import (
	"context"
	"errors"
	"fmt"

	"beet-backend/internal/core"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type appService struct {
	pool      *pgxpool.Pool
	units     core.UnitCatalog
	suppliers core.SupplierService
	costing   core.CostingService
	inventory core.InventoryService
	invoices  core.InvoiceService
	validate  *validator.Validate
}

// NewAppService constructs an appService that satisfies ApplicationService.
func NewAppService(
	pool *pgxpool.Pool,
	units core.UnitCatalog,
	suppliers core.SupplierService,
	costing core.CostingService,
	inventory core.InventoryService,
	invoices core.InvoiceService,
) ApplicationService {
	return &appService{
		pool:      pool,
		units:     units,
		suppliers: suppliers,
		costing:   costing,
		inventory: inventory,
		invoices:  invoices,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
	}
}

// checkRequest runs struct validation and maps failures onto the business
// error vocabulary so adapters render them uniformly.
func (s *appService) checkRequest(req any) error {
	if err := s.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			f := verrs[0]
			return core.InvalidArgumentf("field %s failed rule %q", f.Field(), f.Tag())
		}
		return core.InvalidArgumentf("invalid request: %v", err)
	}
	return nil
}

func (s *appService) ListUnits(ctx context.Context) (*UnitListResult, error) {
	units, err := s.units.ListUnits(ctx)
	if err != nil {
		return nil, err
	}
	out := &UnitListResult{Units: make([]UnitView, len(units))}
	for i, u := range units {
		out.Units[i] = UnitView{
			ID:           u.ID,
			Name:         u.Name,
			Abbreviation: u.Abbreviation,
			Type:         u.Type,
			IsBase:       u.IsBase,
			FactorToBase: u.FactorToBase,
		}
	}
	return out, nil
}

func (s *appService) CreateIngredient(ctx context.Context, req CreateIngredientRequest) (*IngredientResult, error) {
	if err := s.checkRequest(req); err != nil {
		return nil, err
	}

	ing, err := s.costing.CreateIngredient(ctx, core.CreateIngredientInput{
		Name:       req.Name,
		BaseUnitID: req.BaseUnitID,
		Supplier: core.SupplierCandidate{
			ID:             req.Supplier.ID,
			DocumentTypeID: req.Supplier.DocumentTypeID,
			DocumentNumber: req.Supplier.DocumentNumber,
			Name:           req.Supplier.Name,
			ContactName:    req.Supplier.ContactName,
			Email:          req.Supplier.Email,
			Phone:          req.Supplier.Phone,
			Address:        req.Supplier.Address,
		},
		BrandName:            req.BrandName,
		PurchaseUnitName:     req.PurchaseUnitName,
		ConversionUnitID:     req.ConversionUnitID,
		UserConversionFactor: req.UserConversionFactor,
		TotalPrice:           req.TotalPrice,
	}, req.OwnerID)
	if err != nil {
		return nil, err
	}
	return ingredientResult(ing), nil
}

func (s *appService) GetIngredient(ctx context.Context, ingredientID, ownerID uuid.UUID) (*IngredientResult, error) {
	ing, err := s.costing.GetIngredient(ctx, ingredientID, ownerID)
	if err != nil {
		return nil, err
	}
	return ingredientResult(ing), nil
}

func (s *appService) ListSuppliers(ctx context.Context, ownerID uuid.UUID) (*SupplierListResult, error) {
	suppliers, err := s.suppliers.ListSuppliers(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	out := &SupplierListResult{Suppliers: make([]SupplierView, len(suppliers))}
	for i, sp := range suppliers {
		out.Suppliers[i] = SupplierView{
			ID:             sp.ID,
			Name:           sp.Name,
			DocumentTypeID: sp.DocumentTypeID,
			DocumentNumber: sp.DocumentNumber,
			ContactName:    sp.ContactName,
			Email:          sp.Email,
			Phone:          sp.Phone,
			IsActive:       sp.IsActive,
			CreatedAt:      sp.CreatedAt,
		}
	}
	return out, nil
}

func (s *appService) GetSupplier(ctx context.Context, supplierID, ownerID uuid.UUID) (*SupplierView, error) {
	sp, err := s.suppliers.GetSupplier(ctx, supplierID, ownerID)
	if err != nil {
		return nil, err
	}
	return &SupplierView{
		ID:             sp.ID,
		Name:           sp.Name,
		DocumentTypeID: sp.DocumentTypeID,
		DocumentNumber: sp.DocumentNumber,
		ContactName:    sp.ContactName,
		Email:          sp.Email,
		Phone:          sp.Phone,
		IsActive:       sp.IsActive,
		CreatedAt:      sp.CreatedAt,
	}, nil
}

func (s *appService) ListSupplierItems(ctx context.Context, supplierID uuid.UUID) (*SupplierItemListResult, error) {
	items, err := s.costing.ListSupplierItems(ctx, supplierID)
	if err != nil {
		return nil, err
	}
	out := &SupplierItemListResult{Items: make([]SupplierItemView, len(items))}
	for i, it := range items {
		out.Items[i] = SupplierItemView{
			ID:                 it.ID,
			MasterIngredientID: it.MasterIngredientID,
			SupplierID:         it.SupplierID,
			BrandName:          it.BrandName,
			PurchaseUnitName:   it.PurchaseUnitName,
			ConversionFactor:   it.ConversionFactor,
			LastCostBase:       it.LastCostBase,
			CreatedAt:          it.CreatedAt,
		}
	}
	return out, nil
}

func (s *appService) ActivateIngredient(ctx context.Context, req ActivateIngredientRequest) (*StockResult, error) {
	if err := s.checkRequest(req); err != nil {
		return nil, err
	}
	st, err := s.inventory.Activate(ctx, req.IngredientID, req.RestaurantID,
		req.InitialStock, req.MinStock, req.ActorID)
	if err != nil {
		return nil, err
	}
	return stockResult(st), nil
}

func (s *appService) GetStock(ctx context.Context, restaurantID, ingredientID uuid.UUID) (*StockResult, error) {
	st, err := s.inventory.GetStock(ctx, restaurantID, ingredientID)
	if err != nil {
		return nil, err
	}
	return stockResult(st), nil
}

func (s *appService) ListStocks(ctx context.Context, restaurantID uuid.UUID) (*StockListResult, error) {
	stocks, err := s.inventory.ListStocks(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	out := &StockListResult{Stocks: make([]StockResult, len(stocks))}
	for i := range stocks {
		out.Stocks[i] = *stockResult(&stocks[i])
	}
	return out, nil
}

func (s *appService) AdjustStock(ctx context.Context, req AdjustStockRequest) (*TransactionResult, error) {
	if err := s.checkRequest(req); err != nil {
		return nil, err
	}
	entry, err := s.inventory.AdjustStock(ctx, req.StockID, req.Mode, req.Value,
		req.Reason, req.Notes, req.ActorID)
	if err != nil {
		return nil, err
	}
	return transactionResult(entry), nil
}

func (s *appService) ListStockTransactions(ctx context.Context, stockID uuid.UUID, page, size int) (*TransactionListResult, error) {
	if size <= 0 {
		size = 20
	}
	if page < 0 {
		page = 0
	}
	entries, total, err := s.inventory.ListTransactions(ctx, stockID, page, size)
	if err != nil {
		return nil, err
	}
	out := &TransactionListResult{Total: total, Page: page, Size: size}
	for i := range entries {
		out.Entries = append(out.Entries, *transactionResult(&entries[i]))
	}
	return out, nil
}

func (s *appService) RegisterInvoice(ctx context.Context, req RegisterInvoiceRequest) (*InvoiceResult, error) {
	if err := s.checkRequest(req); err != nil {
		return nil, err
	}

	input := core.InvoiceInput{
		SupplierID:            req.SupplierID,
		SupplierInvoiceNumber: req.SupplierInvoiceNumber,
		EmissionDate:          req.EmissionDate,
		Notes:                 req.Notes,
	}
	for i := range req.Items {
		item := &req.Items[i]
		factor, err := s.resolveConversionFactor(ctx, item)
		if err != nil {
			return nil, err
		}
		input.Items = append(input.Items, core.InvoiceItemInput{
			SupplierItemID:       item.SupplierItemID,
			QuantityPurchased:    item.Quantity,
			UnitPricePurchased:   item.UnitPrice,
			TaxPercentage:        resolveTax(item, req.TaxPercentage),
			ConversionFactorUsed: factor,
		})
	}

	inv, err := s.invoices.RegisterInvoice(ctx, input, req.OwnerID, req.RestaurantID, req.ActorID)
	if err != nil {
		return nil, err
	}
	return invoiceResult(inv), nil
}

// resolveConversionFactor uses the submitted factor when present, otherwise
// falls back to the factor stored on the supplier item.
func (s *appService) resolveConversionFactor(ctx context.Context, item *InvoiceItemRequest) (decimal.Decimal, error) {
	if item.ConversionFactor != nil {
		return *item.ConversionFactor, nil
	}
	var factor decimal.Decimal
	err := s.pool.QueryRow(ctx,
		"SELECT conversion_factor FROM supplier_items WHERE id = $1",
		item.SupplierItemID,
	).Scan(&factor)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, core.NotFoundf("supplier item %s not found", item.SupplierItemID)
		}
		return decimal.Zero, fmt.Errorf("read conversion factor: %w", err)
	}
	return factor, nil
}

func (s *appService) GetInvoice(ctx context.Context, invoiceID, restaurantID uuid.UUID) (*InvoiceResult, error) {
	inv, err := s.invoices.GetInvoice(ctx, invoiceID, restaurantID)
	if err != nil {
		return nil, err
	}
	return invoiceResult(inv), nil
}

func (s *appService) ListInvoices(ctx context.Context, restaurantID uuid.UUID, page, size int, search string) (*InvoiceListResult, error) {
	if size <= 0 {
		size = 20
	}
	if page < 0 {
		page = 0
	}
	invoices, total, err := s.invoices.ListInvoices(ctx, restaurantID, page, size, search)
	if err != nil {
		return nil, err
	}
	out := &InvoiceListResult{Total: total, Page: page, Size: size}
	for i := range invoices {
		out.Invoices = append(out.Invoices, *invoiceResult(&invoices[i]))
	}
	return out, nil
}
