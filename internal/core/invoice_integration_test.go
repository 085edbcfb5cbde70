package core_test

import (
	"context"
	"sync"
	"testing"

	"beet-backend/internal/core"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

func supplierOf(t *testing.T, ctx context.Context, pool *pgxpool.Pool, supplierItemID uuid.UUID) uuid.UUID {
	t.Helper()
	var supplierID uuid.UUID
	if err := pool.QueryRow(ctx,
		"SELECT supplier_id FROM supplier_items WHERE id = $1", supplierItemID,
	).Scan(&supplierID); err != nil {
		t.Fatalf("read supplier id: %v", err)
	}
	return supplierID
}

func newInvoiceService(pool *pgxpool.Pool) core.InvoiceService {
	return core.NewInvoiceService(pool, core.NewInventoryService(pool, testLogger()), testLogger())
}

func TestInvoice_RegisterComputesTotalsAndAppliesEffects(t *testing.T) {
	pool, units, ctx := setupEngineTestDB(t)
	inventory := core.NewInventoryService(pool, testLogger())
	invoices := newInvoiceService(pool)
	ownerID, restaurantID, actorID := uuid.New(), uuid.New(), uuid.New()

	ing, itemID := seedIngredient(t, ctx, pool, units, "Rice", ownerID)
	supplierID := supplierOf(t, ctx, pool, itemID)

	if _, err := inventory.Activate(ctx, ing.ID, restaurantID,
		decimal.NewFromInt(100), decimal.Zero, actorID); err != nil {
		t.Fatalf("Activate failed: %v", err)
	}

	// Two 25 kg sacks at 50000 each, 19% tax.
	inv, err := invoices.RegisterInvoice(ctx, core.InvoiceInput{
		SupplierID:            supplierID,
		SupplierInvoiceNumber: "FV-001",
		Items: []core.InvoiceItemInput{{
			SupplierItemID:       itemID,
			QuantityPurchased:    decimal.NewFromInt(2),
			UnitPricePurchased:   decimal.NewFromInt(50000),
			TaxPercentage:        decimal.NewFromInt(19),
			ConversionFactorUsed: decimal.NewFromInt(25000),
		}},
	}, ownerID, restaurantID, actorID)
	if err != nil {
		t.Fatalf("RegisterInvoice failed: %v", err)
	}

	if !inv.Subtotal.Equal(decimal.NewFromInt(100000)) {
		t.Errorf("expected subtotal 100000, got %s", inv.Subtotal)
	}
	if !inv.TotalTax.Equal(decimal.NewFromInt(19000)) {
		t.Errorf("expected total tax 19000, got %s", inv.TotalTax)
	}
	if !inv.TotalAmount.Equal(decimal.NewFromInt(119000)) {
		t.Errorf("expected total 119000, got %s", inv.TotalAmount)
	}
	if inv.Status != core.InvoiceCompleted {
		t.Errorf("expected status COMPLETED, got %s", inv.Status)
	}

	// Last-transaction-price: 50000 / 25000 overwrites the 1.800000 basis.
	var costBase decimal.Decimal
	if err := pool.QueryRow(ctx,
		"SELECT last_cost_base FROM supplier_items WHERE id = $1", itemID,
	).Scan(&costBase); err != nil {
		t.Fatalf("read cost base: %v", err)
	}
	if costBase.StringFixed(6) != "2.000000" {
		t.Errorf("expected cost base 2.000000, got %s", costBase.StringFixed(6))
	}

	// Stock rose by 2 × 25000 base units.
	stock, err := inventory.GetStock(ctx, restaurantID, ing.ID)
	if err != nil {
		t.Fatalf("GetStock failed: %v", err)
	}
	if !stock.CurrentStock.Equal(decimal.NewFromInt(50100)) {
		t.Errorf("expected stock 50100, got %s", stock.CurrentStock)
	}

	entries, _, err := inventory.ListTransactions(ctx, stock.ID, 0, 10)
	if err != nil {
		t.Fatalf("ListTransactions failed: %v", err)
	}
	latest := entries[0]
	if latest.Reason != core.ReasonPurchase {
		t.Errorf("expected PURCHASE ledger entry, got %s", latest.Reason)
	}
	if latest.InvoiceID == nil || *latest.InvoiceID != inv.ID {
		t.Error("PURCHASE entry must reference the invoice")
	}
	if !latest.PreviousStock.Equal(decimal.NewFromInt(100)) || !latest.ResultingStock.Equal(decimal.NewFromInt(50100)) {
		t.Errorf("expected entry 100 -> 50100, got %s -> %s", latest.PreviousStock, latest.ResultingStock)
	}
}

func TestInvoice_PurchaseAutoActivatesStock(t *testing.T) {
	pool, units, ctx := setupEngineTestDB(t)
	inventory := core.NewInventoryService(pool, testLogger())
	invoices := newInvoiceService(pool)
	ownerID, restaurantID, actorID := uuid.New(), uuid.New(), uuid.New()

	ing, itemID := seedIngredient(t, ctx, pool, units, "Rice", ownerID)
	supplierID := supplierOf(t, ctx, pool, itemID)

	// No prior activation in this restaurant.
	_, err := invoices.RegisterInvoice(ctx, core.InvoiceInput{
		SupplierID: supplierID,
		Items: []core.InvoiceItemInput{{
			SupplierItemID:       itemID,
			QuantityPurchased:    decimal.NewFromInt(2),
			UnitPricePurchased:   decimal.NewFromInt(45000),
			TaxPercentage:        decimal.NewFromInt(19),
			ConversionFactorUsed: decimal.NewFromInt(25000),
		}},
	}, ownerID, restaurantID, actorID)
	if err != nil {
		t.Fatalf("RegisterInvoice failed: %v", err)
	}

	stock, err := inventory.GetStock(ctx, restaurantID, ing.ID)
	if err != nil {
		t.Fatalf("expected the purchase to activate the stock row: %v", err)
	}
	if !stock.CurrentStock.Equal(decimal.NewFromInt(50000)) {
		t.Errorf("expected stock 50000, got %s", stock.CurrentStock)
	}

	// An implicit activation has no INITIAL entry, only the PURCHASE.
	entries, total, err := inventory.ListTransactions(ctx, stock.ID, 0, 10)
	if err != nil {
		t.Fatalf("ListTransactions failed: %v", err)
	}
	if total != 1 || entries[0].Reason != core.ReasonPurchase {
		t.Errorf("expected a single PURCHASE entry, got %d entries", total)
	}
	if !entries[0].PreviousStock.IsZero() {
		t.Errorf("expected the purchase to start from zero, got %s", entries[0].PreviousStock)
	}
}

func TestInvoice_FailedItemRollsBackEverything(t *testing.T) {
	pool, units, ctx := setupEngineTestDB(t)
	inventory := core.NewInventoryService(pool, testLogger())
	invoices := newInvoiceService(pool)
	ownerID, restaurantID, actorID := uuid.New(), uuid.New(), uuid.New()

	ing, itemID := seedIngredient(t, ctx, pool, units, "Rice", ownerID)
	supplierID := supplierOf(t, ctx, pool, itemID)

	if _, err := inventory.Activate(ctx, ing.ID, restaurantID,
		decimal.NewFromInt(100), decimal.Zero, actorID); err != nil {
		t.Fatalf("Activate failed: %v", err)
	}

	good := core.InvoiceItemInput{
		SupplierItemID:       itemID,
		QuantityPurchased:    decimal.NewFromInt(1),
		UnitPricePurchased:   decimal.NewFromInt(45000),
		TaxPercentage:        decimal.NewFromInt(19),
		ConversionFactorUsed: decimal.NewFromInt(25000),
	}
	bad := good
	bad.SupplierItemID = uuid.New()

	_, err := invoices.RegisterInvoice(ctx, core.InvoiceInput{
		SupplierID: supplierID,
		Items:      []core.InvoiceItemInput{good, bad},
	}, ownerID, restaurantID, actorID)
	if !core.IsKind(err, core.KindNotFound) {
		t.Fatalf("expected NotFound for the unknown supplier item, got %v", err)
	}

	// The first item must not have been applied.
	var invoiceCount int
	if err := pool.QueryRow(ctx, "SELECT count(*) FROM invoices").Scan(&invoiceCount); err != nil {
		t.Fatalf("count invoices: %v", err)
	}
	if invoiceCount != 0 {
		t.Errorf("expected no persisted invoices, found %d", invoiceCount)
	}

	stock, err := inventory.GetStock(ctx, restaurantID, ing.ID)
	if err != nil {
		t.Fatalf("GetStock failed: %v", err)
	}
	if !stock.CurrentStock.Equal(decimal.NewFromInt(100)) {
		t.Errorf("stock must be untouched at 100, got %s", stock.CurrentStock)
	}
	_, total, err := inventory.ListTransactions(ctx, stock.ID, 0, 10)
	if err != nil {
		t.Fatalf("ListTransactions failed: %v", err)
	}
	if total != 1 {
		t.Errorf("expected only the INITIAL entry, got %d", total)
	}

	var costBase decimal.Decimal
	if err := pool.QueryRow(ctx,
		"SELECT last_cost_base FROM supplier_items WHERE id = $1", itemID,
	).Scan(&costBase); err != nil {
		t.Fatalf("read cost base: %v", err)
	}
	if costBase.StringFixed(6) != "1.800000" {
		t.Errorf("cost basis must be untouched at 1.800000, got %s", costBase.StringFixed(6))
	}
}

func TestInvoice_GetAndList(t *testing.T) {
	pool, units, ctx := setupEngineTestDB(t)
	invoices := newInvoiceService(pool)
	ownerID, restaurantID, actorID := uuid.New(), uuid.New(), uuid.New()

	_, itemID := seedIngredient(t, ctx, pool, units, "Rice", ownerID)
	supplierID := supplierOf(t, ctx, pool, itemID)

	inv, err := invoices.RegisterInvoice(ctx, core.InvoiceInput{
		SupplierID:            supplierID,
		SupplierInvoiceNumber: "FV-042",
		Notes:                 "weekly delivery",
		Items: []core.InvoiceItemInput{{
			SupplierItemID:       itemID,
			QuantityPurchased:    decimal.NewFromInt(1),
			UnitPricePurchased:   decimal.NewFromInt(45000),
			TaxPercentage:        decimal.NewFromInt(19),
			ConversionFactorUsed: decimal.NewFromInt(25000),
		}},
	}, ownerID, restaurantID, actorID)
	if err != nil {
		t.Fatalf("RegisterInvoice failed: %v", err)
	}

	got, err := invoices.GetInvoice(ctx, inv.ID, restaurantID)
	if err != nil {
		t.Fatalf("GetInvoice failed: %v", err)
	}
	if len(got.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(got.Items))
	}
	if got.SupplierInvoiceNumber == nil || *got.SupplierInvoiceNumber != "FV-042" {
		t.Error("expected supplier invoice number FV-042")
	}
	if !got.Items[0].ConversionFactorUsed.Equal(decimal.NewFromInt(25000)) {
		t.Errorf("expected factor snapshot 25000, got %s", got.Items[0].ConversionFactorUsed)
	}

	// Invoices are scoped per restaurant.
	if _, err := invoices.GetInvoice(ctx, inv.ID, uuid.New()); !core.IsKind(err, core.KindNotFound) {
		t.Errorf("expected NotFound for a foreign restaurant, got %v", err)
	}

	list, total, err := invoices.ListInvoices(ctx, restaurantID, 0, 10, "")
	if err != nil {
		t.Fatalf("ListInvoices failed: %v", err)
	}
	if total != 1 || len(list) != 1 {
		t.Fatalf("expected 1 invoice, got %d", total)
	}
	if list[0].SupplierName != "Molinos del Sur" {
		t.Errorf("expected supplier name to be joined in, got %q", list[0].SupplierName)
	}

	if _, total, err = invoices.ListInvoices(ctx, restaurantID, 0, 10, "molinos"); err != nil || total != 1 {
		t.Errorf("expected supplier name search to match, got total=%d err=%v", total, err)
	}
	if _, total, err = invoices.ListInvoices(ctx, restaurantID, 0, 10, "FV-042"); err != nil || total != 1 {
		t.Errorf("expected invoice number search to match, got total=%d err=%v", total, err)
	}
	if _, total, err = invoices.ListInvoices(ctx, restaurantID, 0, 10, "nonexistent"); err != nil || total != 0 {
		t.Errorf("expected no matches, got total=%d err=%v", total, err)
	}
}

func TestInvoice_ValidationRejected(t *testing.T) {
	pool, units, ctx := setupEngineTestDB(t)
	invoices := newInvoiceService(pool)
	ownerID, restaurantID, actorID := uuid.New(), uuid.New(), uuid.New()

	_, itemID := seedIngredient(t, ctx, pool, units, "Rice", ownerID)
	supplierID := supplierOf(t, ctx, pool, itemID)

	base := core.InvoiceItemInput{
		SupplierItemID:       itemID,
		QuantityPurchased:    decimal.NewFromInt(1),
		UnitPricePurchased:   decimal.NewFromInt(45000),
		TaxPercentage:        decimal.NewFromInt(19),
		ConversionFactorUsed: decimal.NewFromInt(25000),
	}

	register := func(items ...core.InvoiceItemInput) error {
		_, err := invoices.RegisterInvoice(ctx, core.InvoiceInput{
			SupplierID: supplierID,
			Items:      items,
		}, ownerID, restaurantID, actorID)
		return err
	}

	if err := register(); !core.IsKind(err, core.KindInvalidArgument) {
		t.Errorf("expected InvalidArgument for empty items, got %v", err)
	}

	item := base
	item.QuantityPurchased = decimal.Zero
	if err := register(item); !core.IsKind(err, core.KindInvalidArgument) {
		t.Errorf("expected InvalidArgument for zero quantity, got %v", err)
	}

	item = base
	item.UnitPricePurchased = decimal.NewFromInt(-1)
	if err := register(item); !core.IsKind(err, core.KindInvalidArgument) {
		t.Errorf("expected InvalidArgument for negative price, got %v", err)
	}

	item = base
	item.ConversionFactorUsed = decimal.Zero
	if err := register(item); !core.IsKind(err, core.KindInvalidArgument) {
		t.Errorf("expected InvalidArgument for zero factor, got %v", err)
	}
}

// Two invoices land concurrently on the same stock row; row locking must
// serialize them so both deltas survive.
func TestInvoice_ConcurrentPurchases(t *testing.T) {
	pool, units, ctx := setupEngineTestDB(t)
	inventory := core.NewInventoryService(pool, testLogger())
	invoices := newInvoiceService(pool)
	ownerID, restaurantID, actorID := uuid.New(), uuid.New(), uuid.New()

	ing, itemID := seedIngredient(t, ctx, pool, units, "Rice", ownerID)
	supplierID := supplierOf(t, ctx, pool, itemID)

	if _, err := inventory.Activate(ctx, ing.ID, restaurantID,
		decimal.NewFromInt(1000), decimal.Zero, actorID); err != nil {
		t.Fatalf("Activate failed: %v", err)
	}

	register := func(qty int64) error {
		_, err := invoices.RegisterInvoice(ctx, core.InvoiceInput{
			SupplierID: supplierID,
			Items: []core.InvoiceItemInput{{
				SupplierItemID:       itemID,
				QuantityPurchased:    decimal.NewFromInt(qty),
				UnitPricePurchased:   decimal.NewFromInt(45000),
				TaxPercentage:        decimal.NewFromInt(19),
				ConversionFactorUsed: decimal.NewFromInt(25000),
			}},
		}, ownerID, restaurantID, actorID)
		return err
	}

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for _, qty := range []int64{1, 2} {
		wg.Add(1)
		go func(qty int64) {
			defer wg.Done()
			errs <- register(qty)
		}(qty)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent RegisterInvoice failed: %v", err)
		}
	}

	// 1000 + 1×25000 + 2×25000 = 76000, regardless of commit order.
	stock, err := inventory.GetStock(ctx, restaurantID, ing.ID)
	if err != nil {
		t.Fatalf("GetStock failed: %v", err)
	}
	if !stock.CurrentStock.Equal(decimal.NewFromInt(76000)) {
		t.Errorf("expected stock 76000, got %s", stock.CurrentStock)
	}

	entries, _, err := inventory.ListTransactions(ctx, stock.ID, 0, 10)
	if err != nil {
		t.Fatalf("ListTransactions failed: %v", err)
	}
	for _, e := range entries {
		if !e.ResultingStock.Equal(e.PreviousStock.Add(e.Delta)) {
			t.Errorf("entry %s violates resulting = previous + delta", e.ID)
		}
	}
}
