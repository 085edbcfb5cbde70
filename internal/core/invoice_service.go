package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

type invoiceService struct {
	pool      *pgxpool.Pool
	inventory InventoryService
	log       *logrus.Logger
}

// NewInvoiceService constructs an InvoiceService backed by PostgreSQL.
func NewInvoiceService(pool *pgxpool.Pool, inventory InventoryService, log *logrus.Logger) InvoiceService {
	return &invoiceService{pool: pool, inventory: inventory, log: log}
}

// RegisterInvoice is one atomic business transaction:
//
//  1. compute item subtotals and tax amounts
//  2. compute header totals, status COMPLETED
//  3. insert header + items (conversion factor snapshots included)
//  4. per item: overwrite the supplier item's last cost base and increase
//     stock with a PURCHASE ledger entry
//
// Any failure rolls back everything; partial application is forbidden.
func (s *invoiceService) RegisterInvoice(ctx context.Context, input InvoiceInput,
	ownerID, restaurantID, actorID uuid.UUID) (*Invoice, error) {

	if len(input.Items) == 0 {
		return nil, InvalidArgumentf("invoice must have at least one item")
	}
	for i, item := range input.Items {
		if !item.QuantityPurchased.IsPositive() {
			return nil, InvalidArgumentf("item %d: quantity must be positive, got %s", i+1, item.QuantityPurchased)
		}
		if item.UnitPricePurchased.IsNegative() {
			return nil, InvalidArgumentf("item %d: unit price must not be negative, got %s", i+1, item.UnitPricePurchased)
		}
		if !item.ConversionFactorUsed.IsPositive() {
			return nil, InvalidArgumentf("item %d: conversion factor must be positive, got %s", i+1, item.ConversionFactorUsed)
		}
	}

	invoice := &Invoice{
		OwnerID:      ownerID,
		RestaurantID: restaurantID,
		SupplierID:   input.SupplierID,
		Notes:        optional(input.Notes),
		Status:       InvoiceCompleted,
		CreatedBy:    actorID,
	}
	if input.SupplierInvoiceNumber != "" {
		invoice.SupplierInvoiceNumber = &input.SupplierInvoiceNumber
	}
	invoice.EmissionDate = input.EmissionDate

	for _, in := range input.Items {
		subtotal := ItemSubtotal(in.QuantityPurchased, in.UnitPricePurchased)
		tax := ItemTax(subtotal, in.TaxPercentage)
		invoice.Items = append(invoice.Items, InvoiceItem{
			SupplierItemID:       in.SupplierItemID,
			QuantityPurchased:    in.QuantityPurchased,
			UnitPricePurchased:   in.UnitPricePurchased,
			TaxPercentage:        in.TaxPercentage,
			Subtotal:             subtotal,
			TaxAmount:            tax,
			ConversionFactorUsed: in.ConversionFactorUsed,
		})
		invoice.Subtotal = invoice.Subtotal.Add(subtotal)
		invoice.TotalTax = invoice.TotalTax.Add(tax)
	}
	invoice.TotalAmount = invoice.Subtotal.Add(invoice.TotalTax)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO invoices (owner_id, restaurant_id, supplier_id, supplier_invoice_number,
		                      emission_date, subtotal, total_tax, total_amount, notes, status, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, received_at, created_at`,
		ownerID, restaurantID, input.SupplierID, invoice.SupplierInvoiceNumber,
		invoice.EmissionDate, invoice.Subtotal, invoice.TotalTax, invoice.TotalAmount,
		invoice.Notes, invoice.Status, actorID,
	).Scan(&invoice.ID, &invoice.ReceivedAt, &invoice.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert invoice: %w", err)
	}

	for i := range invoice.Items {
		item := &invoice.Items[i]
		item.InvoiceID = invoice.ID
		err = tx.QueryRow(ctx, `
			INSERT INTO invoice_items (invoice_id, supplier_item_id, quantity_purchased,
			                           unit_price_purchased, tax_percentage, subtotal,
			                           tax_amount, conversion_factor_used)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id`,
			invoice.ID, item.SupplierItemID, item.QuantityPurchased, item.UnitPricePurchased,
			item.TaxPercentage, item.Subtotal, item.TaxAmount, item.ConversionFactorUsed,
		).Scan(&item.ID)
		if err != nil {
			return nil, fmt.Errorf("insert invoice item %d: %w", i+1, err)
		}

		if err := s.applyItem(ctx, tx, item, invoice.ID, restaurantID, actorID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit invoice: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"invoice":    invoice.ID,
		"restaurant": restaurantID,
		"items":      len(invoice.Items),
		"total":      invoice.TotalAmount.String(),
	}).Info("invoice registered")

	return invoice, nil
}

// applyItem drives the cost basis update and the stock increase for one
// persisted invoice item.
func (s *invoiceService) applyItem(ctx context.Context, tx pgx.Tx, item *InvoiceItem,
	invoiceID, restaurantID, actorID uuid.UUID) error {

	// Load and lock the supplier item; a missing reference aborts the whole
	// registration.
	var ingredientID uuid.UUID
	err := tx.QueryRow(ctx,
		"SELECT master_ingredient_id FROM supplier_items WHERE id = $1 FOR UPDATE",
		item.SupplierItemID,
	).Scan(&ingredientID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return NotFoundf("supplier item %s not found", item.SupplierItemID)
		}
		return fmt.Errorf("lock supplier item: %w", err)
	}

	// Last-transaction-price costing: the new purchase fully replaces the
	// cost basis, no averaging.
	newCostBase := CostPerBaseUnit(item.UnitPricePurchased, item.ConversionFactorUsed)
	if _, err := tx.Exec(ctx,
		"UPDATE supplier_items SET last_cost_base = $1 WHERE id = $2",
		newCostBase, item.SupplierItemID,
	); err != nil {
		return fmt.Errorf("update cost basis: %w", err)
	}

	baseQty := BaseQuantity(item.QuantityPurchased, item.ConversionFactorUsed)
	if _, err := s.inventory.IncreaseFromPurchaseTx(ctx, tx,
		ingredientID, restaurantID, baseQty, invoiceID, actorID); err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{
		"supplier_item": item.SupplierItemID,
		"cost_base":     newCostBase.String(),
		"base_qty":      baseQty.String(),
	}).Debug("invoice item applied")

	return nil
}

const invoiceColumns = `id, owner_id, restaurant_id, supplier_id, supplier_invoice_number,
	emission_date, received_at, subtotal, total_tax, total_amount, notes, status,
	created_at, created_by`

func (s *invoiceService) GetInvoice(ctx context.Context, invoiceID, restaurantID uuid.UUID) (*Invoice, error) {
	var inv Invoice
	err := s.pool.QueryRow(ctx,
		"SELECT "+invoiceColumns+" FROM invoices WHERE id = $1 AND restaurant_id = $2",
		invoiceID, restaurantID,
	).Scan(&inv.ID, &inv.OwnerID, &inv.RestaurantID, &inv.SupplierID, &inv.SupplierInvoiceNumber,
		&inv.EmissionDate, &inv.ReceivedAt, &inv.Subtotal, &inv.TotalTax, &inv.TotalAmount,
		&inv.Notes, &inv.Status, &inv.CreatedAt, &inv.CreatedBy)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, NotFoundf("invoice %s not found", invoiceID)
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, invoice_id, supplier_item_id, quantity_purchased, unit_price_purchased,
		       tax_percentage, subtotal, tax_amount, conversion_factor_used
		  FROM invoice_items WHERE invoice_id = $1`,
		invoiceID)
	if err != nil {
		return nil, fmt.Errorf("query invoice items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it InvoiceItem
		if err := rows.Scan(&it.ID, &it.InvoiceID, &it.SupplierItemID, &it.QuantityPurchased,
			&it.UnitPricePurchased, &it.TaxPercentage, &it.Subtotal, &it.TaxAmount,
			&it.ConversionFactorUsed); err != nil {
			return nil, fmt.Errorf("scan invoice item: %w", err)
		}
		inv.Items = append(inv.Items, it)
	}
	return &inv, rows.Err()
}

func (s *invoiceService) ListInvoices(ctx context.Context, restaurantID uuid.UUID,
	page, size int, search string) ([]Invoice, int64, error) {

	if size <= 0 {
		size = 20
	}
	if page < 0 {
		page = 0
	}
	pattern := "%" + search + "%"

	var total int64
	if err := s.pool.QueryRow(ctx, `
		SELECT count(*) FROM invoices i
		  JOIN suppliers s ON s.id = i.supplier_id
		 WHERE i.restaurant_id = $1
		   AND ($2 = '%%' OR s.name ILIKE $2 OR i.supplier_invoice_number ILIKE $2)`,
		restaurantID, pattern,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count invoices: %w", err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT i.id, i.owner_id, i.restaurant_id, i.supplier_id, s.name,
		       i.supplier_invoice_number, i.emission_date, i.received_at,
		       i.subtotal, i.total_tax, i.total_amount, i.notes, i.status,
		       i.created_at, i.created_by
		  FROM invoices i
		  JOIN suppliers s ON s.id = i.supplier_id
		 WHERE i.restaurant_id = $1
		   AND ($2 = '%%' OR s.name ILIKE $2 OR i.supplier_invoice_number ILIKE $2)
		 ORDER BY i.received_at DESC
		 LIMIT $3 OFFSET $4`,
		restaurantID, pattern, size, page*size)
	if err != nil {
		return nil, 0, fmt.Errorf("query invoices: %w", err)
	}
	defer rows.Close()

	var invoices []Invoice
	for rows.Next() {
		var inv Invoice
		if err := rows.Scan(&inv.ID, &inv.OwnerID, &inv.RestaurantID, &inv.SupplierID,
			&inv.SupplierName, &inv.SupplierInvoiceNumber, &inv.EmissionDate, &inv.ReceivedAt,
			&inv.Subtotal, &inv.TotalTax, &inv.TotalAmount, &inv.Notes, &inv.Status,
			&inv.CreatedAt, &inv.CreatedBy); err != nil {
			return nil, 0, fmt.Errorf("scan invoice: %w", err)
		}
		invoices = append(invoices, inv)
	}
	return invoices, total, rows.Err()
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
