package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type inventoryService struct {
	pool *pgxpool.Pool
	log  *logrus.Logger
}

// NewInventoryService constructs an InventoryService backed by PostgreSQL.
func NewInventoryService(pool *pgxpool.Pool, log *logrus.Logger) InventoryService {
	return &inventoryService{pool: pool, log: log}
}

const stockColumns = `id, master_ingredient_id, restaurant_id, current_stock,
	min_stock, created_at, updated_at`

func scanStock(row pgx.Row) (*InventoryStock, error) {
	var st InventoryStock
	err := row.Scan(&st.ID, &st.MasterIngredientID, &st.RestaurantID,
		&st.CurrentStock, &st.MinStock, &st.CreatedAt, &st.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *inventoryService) GetStock(ctx context.Context, restaurantID, ingredientID uuid.UUID) (*InventoryStock, error) {
	st, err := scanStock(s.pool.QueryRow(ctx,
		"SELECT "+stockColumns+" FROM ingredient_stocks WHERE restaurant_id = $1 AND master_ingredient_id = $2",
		restaurantID, ingredientID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, NotFoundf("ingredient %s has no stock in restaurant %s", ingredientID, restaurantID)
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return st, nil
}

func (s *inventoryService) ListStocks(ctx context.Context, restaurantID uuid.UUID) ([]InventoryStock, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+stockColumns+" FROM ingredient_stocks WHERE restaurant_id = $1 ORDER BY created_at",
		restaurantID)
	if err != nil {
		return nil, fmt.Errorf("query stocks: %w", err)
	}
	defer rows.Close()

	var stocks []InventoryStock
	for rows.Next() {
		st, err := scanStock(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		stocks = append(stocks, *st)
	}
	return stocks, rows.Err()
}

// Activate creates the (ingredient, restaurant) stock row and writes the
// INITIAL ledger entry, so the ledger alone replays to the current level.
func (s *inventoryService) Activate(ctx context.Context, ingredientID, restaurantID uuid.UUID,
	initialStock, minStock decimal.Decimal, actorID uuid.UUID) (*InventoryStock, error) {

	if initialStock.IsNegative() || minStock.IsNegative() {
		return nil, InvalidArgumentf("initial and minimum stock must not be negative")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var exists bool
	if err := tx.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM ingredient_stocks WHERE master_ingredient_id = $1 AND restaurant_id = $2)",
		ingredientID, restaurantID,
	).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check activation: %w", err)
	}
	if exists {
		return nil, AlreadyExistsf("ingredient %s is already activated in restaurant %s", ingredientID, restaurantID)
	}

	st, err := scanStock(tx.QueryRow(ctx, `
		INSERT INTO ingredient_stocks (master_ingredient_id, restaurant_id, current_stock, min_stock)
		VALUES ($1, $2, $3, $4)
		RETURNING `+stockColumns,
		ingredientID, restaurantID, initialStock, minStock))
	if err != nil {
		return nil, fmt.Errorf("insert stock: %w", err)
	}

	if _, err := appendTransactionTx(ctx, tx, st.ID, initialStock, ReasonInitial,
		nil, decimal.Zero, initialStock, "Initial activation", actorID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit activation: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"stock":      st.ID,
		"ingredient": ingredientID,
		"restaurant": restaurantID,
		"initial":    initialStock.String(),
	}).Info("ingredient activated")

	return st, nil
}

func (s *inventoryService) AdjustStock(ctx context.Context, stockID uuid.UUID,
	mode AdjustmentMode, value decimal.Decimal, reason TransactionReason,
	notes string, actorID uuid.UUID) (*InventoryTransaction, error) {

	if !ManualReason(reason) {
		return nil, InvalidArgumentf("reason %s is not allowed for manual adjustments", reason)
	}
	if mode != ModeReplace && mode != ModeDelta {
		return nil, InvalidArgumentf("unknown adjustment mode %q", mode)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Lock the stock row for the read-modify-write so concurrent
	// adjustments and purchases serialize on it.
	var previous decimal.Decimal
	err = tx.QueryRow(ctx,
		"SELECT current_stock FROM ingredient_stocks WHERE id = $1 FOR UPDATE",
		stockID,
	).Scan(&previous)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, NotFoundf("stock %s not found", stockID)
		}
		return nil, fmt.Errorf("lock stock: %w", err)
	}

	var delta, resulting decimal.Decimal
	switch mode {
	case ModeReplace:
		resulting = value
		delta = value.Sub(previous)
	case ModeDelta:
		delta = value
		resulting = previous.Add(value)
	}

	if _, err := tx.Exec(ctx,
		"UPDATE ingredient_stocks SET current_stock = $1, updated_at = now() WHERE id = $2",
		resulting, stockID,
	); err != nil {
		return nil, fmt.Errorf("update stock: %w", err)
	}

	entry, err := appendTransactionTx(ctx, tx, stockID, delta, reason, nil, previous, resulting, notes, actorID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit adjustment: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"stock":     stockID,
		"reason":    reason,
		"delta":     delta.String(),
		"resulting": resulting.String(),
	}).Info("stock adjusted")

	return entry, nil
}

// IncreaseFromPurchaseTx applies a purchase to stock within the caller's
// transaction. A purchase implicitly activates the ingredient in the
// restaurant: the zero row is upserted first, then locked, so concurrent
// first purchases cannot race the row into existence twice.
func (s *inventoryService) IncreaseFromPurchaseTx(ctx context.Context, tx pgx.Tx,
	ingredientID, restaurantID uuid.UUID, baseQuantity decimal.Decimal,
	invoiceID, actorID uuid.UUID) (*InventoryTransaction, error) {

	if baseQuantity.IsNegative() {
		return nil, InvalidArgumentf("purchase quantity must not be negative, got %s", baseQuantity)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO ingredient_stocks (master_ingredient_id, restaurant_id, current_stock, min_stock)
		VALUES ($1, $2, 0, 0)
		ON CONFLICT (master_ingredient_id, restaurant_id) DO NOTHING`,
		ingredientID, restaurantID,
	); err != nil {
		return nil, fmt.Errorf("auto-activate stock: %w", err)
	}

	var stockID uuid.UUID
	var previous decimal.Decimal
	err := tx.QueryRow(ctx, `
		SELECT id, current_stock FROM ingredient_stocks
		 WHERE master_ingredient_id = $1 AND restaurant_id = $2
		 FOR UPDATE`,
		ingredientID, restaurantID,
	).Scan(&stockID, &previous)
	if err != nil {
		return nil, fmt.Errorf("lock stock: %w", err)
	}

	resulting := previous.Add(baseQuantity)
	if _, err := tx.Exec(ctx,
		"UPDATE ingredient_stocks SET current_stock = $1, updated_at = now() WHERE id = $2",
		resulting, stockID,
	); err != nil {
		return nil, fmt.Errorf("update stock: %w", err)
	}

	return appendTransactionTx(ctx, tx, stockID, baseQuantity, ReasonPurchase,
		&invoiceID, previous, resulting, "Invoice purchase", actorID)
}

func (s *inventoryService) ListTransactions(ctx context.Context, stockID uuid.UUID,
	page, size int) ([]InventoryTransaction, int64, error) {

	if size <= 0 {
		size = 20
	}
	if page < 0 {
		page = 0
	}

	var total int64
	if err := s.pool.QueryRow(ctx,
		"SELECT count(*) FROM inventory_transactions WHERE ingredient_stock_id = $1",
		stockID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, ingredient_stock_id, delta, reason, invoice_id,
		       previous_stock, resulting_stock, notes, created_at, created_by
		  FROM inventory_transactions
		 WHERE ingredient_stock_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2 OFFSET $3`,
		stockID, size, page*size)
	if err != nil {
		return nil, 0, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var entries []InventoryTransaction
	for rows.Next() {
		var e InventoryTransaction
		if err := rows.Scan(&e.ID, &e.IngredientStockID, &e.Delta, &e.Reason, &e.InvoiceID,
			&e.PreviousStock, &e.ResultingStock, &e.Notes, &e.CreatedAt, &e.CreatedBy); err != nil {
			return nil, 0, fmt.Errorf("scan transaction: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, total, rows.Err()
}

// appendTransactionTx writes one immutable ledger row inside tx.
func appendTransactionTx(ctx context.Context, tx pgx.Tx, stockID uuid.UUID,
	delta decimal.Decimal, reason TransactionReason, invoiceID *uuid.UUID,
	previous, resulting decimal.Decimal, notes string, actorID uuid.UUID) (*InventoryTransaction, error) {

	var toNotes *string
	if notes != "" {
		toNotes = &notes
	}

	var e InventoryTransaction
	err := tx.QueryRow(ctx, `
		INSERT INTO inventory_transactions
		       (ingredient_stock_id, delta, reason, invoice_id,
		        previous_stock, resulting_stock, notes, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, ingredient_stock_id, delta, reason, invoice_id,
		          previous_stock, resulting_stock, notes, created_at, created_by`,
		stockID, delta, reason, invoiceID, previous, resulting, toNotes, actorID,
	).Scan(&e.ID, &e.IngredientStockID, &e.Delta, &e.Reason, &e.InvoiceID,
		&e.PreviousStock, &e.ResultingStock, &e.Notes, &e.CreatedAt, &e.CreatedBy)
	if err != nil {
		return nil, fmt.Errorf("append ledger entry: %w", err)
	}
	return &e, nil
}
