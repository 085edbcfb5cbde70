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

type costingService struct {
	pool      *pgxpool.Pool
	suppliers SupplierService
	log       *logrus.Logger
}

// NewCostingService constructs a CostingService backed by PostgreSQL.
func NewCostingService(pool *pgxpool.Pool, suppliers SupplierService, log *logrus.Logger) CostingService {
	return &costingService{pool: pool, suppliers: suppliers, log: log}
}

// CreateIngredient creates an ingredient together with its first supplier
// item in one transaction:
//
//  1. reject a duplicate name for the owner
//  2. resolve base unit and conversion unit
//  3. reject cross-category conversions (MASS vs VOLUME)
//  4. finalFactor = userConversionFactor × conversionUnit.factorToBase
//  5. costPerBaseUnit = totalPrice / finalFactor (6 decimals, half-up)
//  6. find-or-create the supplier
//  7. persist ingredient + supplier item, mark the item active
func (s *costingService) CreateIngredient(ctx context.Context,
	input CreateIngredientInput, ownerID uuid.UUID) (*MasterIngredient, error) {

	if !input.UserConversionFactor.IsPositive() {
		return nil, InvalidArgumentf("conversion factor must be positive, got %s", input.UserConversionFactor)
	}
	if !input.TotalPrice.IsPositive() {
		return nil, InvalidArgumentf("total price must be positive, got %s", input.TotalPrice)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var exists bool
	if err := tx.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM master_ingredients WHERE owner_id = $1 AND lower(name) = lower($2))",
		ownerID, input.Name,
	).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check ingredient name: %w", err)
	}
	if exists {
		return nil, AlreadyExistsf("ingredient %q already exists", input.Name)
	}

	baseUnit, err := resolveUnitTx(ctx, tx, input.BaseUnitID)
	if err != nil {
		return nil, err
	}
	conversionUnit, err := resolveUnitTx(ctx, tx, input.ConversionUnitID)
	if err != nil {
		return nil, err
	}
	if baseUnit.Type != conversionUnit.Type {
		return nil, TypeMismatchf("cannot convert %s (%s) into %s (%s)",
			conversionUnit.Name, conversionUnit.Type, baseUnit.Name, baseUnit.Type)
	}

	finalFactor := FinalFactor(input.UserConversionFactor, conversionUnit.FactorToBase)
	costPerBase := CostPerBaseUnit(input.TotalPrice, finalFactor)

	supplier, err := s.suppliers.FindOrCreateTx(ctx, tx, input.Supplier, ownerID)
	if err != nil {
		return nil, err
	}

	var ingredient MasterIngredient
	err = tx.QueryRow(ctx, `
		INSERT INTO master_ingredients (owner_id, name, base_unit_id)
		VALUES ($1, $2, $3)
		RETURNING id, owner_id, name, base_unit_id, active_supplier_item_id, created_at`,
		ownerID, input.Name, input.BaseUnitID,
	).Scan(&ingredient.ID, &ingredient.OwnerID, &ingredient.Name,
		&ingredient.BaseUnitID, &ingredient.ActiveSupplierItemID, &ingredient.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert ingredient: %w", err)
	}

	var brand *string
	if input.BrandName != "" {
		brand = &input.BrandName
	}

	var itemID uuid.UUID
	err = tx.QueryRow(ctx, `
		INSERT INTO supplier_items (master_ingredient_id, supplier_id, brand_name,
		                            purchase_unit_name, conversion_factor, last_cost_base)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		ingredient.ID, supplier.ID, brand, input.PurchaseUnitName, finalFactor, costPerBase,
	).Scan(&itemID)
	if err != nil {
		return nil, fmt.Errorf("insert supplier item: %w", err)
	}

	// The first supplier item becomes the trusted cost source.
	if _, err := tx.Exec(ctx,
		"UPDATE master_ingredients SET active_supplier_item_id = $1 WHERE id = $2",
		itemID, ingredient.ID,
	); err != nil {
		return nil, fmt.Errorf("set active supplier item: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit ingredient creation: %w", err)
	}

	ingredient.ActiveSupplierItemID = &itemID
	s.log.WithFields(logrus.Fields{
		"ingredient": ingredient.ID,
		"owner":      ownerID,
		"factor":     finalFactor.String(),
		"cost_base":  costPerBase.String(),
	}).Info("ingredient created with first supplier item")

	return &ingredient, nil
}

func (s *costingService) GetIngredient(ctx context.Context, ingredientID, ownerID uuid.UUID) (*MasterIngredient, error) {
	var ing MasterIngredient
	err := s.pool.QueryRow(ctx, `
		SELECT id, owner_id, name, base_unit_id, active_supplier_item_id, created_at
		  FROM master_ingredients WHERE id = $1 AND owner_id = $2`,
		ingredientID, ownerID,
	).Scan(&ing.ID, &ing.OwnerID, &ing.Name, &ing.BaseUnitID, &ing.ActiveSupplierItemID, &ing.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, NotFoundf("ingredient %s not found", ingredientID)
		}
		return nil, fmt.Errorf("get ingredient: %w", err)
	}
	return &ing, nil
}

func (s *costingService) ListSupplierItems(ctx context.Context, supplierID uuid.UUID) ([]SupplierItem, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, master_ingredient_id, supplier_id, brand_name, purchase_unit_name,
		       conversion_factor, last_cost_base, created_at
		  FROM supplier_items WHERE supplier_id = $1 ORDER BY created_at`,
		supplierID)
	if err != nil {
		return nil, fmt.Errorf("query supplier items: %w", err)
	}
	defer rows.Close()

	var items []SupplierItem
	for rows.Next() {
		var it SupplierItem
		if err := rows.Scan(&it.ID, &it.MasterIngredientID, &it.SupplierID, &it.BrandName,
			&it.PurchaseUnitName, &it.ConversionFactor, &it.LastCostBase, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan supplier item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
