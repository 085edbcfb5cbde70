package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type unitCatalog struct {
	pool *pgxpool.Pool
}

// NewUnitCatalog constructs a UnitCatalog backed by PostgreSQL.
func NewUnitCatalog(pool *pgxpool.Pool) UnitCatalog {
	return &unitCatalog{pool: pool}
}

// Base units have no unit_conversions row, so COALESCE resolves their
// factor to 1.
const unitSelect = `
	SELECT u.id, u.name, u.abbreviation, u.type, u.is_base,
	       COALESCE(uc.factor, 1) AS factor_to_base
	  FROM units u
	  LEFT JOIN unit_conversions uc ON uc.from_unit_id = u.id`

func (c *unitCatalog) ResolveUnit(ctx context.Context, unitID uuid.UUID) (*Unit, error) {
	var u Unit
	err := c.pool.QueryRow(ctx, unitSelect+" WHERE u.id = $1", unitID).
		Scan(&u.ID, &u.Name, &u.Abbreviation, &u.Type, &u.IsBase, &u.FactorToBase)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, NotFoundf("unit %s not found", unitID)
		}
		return nil, fmt.Errorf("resolve unit: %w", err)
	}
	return &u, nil
}

func (c *unitCatalog) ListUnits(ctx context.Context) ([]Unit, error) {
	rows, err := c.pool.Query(ctx, unitSelect+" ORDER BY u.name")
	if err != nil {
		return nil, fmt.Errorf("query units: %w", err)
	}
	defer rows.Close()

	var units []Unit
	for rows.Next() {
		var u Unit
		if err := rows.Scan(&u.ID, &u.Name, &u.Abbreviation, &u.Type, &u.IsBase, &u.FactorToBase); err != nil {
			return nil, fmt.Errorf("scan unit: %w", err)
		}
		units = append(units, u)
	}
	return units, rows.Err()
}

// resolveUnitTx is the transaction-scoped variant used by the costing
// service so unit reads share the creation transaction's snapshot.
func resolveUnitTx(ctx context.Context, tx pgx.Tx, unitID uuid.UUID) (*Unit, error) {
	var u Unit
	err := tx.QueryRow(ctx, unitSelect+" WHERE u.id = $1", unitID).
		Scan(&u.ID, &u.Name, &u.Abbreviation, &u.Type, &u.IsBase, &u.FactorToBase)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, NotFoundf("unit %s not found", unitID)
		}
		return nil, fmt.Errorf("resolve unit: %w", err)
	}
	return &u, nil
}
