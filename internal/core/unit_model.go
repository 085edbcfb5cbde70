package core

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UnitType is the measurement category of a unit. Conversions are only
// defined within one category; MASS and VOLUME never compare.
type UnitType string

const (
	UnitMass   UnitType = "MASS"
	UnitVolume UnitType = "VOLUME"
)

// Unit is immutable reference data. FactorToBase is resolved from the
// unit_conversions table at read time; base units carry factor 1.
type Unit struct {
	ID           uuid.UUID
	Name         string
	Abbreviation string
	Type         UnitType
	FactorToBase decimal.Decimal
	IsBase       bool
}

// UnitCatalog resolves measurement units with their factor to the canonical
// base unit of their category (grams for MASS, milliliters for VOLUME).
type UnitCatalog interface {
	// ResolveUnit returns the unit with FactorToBase resolved, or a
	// NotFound error.
	ResolveUnit(ctx context.Context, unitID uuid.UUID) (*Unit, error)

	// ListUnits returns all units with resolved factors, ordered by name.
	ListUnits(ctx context.Context) ([]Unit, error)
}
