package core

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Supplier is a purchasing counterparty, scoped to an owner (tenant).
// The (owner, document type, document number) triple is unique.
type Supplier struct {
	ID             uuid.UUID
	OwnerID        uuid.UUID
	DocumentTypeID *uuid.UUID
	DocumentNumber string
	Name           string
	ContactName    *string
	Email          *string
	Phone          *string
	Address        *string
	IsActive       bool
	CreatedAt      time.Time
}

// SupplierCandidate is the caller's description of a supplier: either an
// existing id, or the fields needed to create a new one.
type SupplierCandidate struct {
	ID             *uuid.UUID
	DocumentTypeID *uuid.UUID
	DocumentNumber string
	Name           string
	ContactName    string
	Email          string
	Phone          string
	Address        string
}

// SupplierService provides supplier master data operations.
type SupplierService interface {
	// FindOrCreateTx resolves the candidate within the caller's transaction:
	// an id must reference an existing supplier (NotFound otherwise); without
	// an id a new active supplier is created for the owner, rejecting a
	// duplicate owner+document pair (AlreadyExists).
	FindOrCreateTx(ctx context.Context, tx pgx.Tx, candidate SupplierCandidate, ownerID uuid.UUID) (*Supplier, error)

	// GetSupplier returns a supplier by id, scoped to the owner.
	GetSupplier(ctx context.Context, supplierID, ownerID uuid.UUID) (*Supplier, error)

	// ListSuppliers returns all active suppliers for an owner, ordered by name.
	ListSuppliers(ctx context.Context, ownerID uuid.UUID) ([]Supplier, error)
}
