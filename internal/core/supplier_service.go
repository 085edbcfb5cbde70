package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type supplierService struct {
	pool *pgxpool.Pool
}

// NewSupplierService constructs a SupplierService backed by PostgreSQL.
func NewSupplierService(pool *pgxpool.Pool) SupplierService {
	return &supplierService{pool: pool}
}

const supplierColumns = `id, owner_id, document_type_id, document_number, name,
	contact_name, email, phone, address, is_active, created_at`

func scanSupplier(row pgx.Row) (*Supplier, error) {
	var s Supplier
	err := row.Scan(&s.ID, &s.OwnerID, &s.DocumentTypeID, &s.DocumentNumber,
		&s.Name, &s.ContactName, &s.Email, &s.Phone, &s.Address, &s.IsActive, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *supplierService) FindOrCreateTx(ctx context.Context, tx pgx.Tx,
	candidate SupplierCandidate, ownerID uuid.UUID) (*Supplier, error) {

	// Existing supplier: just look it up, scoped to the owner.
	if candidate.ID != nil {
		supplier, err := scanSupplier(tx.QueryRow(ctx,
			"SELECT "+supplierColumns+" FROM suppliers WHERE id = $1 AND owner_id = $2",
			*candidate.ID, ownerID))
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, NotFoundf("supplier %s not found", *candidate.ID)
		}
		if err != nil {
			return nil, fmt.Errorf("find supplier: %w", err)
		}
		return supplier, nil
	}

	// New supplier: reject a duplicate owner+document pair, then insert.
	var exists bool
	if err := tx.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM suppliers
			WHERE owner_id = $1 AND document_type_id IS NOT DISTINCT FROM $2
			  AND document_number = $3)`,
		ownerID, candidate.DocumentTypeID, candidate.DocumentNumber,
	).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check supplier document: %w", err)
	}
	if exists {
		return nil, AlreadyExistsf("supplier with document %s already exists", candidate.DocumentNumber)
	}

	toPtr := func(v string) *string {
		if v == "" {
			return nil
		}
		return &v
	}

	supplier, err := scanSupplier(tx.QueryRow(ctx, `
		INSERT INTO suppliers (owner_id, document_type_id, document_number, name,
		                       contact_name, email, phone, address, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, true)
		RETURNING `+supplierColumns,
		ownerID, candidate.DocumentTypeID, candidate.DocumentNumber, candidate.Name,
		toPtr(candidate.ContactName), toPtr(candidate.Email), toPtr(candidate.Phone),
		toPtr(candidate.Address)))
	if err != nil {
		return nil, fmt.Errorf("insert supplier: %w", err)
	}
	return supplier, nil
}

func (s *supplierService) GetSupplier(ctx context.Context, supplierID, ownerID uuid.UUID) (*Supplier, error) {
	supplier, err := scanSupplier(s.pool.QueryRow(ctx,
		"SELECT "+supplierColumns+" FROM suppliers WHERE id = $1 AND owner_id = $2",
		supplierID, ownerID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, NotFoundf("supplier %s not found", supplierID)
	}
	if err != nil {
		return nil, fmt.Errorf("get supplier: %w", err)
	}
	return supplier, nil
}

func (s *supplierService) ListSuppliers(ctx context.Context, ownerID uuid.UUID) ([]Supplier, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+supplierColumns+" FROM suppliers WHERE owner_id = $1 AND is_active = true ORDER BY name",
		ownerID)
	if err != nil {
		return nil, fmt.Errorf("query suppliers: %w", err)
	}
	defer rows.Close()

	var suppliers []Supplier
	for rows.Next() {
		sup, err := scanSupplier(rows)
		if err != nil {
			return nil, fmt.Errorf("scan supplier: %w", err)
		}
		suppliers = append(suppliers, *sup)
	}
	return suppliers, rows.Err()
}
