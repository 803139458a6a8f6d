package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/retail-pro/internal/domain/entity"
	"github.com/tu-usuario/retail-pro/internal/domain/repository"
)

var _ repository.MovementLedger = (*MovementLedgerRepo)(nil)

// MovementLedgerRepo implementación del kardex sobre PostgreSQL (usable con
// pool o tx). Solo inserta y consulta: el kardex no tiene update ni delete.
type MovementLedgerRepo struct {
	q Querier
}

// NewMovementLedgerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementLedgerRepository(q Querier) *MovementLedgerRepo {
	return &MovementLedgerRepo{q: q}
}

const movementColumns = `id, product_id, product_sku, product_name, kind, reason_code, quantity, quantity_before, quantity_after, note, reference_id, warehouse_id, warehouse_code, warehouse_name, establishment_id, establishment_code, establishment_name, created_by, created_at`

// Append agrega una entrada al kardex.
func (r *MovementLedgerRepo) Append(record *entity.MovementRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	query := `
		INSERT INTO movement_records (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`
	createdBy := (*string)(nil)
	if record.CreatedBy != "" {
		createdBy = &record.CreatedBy
	}
	_, err := r.q.Exec(context.Background(), query,
		record.ID, record.ProductID, record.ProductSKU, record.ProductName,
		record.Kind, record.ReasonCode, record.Quantity, record.QuantityBefore, record.QuantityAfter,
		record.Note, record.ReferenceID, record.WarehouseID, record.WarehouseCode, record.WarehouseName,
		record.EstablishmentID, record.EstablishmentCode, record.EstablishmentName,
		createdBy, record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append movement record: %w", err)
	}
	return nil
}

// GetByID obtiene una entrada del kardex por ID.
func (r *MovementLedgerRepo) GetByID(id string) (*entity.MovementRecord, error) {
	query := `SELECT ` + movementColumns + ` FROM movement_records WHERE id = $1`
	rec, err := scanMovementRecord(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return rec, nil
}

// ListByProduct lista el kardex de un producto, más reciente primero.
func (r *MovementLedgerRepo) ListByProduct(productID string, limit, offset int) ([]*entity.MovementRecord, error) {
	query := `
		SELECT ` + movementColumns + ` FROM movement_records
		WHERE product_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, productID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list movement records: %w", err)
	}
	defer rows.Close()
	return collectMovementRecords(rows)
}

// ListByReference lista los movimientos de un documento de referencia, en orden de inserción.
func (r *MovementLedgerRepo) ListByReference(referenceID string) ([]*entity.MovementRecord, error) {
	query := `
		SELECT ` + movementColumns + ` FROM movement_records
		WHERE reference_id = $1 ORDER BY created_at, id`
	rows, err := r.q.Query(context.Background(), query, referenceID)
	if err != nil {
		return nil, fmt.Errorf("list movement records by reference: %w", err)
	}
	defer rows.Close()
	return collectMovementRecords(rows)
}

func collectMovementRecords(rows pgx.Rows) ([]*entity.MovementRecord, error) {
	var records []*entity.MovementRecord
	for rows.Next() {
		rec, err := scanMovementRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func scanMovementRecord(row pgx.Row) (*entity.MovementRecord, error) {
	var rec entity.MovementRecord
	var createdBy *string
	err := row.Scan(
		&rec.ID, &rec.ProductID, &rec.ProductSKU, &rec.ProductName,
		&rec.Kind, &rec.ReasonCode, &rec.Quantity, &rec.QuantityBefore, &rec.QuantityAfter,
		&rec.Note, &rec.ReferenceID, &rec.WarehouseID, &rec.WarehouseCode, &rec.WarehouseName,
		&rec.EstablishmentID, &rec.EstablishmentCode, &rec.EstablishmentName,
		&createdBy, &rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if createdBy != nil {
		rec.CreatedBy = *createdBy
	}
	return &rec, nil
}
