package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/retail-pro/internal/domain"
	"github.com/tu-usuario/retail-pro/internal/domain/entity"
	"github.com/tu-usuario/retail-pro/internal/domain/repository"
)

var _ repository.EstablishmentRepository = (*EstablishmentRepo)(nil)

// EstablishmentRepo implementación del puerto EstablishmentRepository sobre PostgreSQL.
type EstablishmentRepo struct {
	q Querier
}

// NewEstablishmentRepository construye el adaptador de persistencia para establecimientos.
func NewEstablishmentRepository(q Querier) *EstablishmentRepo {
	return &EstablishmentRepo{q: q}
}

// Create persiste un nuevo establecimiento.
func (r *EstablishmentRepo) Create(establishment *entity.Establishment) error {
	query := `
		INSERT INTO establishments (id, code, name, address, phone, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(context.Background(), query,
		establishment.ID, establishment.Code, establishment.Name, establishment.Address,
		establishment.Phone, establishment.Status, establishment.CreatedAt, establishment.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert establishment: %w", err)
	}
	return nil
}

// GetByID obtiene un establecimiento por ID.
func (r *EstablishmentRepo) GetByID(id string) (*entity.Establishment, error) {
	query := `
		SELECT id, code, name, address, phone, status, created_at, updated_at
		FROM establishments WHERE id = $1`
	var e entity.Establishment
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&e.ID, &e.Code, &e.Name, &e.Address, &e.Phone, &e.Status, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get establishment: %w", err)
	}
	return &e, nil
}

// List lista establecimientos con paginación.
func (r *EstablishmentRepo) List(limit, offset int) ([]*entity.Establishment, error) {
	query := `
		SELECT id, code, name, address, phone, status, created_at, updated_at
		FROM establishments ORDER BY code LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list establishments: %w", err)
	}
	defer rows.Close()

	var establishments []*entity.Establishment
	for rows.Next() {
		var e entity.Establishment
		if err := rows.Scan(
			&e.ID, &e.Code, &e.Name, &e.Address, &e.Phone, &e.Status, &e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan establishment: %w", err)
		}
		establishments = append(establishments, &e)
	}
	return establishments, rows.Err()
}
