package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/retail-pro/internal/domain"
	"github.com/tu-usuario/retail-pro/internal/domain/entity"
	"github.com/tu-usuario/retail-pro/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
//
// El stock se guarda en tres columnas (stock_per_warehouse, stock_aggregate
// JSONB y stock_flat NUMERIC) y se normaliza a la variante etiquetada con
// entity.NormalizeStockData en el scan: los datos legados que solo traen
// agregado o cantidad plana entran al motor ya clasificados.
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Formas JSONB de las columnas de stock y unidades.
type unitFactorRow struct {
	UnitCode string          `json:"unit_code"`
	Factor   decimal.Decimal `json:"factor"`
}

type warehouseStockRow struct {
	Stock    decimal.Decimal `json:"stock"`
	Reserved decimal.Decimal `json:"reserved"`
}

const productColumns = `id, establishment_id, sku, name, description, price, minimal_unit, additional_units, stock_per_warehouse, stock_aggregate, stock_flat, created_at, updated_at`

// Create persiste un nuevo producto.
func (r *ProductRepo) Create(product *entity.Product) error {
	units, perWarehouse, aggregate, err := marshalStockColumns(product)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err = r.q.Exec(context.Background(), query,
		product.ID, product.EstablishmentID, product.SKU, product.Name, product.Description,
		product.Price, product.MinimalUnit, units, perWarehouse, aggregate, product.Stock.Flat,
		product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(id string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	return r.scanOne(r.q.QueryRow(context.Background(), query, id))
}

// GetByEstablishmentAndSKU obtiene un producto por establecimiento y SKU.
func (r *ProductRepo) GetByEstablishmentAndSKU(establishmentID, sku string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE establishment_id = $1 AND sku = $2`
	return r.scanOne(r.q.QueryRow(context.Background(), query, establishmentID, sku))
}

// Update actualiza los datos maestros de un producto. No toca las columnas de
// stock (se manejan vía UpdateStock desde el motor).
func (r *ProductRepo) Update(product *entity.Product) error {
	units, err := json.Marshal(toUnitRows(product.AdditionalUnits))
	if err != nil {
		return fmt.Errorf("marshal additional_units: %w", err)
	}
	query := `
		UPDATE products SET name = $2, description = $3, price = $4, minimal_unit = $5, additional_units = $6, updated_at = $7
		WHERE id = $1`
	_, err = r.q.Exec(context.Background(), query,
		product.ID, product.Name, product.Description, product.Price,
		product.MinimalUnit, units, product.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}

// UpdateStock persiste la instantánea de stock calculada por el motor (write-back).
func (r *ProductRepo) UpdateStock(product *entity.Product) error {
	_, perWarehouse, aggregate, err := marshalStockColumns(product)
	if err != nil {
		return err
	}
	query := `
		UPDATE products SET stock_per_warehouse = $2, stock_aggregate = $3, stock_flat = $4, updated_at = $5
		WHERE id = $1`
	cmd, err := r.q.Exec(context.Background(), query,
		product.ID, perWarehouse, aggregate, product.Stock.Flat, product.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update stock: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByEstablishment lista productos por establecimiento con paginación.
func (r *ProductRepo) ListByEstablishment(establishmentID string, limit, offset int) ([]*entity.Product, error) {
	query := `
		SELECT ` + productColumns + ` FROM products
		WHERE establishment_id = $1 ORDER BY sku LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, establishmentID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// Delete elimina un producto por ID.
func (r *ProductRepo) Delete(id string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

func (r *ProductRepo) scanOne(row pgx.Row) (*entity.Product, error) {
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

// scanProduct lee una fila y normaliza las columnas de stock a la variante
// etiquetada del dominio.
func scanProduct(row pgx.Row) (*entity.Product, error) {
	var (
		p                entity.Product
		unitsJSON        []byte
		perWarehouseJSON []byte
		aggregateJSON    []byte
		flat             decimal.Decimal
	)
	err := row.Scan(
		&p.ID, &p.EstablishmentID, &p.SKU, &p.Name, &p.Description, &p.Price,
		&p.MinimalUnit, &unitsJSON, &perWarehouseJSON, &aggregateJSON, &flat,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(unitsJSON) > 0 {
		var rows []unitFactorRow
		if err := json.Unmarshal(unitsJSON, &rows); err != nil {
			return nil, fmt.Errorf("unmarshal additional_units: %w", err)
		}
		for _, u := range rows {
			p.AdditionalUnits = append(p.AdditionalUnits, entity.UnitFactor{UnitCode: u.UnitCode, Factor: u.Factor})
		}
	}

	var perWarehouse map[string]entity.WarehouseStock
	if len(perWarehouseJSON) > 0 {
		var rows map[string]warehouseStockRow
		if err := json.Unmarshal(perWarehouseJSON, &rows); err != nil {
			return nil, fmt.Errorf("unmarshal stock_per_warehouse: %w", err)
		}
		if len(rows) > 0 {
			perWarehouse = make(map[string]entity.WarehouseStock, len(rows))
			for id, ws := range rows {
				perWarehouse[id] = entity.WarehouseStock{Stock: ws.Stock, Reserved: ws.Reserved}
			}
		}
	}

	var aggregate map[string]decimal.Decimal
	if len(aggregateJSON) > 0 {
		if err := json.Unmarshal(aggregateJSON, &aggregate); err != nil {
			return nil, fmt.Errorf("unmarshal stock_aggregate: %w", err)
		}
	}

	p.Stock = entity.NormalizeStockData(perWarehouse, aggregate, flat)
	return &p, nil
}

func toUnitRows(units []entity.UnitFactor) []unitFactorRow {
	rows := make([]unitFactorRow, 0, len(units))
	for _, u := range units {
		rows = append(rows, unitFactorRow{UnitCode: u.UnitCode, Factor: u.Factor})
	}
	return rows
}

func marshalStockColumns(product *entity.Product) (units, perWarehouse, aggregate []byte, err error) {
	units, err = json.Marshal(toUnitRows(product.AdditionalUnits))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("marshal additional_units: %w", err)
	}
	perRows := make(map[string]warehouseStockRow, len(product.Stock.PerWarehouse))
	for id, ws := range product.Stock.PerWarehouse {
		perRows[id] = warehouseStockRow{Stock: ws.Stock, Reserved: ws.Reserved}
	}
	perWarehouse, err = json.Marshal(perRows)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("marshal stock_per_warehouse: %w", err)
	}
	aggRows := product.Stock.Aggregate
	if aggRows == nil {
		aggRows = map[string]decimal.Decimal{}
	}
	aggregate, err = json.Marshal(aggRows)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("marshal stock_aggregate: %w", err)
	}
	return units, perWarehouse, aggregate, nil
}
