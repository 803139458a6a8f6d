// Package memory implementa el store en proceso del catálogo y el kardex.
// Es un objeto explícito que el composition root construye y pasa por
// referencia: no hay singleton global. Un único mutex serializa todas las
// operaciones (modelo de escritor único); los lectores reciben copias para
// que las mutaciones del motor no se filtren antes del write-back.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/retail-pro/internal/application/inventory"
	"github.com/tu-usuario/retail-pro/internal/domain"
	"github.com/tu-usuario/retail-pro/internal/domain/entity"
	"github.com/tu-usuario/retail-pro/internal/domain/repository"
)

// Store contiene productos, bodegas, establecimientos, usuarios y el kardex.
// Los puertos de persistencia se obtienen con Products(), Warehouses(),
// Establishments(), Users() y Ledger(); el propio Store es el TxRunner.
type Store struct {
	mu             sync.Mutex
	products       map[string]*entity.Product
	warehouses     map[string]*entity.Warehouse
	establishments map[string]*entity.Establishment
	users          map[string]*entity.User
	movements      []*entity.MovementRecord // kardex: solo append

	// FailLedgerAppend fuerza el fallo del próximo Append (solo tests: simula
	// el hueco conocido de kardex con stock ya mutado).
	FailLedgerAppend bool
}

var _ inventory.TxRunner = (*Store)(nil)

// NewStore construye un store vacío.
func NewStore() *Store {
	return &Store{
		products:       make(map[string]*entity.Product),
		warehouses:     make(map[string]*entity.Warehouse),
		establishments: make(map[string]*entity.Establishment),
		users:          make(map[string]*entity.User),
	}
}

// Products devuelve el puerto ProductRepository sobre este store.
func (s *Store) Products() repository.ProductRepository { return productStore{s} }

// Warehouses devuelve el puerto WarehouseRepository sobre este store.
func (s *Store) Warehouses() repository.WarehouseRepository { return warehouseStore{s} }

// Establishments devuelve el puerto EstablishmentRepository sobre este store.
func (s *Store) Establishments() repository.EstablishmentRepository { return establishmentStore{s} }

// Users devuelve el puerto UserRepository sobre este store.
func (s *Store) Users() repository.UserRepository { return userStore{s} }

// Ledger devuelve el puerto MovementLedger sobre este store.
func (s *Store) Ledger() repository.MovementLedger { return ledgerStore{s} }

// Run ejecuta fn con los puertos del propio store. No hay transacción real:
// si fn falla a mitad de camino no hay rollback (limitación documentada del
// store en memoria; con PostgreSQL el TxRunner sí garantiza atomicidad).
func (s *Store) Run(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	ledger repository.MovementLedger,
) error) error {
	return fn(s.Products(), s.Ledger())
}

// ── ProductRepository ─────────────────────────────────────────────────────────

type productStore struct{ s *Store }

var _ repository.ProductRepository = productStore{}

// Create persiste un nuevo producto.
func (r productStore) Create(product *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[product.ID]; ok {
		return domain.ErrDuplicate
	}
	r.s.products[product.ID] = cloneProduct(product)
	return nil
}

// GetByID obtiene un producto por ID (copia; nil si no existe).
func (r productStore) GetByID(id string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return cloneProduct(r.s.products[id]), nil
}

// GetByEstablishmentAndSKU obtiene un producto por establecimiento y SKU.
func (r productStore) GetByEstablishmentAndSKU(establishmentID, sku string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.products {
		if p.EstablishmentID == establishmentID && p.SKU == sku {
			return cloneProduct(p), nil
		}
	}
	return nil, nil
}

// Update actualiza los datos maestros de un producto (no el stock).
func (r productStore) Update(product *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.products[product.ID]
	if !ok {
		return domain.ErrNotFound
	}
	clone := cloneProduct(product)
	clone.Stock = current.Stock // el stock solo cambia vía UpdateStock
	r.s.products[product.ID] = clone
	return nil
}

// UpdateStock persiste la instantánea de stock calculada por el motor (write-back).
func (r productStore) UpdateStock(product *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.products[product.ID]
	if !ok {
		return domain.ErrNotFound
	}
	current.Stock = cloneStockData(product.Stock)
	current.UpdatedAt = product.UpdatedAt
	return nil
}

// ListByEstablishment lista productos por establecimiento con paginación.
func (r productStore) ListByEstablishment(establishmentID string, limit, offset int) ([]*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var all []*entity.Product
	for _, p := range r.s.products {
		if establishmentID == "" || p.EstablishmentID == establishmentID {
			all = append(all, cloneProduct(p))
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].SKU < all[j].SKU })
	return paginate(all, limit, offset), nil
}

// Delete elimina un producto.
func (r productStore) Delete(id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.products, id)
	return nil
}

// ── WarehouseRepository ───────────────────────────────────────────────────────

type warehouseStore struct{ s *Store }

var _ repository.WarehouseRepository = warehouseStore{}

// Create persiste una bodega.
func (r warehouseStore) Create(warehouse *entity.Warehouse) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.warehouses[warehouse.ID]; ok {
		return domain.ErrDuplicate
	}
	w := *warehouse
	r.s.warehouses[warehouse.ID] = &w
	return nil
}

// GetByID obtiene una bodega por ID (copia; nil si no existe).
func (r warehouseStore) GetByID(id string) (*entity.Warehouse, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if wh, ok := r.s.warehouses[id]; ok {
		w := *wh
		return &w, nil
	}
	return nil, nil
}

// Update actualiza una bodega existente.
func (r warehouseStore) Update(warehouse *entity.Warehouse) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.warehouses[warehouse.ID]; !ok {
		return domain.ErrNotFound
	}
	w := *warehouse
	r.s.warehouses[warehouse.ID] = &w
	return nil
}

// ListByEstablishment lista las bodegas del establecimiento.
func (r warehouseStore) ListByEstablishment(establishmentID string) ([]*entity.Warehouse, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var all []*entity.Warehouse
	for _, wh := range r.s.warehouses {
		if establishmentID == "" || wh.EstablishmentID == establishmentID {
			w := *wh
			all = append(all, &w)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Code < all[j].Code })
	return all, nil
}

// Delete elimina una bodega.
func (r warehouseStore) Delete(id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.warehouses, id)
	return nil
}

// ── MovementLedger ────────────────────────────────────────────────────────────

type ledgerStore struct{ s *Store }

var _ repository.MovementLedger = ledgerStore{}

// Append agrega una entrada al kardex. Única mutación permitida.
func (r ledgerStore) Append(record *entity.MovementRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailLedgerAppend {
		r.s.FailLedgerAppend = false
		return domain.ErrLedgerAppend
	}
	rec := *record
	r.s.movements = append(r.s.movements, &rec)
	return nil
}

// GetByID obtiene una entrada del kardex por ID.
func (r ledgerStore) GetByID(id string) (*entity.MovementRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, rec := range r.s.movements {
		if rec.ID == id {
			c := *rec
			return &c, nil
		}
	}
	return nil, nil
}

// ListByProduct lista el kardex de un producto, más reciente primero.
func (r ledgerStore) ListByProduct(productID string, limit, offset int) ([]*entity.MovementRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var all []*entity.MovementRecord
	for i := len(r.s.movements) - 1; i >= 0; i-- {
		if r.s.movements[i].ProductID == productID {
			c := *r.s.movements[i]
			all = append(all, &c)
		}
	}
	return paginate(all, limit, offset), nil
}

// ListByReference lista el kardex por documento de referencia, en orden de inserción.
func (r ledgerStore) ListByReference(referenceID string) ([]*entity.MovementRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var all []*entity.MovementRecord
	for _, rec := range r.s.movements {
		if rec.ReferenceID == referenceID {
			c := *rec
			all = append(all, &c)
		}
	}
	return all, nil
}

// ── EstablishmentRepository ───────────────────────────────────────────────────

type establishmentStore struct{ s *Store }

var _ repository.EstablishmentRepository = establishmentStore{}

// Create persiste un establecimiento.
func (r establishmentStore) Create(establishment *entity.Establishment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.establishments[establishment.ID]; ok {
		return domain.ErrDuplicate
	}
	e := *establishment
	r.s.establishments[establishment.ID] = &e
	return nil
}

// GetByID obtiene un establecimiento por ID.
func (r establishmentStore) GetByID(id string) (*entity.Establishment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if est, ok := r.s.establishments[id]; ok {
		e := *est
		return &e, nil
	}
	return nil, nil
}

// List lista establecimientos con paginación.
func (r establishmentStore) List(limit, offset int) ([]*entity.Establishment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var all []*entity.Establishment
	for _, est := range r.s.establishments {
		e := *est
		all = append(all, &e)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Code < all[j].Code })
	return paginate(all, limit, offset), nil
}

// ── UserRepository ────────────────────────────────────────────────────────────

type userStore struct{ s *Store }

var _ repository.UserRepository = userStore{}

// Create persiste un usuario.
func (r userStore) Create(user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[user.ID]; ok {
		return domain.ErrDuplicate
	}
	u := *user
	r.s.users[user.ID] = &u
	return nil
}

// GetByID obtiene un usuario por ID.
func (r userStore) GetByID(id string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u, ok := r.s.users[id]; ok {
		c := *u
		return &c, nil
	}
	return nil, nil
}

// FindByEmail busca un usuario por email.
func (r userStore) FindByEmail(email string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, nil
}

// GetByEmailAndEstablishment busca un usuario por email dentro de un establecimiento.
func (r userStore) GetByEmailAndEstablishment(email, establishmentID string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email && u.EstablishmentID == establishmentID {
			c := *u
			return &c, nil
		}
	}
	return nil, nil
}

// ── helpers ───────────────────────────────────────────────────────────────────

func cloneProduct(p *entity.Product) *entity.Product {
	if p == nil {
		return nil
	}
	clone := *p
	clone.AdditionalUnits = append([]entity.UnitFactor(nil), p.AdditionalUnits...)
	clone.Stock = cloneStockData(p.Stock)
	return &clone
}

func cloneStockData(sd entity.StockData) entity.StockData {
	clone := sd
	if sd.PerWarehouse != nil {
		clone.PerWarehouse = make(map[string]entity.WarehouseStock, len(sd.PerWarehouse))
		for k, v := range sd.PerWarehouse {
			clone.PerWarehouse[k] = v
		}
	}
	if sd.Aggregate != nil {
		clone.Aggregate = make(map[string]decimal.Decimal, len(sd.Aggregate))
		for k, v := range sd.Aggregate {
			clone.Aggregate[k] = v
		}
	}
	return clone
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
