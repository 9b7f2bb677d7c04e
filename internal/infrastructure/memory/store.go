// Package memory implementa los puertos de persistencia en memoria. Se usa en tests,
// en las pruebas de concurrencia del despacho y en modo demo (sin DATABASE_URL).
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/holaaposmx/Controdealmacenfrio/internal/domain"
	"github.com/holaaposmx/Controdealmacenfrio/internal/domain/entity"
	"github.com/holaaposmx/Controdealmacenfrio/internal/domain/repository"
)

var (
	_ repository.LotRepository             = (*LotRepo)(nil)
	_ repository.MovementRepository        = (*MovementRepo)(nil)
	_ repository.LocationRepository        = (*LocationRepo)(nil)
	_ repository.OrderRepository           = (*OrderRepo)(nil)
	_ repository.TemperatureLogRepository  = (*TemperatureLogRepo)(nil)
	_ repository.QualityIncidentRepository = (*QualityIncidentRepo)(nil)
	_ repository.UserRepository            = (*UserRepo)(nil)
)

// Store datos compartidos por todos los repositorios en memoria.
type Store struct {
	mu sync.Mutex

	lots      map[string]entity.Lot
	lotOrder  []string
	movements []entity.Movement

	locations map[string]entity.Location
	locOrder  []string

	orders     map[string]entity.Order
	orderOrder []string

	temperatures []entity.TemperatureLog
	incidents    map[string]entity.QualityIncident
	incOrder     []string

	users map[string]entity.User
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{
		lots:      map[string]entity.Lot{},
		locations: map[string]entity.Location{},
		orders:    map[string]entity.Order{},
		incidents: map[string]entity.QualityIncident{},
		users:     map[string]entity.User{},
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Lotes
// ──────────────────────────────────────────────────────────────────────────────

// LotRepo acceso directo (sin transacción) a los lotes.
type LotRepo struct{ s *Store }

// NewLotRepository construye el repositorio.
func NewLotRepository(s *Store) *LotRepo { return &LotRepo{s: s} }

func (r *LotRepo) ListByProduct(_ context.Context, productID string) ([]entity.Lot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.lotsWhere(func(l entity.Lot) bool { return l.ProductID == productID && l.Quantity > 0 }), nil
}

func (r *LotRepo) ListAll(_ context.Context) ([]entity.Lot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.lotsWhere(func(entity.Lot) bool { return true }), nil
}

func (r *LotRepo) GetByID(_ context.Context, id string) (*entity.Lot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.lots[id]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (r *LotRepo) Create(_ context.Context, lot *entity.Lot) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.insertLot(*lot)
}

func (r *LotRepo) UpdateQuantity(_ context.Context, m entity.LotMutation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.checkMutation(m); err != nil {
		return err
	}
	r.s.applyMutation(m)
	return nil
}

func (r *LotRepo) SumByLocation(_ context.Context, locationID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.sumByLocation(locationID), nil
}

func (s *Store) lotsWhere(keep func(entity.Lot) bool) []entity.Lot {
	out := make([]entity.Lot, 0, len(s.lotOrder))
	for _, id := range s.lotOrder {
		if l := s.lots[id]; keep(l) {
			out = append(out, l)
		}
	}
	return out
}

func (s *Store) insertLot(l entity.Lot) error {
	if _, ok := s.lots[l.ID]; ok {
		return fmt.Errorf("%w: lote %s ya existe", domain.ErrInvalidInput, l.ID)
	}
	s.lots[l.ID] = l
	s.lotOrder = append(s.lotOrder, l.ID)
	return nil
}

func (s *Store) checkMutation(m entity.LotMutation) error {
	l, ok := s.lots[m.LotID]
	if !ok {
		return fmt.Errorf("%w: lote %s", domain.ErrNotFound, m.LotID)
	}
	if l.Quantity != m.ExpectedQuantity {
		return fmt.Errorf("%w: lote %s", domain.ErrConcurrentModification, m.LotID)
	}
	return nil
}

func (s *Store) applyMutation(m entity.LotMutation) {
	l := s.lots[m.LotID]
	l.Quantity = m.Quantity
	l.LocationID = m.LocationID
	l.Status = m.Status
	l.UpdatedAt = m.UpdatedAt
	s.lots[m.LotID] = l
}

func (s *Store) sumByLocation(locationID string) int {
	total := 0
	for _, l := range s.lots {
		if l.LocationID != nil && *l.LocationID == locationID {
			total += l.Quantity
		}
	}
	return total
}

// ──────────────────────────────────────────────────────────────────────────────
// Movimientos
// ──────────────────────────────────────────────────────────────────────────────

// MovementRepo registro de movimientos (solo inserción).
type MovementRepo struct{ s *Store }

// NewMovementRepository construye el repositorio.
func NewMovementRepository(s *Store) *MovementRepo { return &MovementRepo{s: s} }

func (r *MovementRepo) Append(_ context.Context, m *entity.Movement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.movements = append(r.s.movements, *m)
	return nil
}

// ListByLot más reciente primero.
func (r *MovementRepo) ListByLot(_ context.Context, lotID string, limit, offset int) ([]entity.Movement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []entity.Movement
	for i := len(r.s.movements) - 1; i >= 0; i-- {
		m := r.s.movements[i]
		if m.LotID != nil && *m.LotID == lotID {
			out = append(out, m)
		}
	}
	return page(out, limit, offset), nil
}

func (r *MovementRepo) ListByReference(_ context.Context, referenceCode string) ([]entity.Movement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []entity.Movement
	for _, m := range r.s.movements {
		if m.ReferenceCode != nil && *m.ReferenceCode == referenceCode {
			out = append(out, m)
		}
	}
	return out, nil
}

// Movements copia de todos los movimientos en orden de inserción.
func (s *Store) Movements() []entity.Movement {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.Movement, len(s.movements))
	copy(out, s.movements)
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Ubicaciones
// ──────────────────────────────────────────────────────────────────────────────

// LocationRepo ubicaciones del almacén.
type LocationRepo struct{ s *Store }

// NewLocationRepository construye el repositorio.
func NewLocationRepository(s *Store) *LocationRepo { return &LocationRepo{s: s} }

func (r *LocationRepo) Create(_ context.Context, l *entity.Location) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.locations {
		if strings.EqualFold(existing.Code, l.Code) {
			return fmt.Errorf("%w: código de ubicación %s duplicado", domain.ErrInvalidInput, l.Code)
		}
	}
	r.s.locations[l.ID] = *l
	r.s.locOrder = append(r.s.locOrder, l.ID)
	return nil
}

func (r *LocationRepo) GetByID(_ context.Context, id string) (*entity.Location, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.locations[id]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (r *LocationRepo) GetByCode(_ context.Context, code string) (*entity.Location, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, l := range r.s.locations {
		if strings.EqualFold(l.Code, code) {
			return &l, nil
		}
	}
	return nil, nil
}

func (r *LocationRepo) List(_ context.Context, limit, offset int) ([]entity.Location, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]entity.Location, 0, len(r.s.locOrder))
	for _, id := range r.s.locOrder {
		out = append(out, r.s.locations[id])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return page(out, limit, offset), nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Órdenes
// ──────────────────────────────────────────────────────────────────────────────

// OrderRepo órdenes con sus partidas.
type OrderRepo struct{ s *Store }

// NewOrderRepository construye el repositorio.
func NewOrderRepository(s *Store) *OrderRepo { return &OrderRepo{s: s} }

func (r *OrderRepo) Create(_ context.Context, o *entity.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.orders {
		if existing.OrderNumber == o.OrderNumber {
			return fmt.Errorf("%w: orden %s duplicada", domain.ErrInvalidInput, o.OrderNumber)
		}
	}
	cp := *o
	cp.Items = append([]entity.OrderItem(nil), o.Items...)
	r.s.orders[o.ID] = cp
	r.s.orderOrder = append(r.s.orderOrder, o.ID)
	return nil
}

func (r *OrderRepo) GetByID(_ context.Context, id string) (*entity.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok {
		return nil, nil
	}
	o.Items = append([]entity.OrderItem(nil), o.Items...)
	return &o, nil
}

// List más reciente primero; status vacío = todas.
func (r *OrderRepo) List(_ context.Context, status string, limit, offset int) ([]entity.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []entity.Order
	for i := len(r.s.orderOrder) - 1; i >= 0; i-- {
		o := r.s.orders[r.s.orderOrder[i]]
		if status == "" || o.Status == status {
			out = append(out, o)
		}
	}
	return page(out, limit, offset), nil
}

func (r *OrderRepo) Update(_ context.Context, o *entity.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.orders[o.ID]
	if !ok {
		return fmt.Errorf("%w: orden %s", domain.ErrNotFound, o.ID)
	}
	cur.Status = o.Status
	cur.ShippingDate = o.ShippingDate
	cur.DeliveryDate = o.DeliveryDate
	cur.Notes = o.Notes
	cur.UpdatedAt = o.UpdatedAt
	r.s.orders[o.ID] = cur
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Calidad
// ──────────────────────────────────────────────────────────────────────────────

// TemperatureLogRepo lecturas de temperatura.
type TemperatureLogRepo struct{ s *Store }

// NewTemperatureLogRepository construye el repositorio.
func NewTemperatureLogRepository(s *Store) *TemperatureLogRepo { return &TemperatureLogRepo{s: s} }

func (r *TemperatureLogRepo) Create(_ context.Context, t *entity.TemperatureLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.temperatures = append(r.s.temperatures, *t)
	return nil
}

func (r *TemperatureLogRepo) List(_ context.Context, storageArea string, limit, offset int) ([]entity.TemperatureLog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []entity.TemperatureLog
	for i := len(r.s.temperatures) - 1; i >= 0; i-- {
		t := r.s.temperatures[i]
		if storageArea == "" || t.StorageArea == storageArea {
			out = append(out, t)
		}
	}
	return page(out, limit, offset), nil
}

// QualityIncidentRepo incidencias de calidad.
type QualityIncidentRepo struct{ s *Store }

// NewQualityIncidentRepository construye el repositorio.
func NewQualityIncidentRepository(s *Store) *QualityIncidentRepo {
	return &QualityIncidentRepo{s: s}
}

func (r *QualityIncidentRepo) Create(_ context.Context, i *entity.QualityIncident) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.incidents[i.ID] = *i
	r.s.incOrder = append(r.s.incOrder, i.ID)
	return nil
}

func (r *QualityIncidentRepo) GetByID(_ context.Context, id string) (*entity.QualityIncident, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i, ok := r.s.incidents[id]
	if !ok {
		return nil, nil
	}
	return &i, nil
}

func (r *QualityIncidentRepo) Update(_ context.Context, i *entity.QualityIncident) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.incidents[i.ID]; !ok {
		return fmt.Errorf("%w: incidente %s", domain.ErrNotFound, i.ID)
	}
	r.s.incidents[i.ID] = *i
	return nil
}

func (r *QualityIncidentRepo) List(_ context.Context, status string, limit, offset int) ([]entity.QualityIncident, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []entity.QualityIncident
	for idx := len(r.s.incOrder) - 1; idx >= 0; idx-- {
		i := r.s.incidents[r.s.incOrder[idx]]
		if status == "" || i.Status == status {
			out = append(out, i)
		}
	}
	return page(out, limit, offset), nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Usuarios
// ──────────────────────────────────────────────────────────────────────────────

// UserRepo usuarios del sistema.
type UserRepo struct{ s *Store }

// NewUserRepository construye el repositorio.
func NewUserRepository(s *Store) *UserRepo { return &UserRepo{s: s} }

func (r *UserRepo) Create(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return domain.ErrEmailAlreadyExists
		}
	}
	r.s.users[u.ID] = *u
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}
