package memory

import (
	"context"
	"fmt"

	"github.com/holaaposmx/Controdealmacenfrio/internal/application/inventory"
	"github.com/holaaposmx/Controdealmacenfrio/internal/domain"
	"github.com/holaaposmx/Controdealmacenfrio/internal/domain/entity"
	"github.com/holaaposmx/Controdealmacenfrio/internal/domain/repository"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner transacción optimista en memoria: las escrituras se acumulan y al confirmar
// se valida, bajo el lock del Store, que cada lote conserve la cantidad esperada.
// Si alguno cambió no se aplica nada y se devuelve domain.ErrConcurrentModification.
type TxRunner struct {
	s *Store
}

// NewTxRunner construye el runner sobre el Store.
func NewTxRunner(s *Store) *TxRunner {
	return &TxRunner{s: s}
}

// Run ejecuta fn con repos transaccionales y confirma si fn no devuelve error.
func (r *TxRunner) Run(ctx context.Context, fn func(
	lots repository.LotRepository,
	movements repository.MovementRepository,
) error) error {
	tx := &memTx{s: r.s, touched: map[string]entity.Lot{}}
	if err := fn(&txLotRepo{tx: tx}, &txMovementRepo{tx: tx}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return tx.commit()
}

type memTx struct {
	s         *Store
	created   []entity.Lot
	mutations []entity.LotMutation
	movements []entity.Movement
	// touched vista de los lotes tal como los deja la transacción.
	touched map[string]entity.Lot
}

func (t *memTx) commit() error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	// Validar contra una copia para que dos mutaciones del mismo lote se encadenen.
	current := map[string]int{}
	for _, l := range t.created {
		if _, ok := t.s.lots[l.ID]; ok {
			return fmt.Errorf("%w: lote %s ya existe", domain.ErrInvalidInput, l.ID)
		}
		current[l.ID] = l.Quantity
	}
	for _, m := range t.mutations {
		q, ok := current[m.LotID]
		if !ok {
			l, exists := t.s.lots[m.LotID]
			if !exists {
				return fmt.Errorf("%w: lote %s", domain.ErrNotFound, m.LotID)
			}
			q = l.Quantity
		}
		if q != m.ExpectedQuantity {
			return fmt.Errorf("%w: lote %s", domain.ErrConcurrentModification, m.LotID)
		}
		current[m.LotID] = m.Quantity
	}

	for _, l := range t.created {
		_ = t.s.insertLot(l)
	}
	for _, m := range t.mutations {
		t.s.applyMutation(m)
	}
	t.s.movements = append(t.s.movements, t.movements...)
	return nil
}

// view superpone lo escrito en la transacción sobre lo confirmado.
func (t *memTx) view(l entity.Lot) entity.Lot {
	if v, ok := t.touched[l.ID]; ok {
		return v
	}
	return l
}

type txLotRepo struct{ tx *memTx }

func (r *txLotRepo) ListByProduct(ctx context.Context, productID string) ([]entity.Lot, error) {
	all, err := r.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, l := range all {
		if l.ProductID == productID && l.Quantity > 0 {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *txLotRepo) ListAll(_ context.Context) ([]entity.Lot, error) {
	r.tx.s.mu.Lock()
	base := r.tx.s.lotsWhere(func(entity.Lot) bool { return true })
	r.tx.s.mu.Unlock()
	for i := range base {
		base[i] = r.tx.view(base[i])
	}
	base = append(base, r.tx.created...)
	return base, nil
}

func (r *txLotRepo) GetByID(_ context.Context, id string) (*entity.Lot, error) {
	if l, ok := r.tx.touched[id]; ok {
		return &l, nil
	}
	r.tx.s.mu.Lock()
	l, ok := r.tx.s.lots[id]
	r.tx.s.mu.Unlock()
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (r *txLotRepo) Create(_ context.Context, lot *entity.Lot) error {
	if _, ok := r.tx.touched[lot.ID]; ok {
		return fmt.Errorf("%w: lote %s ya existe", domain.ErrInvalidInput, lot.ID)
	}
	r.tx.created = append(r.tx.created, *lot)
	r.tx.touched[lot.ID] = *lot
	return nil
}

// UpdateQuantity valida contra la vista actual; la validación definitiva ocurre al confirmar.
func (r *txLotRepo) UpdateQuantity(ctx context.Context, m entity.LotMutation) error {
	cur, err := r.GetByID(ctx, m.LotID)
	if err != nil {
		return err
	}
	if cur == nil {
		return fmt.Errorf("%w: lote %s", domain.ErrNotFound, m.LotID)
	}
	if cur.Quantity != m.ExpectedQuantity {
		return fmt.Errorf("%w: lote %s", domain.ErrConcurrentModification, m.LotID)
	}
	next := *cur
	next.Quantity = m.Quantity
	next.LocationID = m.LocationID
	next.Status = m.Status
	next.UpdatedAt = m.UpdatedAt
	r.tx.touched[m.LotID] = next

	isNew := false
	for i := range r.tx.created {
		if r.tx.created[i].ID == m.LotID {
			r.tx.created[i] = next
			isNew = true
		}
	}
	if !isNew {
		r.tx.mutations = append(r.tx.mutations, m)
	}
	return nil
}

func (r *txLotRepo) SumByLocation(ctx context.Context, locationID string) (int, error) {
	all, err := r.ListAll(ctx)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, l := range all {
		if l.LocationID != nil && *l.LocationID == locationID {
			total += l.Quantity
		}
	}
	return total, nil
}

type txMovementRepo struct{ tx *memTx }

func (r *txMovementRepo) Append(_ context.Context, m *entity.Movement) error {
	r.tx.movements = append(r.tx.movements, *m)
	return nil
}

func (r *txMovementRepo) ListByLot(ctx context.Context, lotID string, limit, offset int) ([]entity.Movement, error) {
	return NewMovementRepository(r.tx.s).ListByLot(ctx, lotID, limit, offset)
}

func (r *txMovementRepo) ListByReference(ctx context.Context, referenceCode string) ([]entity.Movement, error) {
	return NewMovementRepository(r.tx.s).ListByReference(ctx, referenceCode)
}
