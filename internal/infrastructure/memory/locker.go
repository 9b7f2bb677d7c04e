package memory

import (
	"context"
	"sync"

	"github.com/holaaposmx/Controdealmacenfrio/internal/application/inventory"
)

var _ inventory.ProductLocker = (*ProductLocker)(nil)

// ProductLocker un mutex por producto dentro del proceso (una sola instancia de la API).
type ProductLocker struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

// NewProductLocker construye el locker.
func NewProductLocker() *ProductLocker {
	return &ProductLocker{slots: map[string]chan struct{}{}}
}

// Lock espera el turno del producto o a que ctx se cancele.
func (l *ProductLocker) Lock(ctx context.Context, productID string) (func(), error) {
	l.mu.Lock()
	slot, ok := l.slots[productID]
	if !ok {
		slot = make(chan struct{}, 1)
		l.slots[productID] = slot
	}
	l.mu.Unlock()

	select {
	case slot <- struct{}{}:
		var once sync.Once
		return func() { once.Do(func() { <-slot }) }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
