// Package redislock lock de despacho por producto compartido entre réplicas de la API.
package redislock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/holaaposmx/Controdealmacenfrio/internal/application/inventory"
)

var _ inventory.ProductLocker = (*ProductLocker)(nil)

const (
	keyPrefix     = "dispatch-lock:"
	retryInterval = 25 * time.Millisecond
	releaseWait   = 2 * time.Second
)

// Solo borra la clave si sigue siendo nuestra: tras expirar el TTL otro proceso pudo tomarla.
var releaseScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
	return redis.call('DEL', KEYS[1])
end
return 0
`)

// ProductLocker SET NX con TTL por producto. El TTL acota cuánto bloquea un proceso caído;
// si expira a mitad de un despacho, la escritura condicional sigue evitando el sobre-despacho.
type ProductLocker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewProductLocker construye el lock. ttl <= 0 usa 10s.
func NewProductLocker(client *redis.Client, ttl time.Duration) *ProductLocker {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &ProductLocker{client: client, ttl: ttl}
}

// Lock espera hasta obtener el lock del producto o hasta que ctx termine.
func (l *ProductLocker) Lock(ctx context.Context, productID string) (func(), error) {
	key := keyPrefix + productID
	token := uuid.New().String()

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("redis set nx %s: %w", key, err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryInterval):
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// El ctx del llamador puede estar cancelado; liberar igual.
			rctx, cancel := context.WithTimeout(context.Background(), releaseWait)
			defer cancel()
			_ = releaseScript.Run(rctx, l.client, []string{key}, token).Err()
		})
	}, nil
}
