package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/ordenes-api/internal/application/ports"
)

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)

const (
	responsePrefix = "idem:resp:"
	lockPrefix     = "idem:lock:"
	// lockTTL cubre la transacción más larga esperada; el lock se libera al terminar la petición.
	lockTTL = 30 * time.Second
)

// IdempotencyStore respuestas de POST guardadas en Redis durante ttl, con un lock redislock por clave.
type IdempotencyStore struct {
	rdb    goredis.UniversalClient
	locker *redislock.Client
	ttl    time.Duration
}

// NewIdempotencyStore construye el store sobre un cliente ya conectado.
func NewIdempotencyStore(rdb goredis.UniversalClient, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{rdb: rdb, locker: redislock.New(rdb), ttl: ttl}
}

// Get devuelve la respuesta guardada o nil si la clave no existe o ya expiró.
func (s *IdempotencyStore) Get(ctx context.Context, key string) (*ports.StoredResponse, error) {
	raw, err := s.rdb.Get(ctx, responsePrefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	var resp ports.StoredResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode stored response: %w", err)
	}
	return &resp, nil
}

// Save guarda la respuesta con el TTL configurado.
func (s *IdempotencyStore) Save(ctx context.Context, key string, resp ports.StoredResponse) error {
	raw, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("encode stored response: %w", err)
	}
	if err := s.rdb.Set(ctx, responsePrefix+key, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Lock toma el lock de la clave sin esperar. Si otro proceso lo tiene devuelve ports.ErrRequestInFlight.
func (s *IdempotencyStore) Lock(ctx context.Context, key string) (func(), error) {
	lock, err := s.locker.Obtain(ctx, lockPrefix+key, lockTTL, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, ports.ErrRequestInFlight
	}
	if err != nil {
		return nil, fmt.Errorf("redis lock: %w", err)
	}
	return func() {
		// contexto propio: el de la petición puede estar cancelado al liberar
		_ = lock.Release(context.Background())
	}, nil
}
