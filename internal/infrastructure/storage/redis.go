package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

var _ Store = (*RedisStore)(nil)

// RedisStore backend sobre Redis. Útil cuando varias instancias del cliente
// comparten la sesión (p. ej. un kiosco con respaldo central).
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

// RedisConfig parámetros de conexión.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// Prefix se antepone a todas las claves para aislar la aplicación.
	Prefix string
}

// NewRedisStore conecta y verifica el servidor con un PING.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisStore{rdb: rdb, prefix: cfg.Prefix}, nil
}

// NewRedisStoreFromClient envuelve un cliente ya conectado (tests).
func NewRedisStoreFromClient(rdb *redis.Client, prefix string) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: prefix}
}

func (s *RedisStore) key(k string) string {
	return s.prefix + k
}

// Get devuelve el valor o ErrKeyNotFound.
func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	v, err := s.rdb.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrKeyNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get %q: %w", key, err)
	}
	return v, nil
}

// Set escribe el valor sin expiración.
func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	if err := s.rdb.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

// Remove elimina la clave.
func (s *RedisStore) Remove(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("del %q: %w", key, err)
	}
	return nil
}

// Close cierra la conexión subyacente.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
