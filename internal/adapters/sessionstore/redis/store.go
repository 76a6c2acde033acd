package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"vetclinic-client/internal/domain/users"
	"vetclinic-client/internal/ports/sessionstore"
)

// defaultKey es la clave fija del slot en Redis.
const defaultKey = "vetclinic:currentUser"

// Store persiste la identidad en Redis bajo una clave fija.
// Útil cuando varias instancias del cliente (kioscos de recepción)
// comparten la misma sesión.
type Store struct {
	rdb *goredis.Client
	key string
}

var _ sessionstore.Store = (*Store)(nil)

type Config struct {
	Addr     string
	Password string
	DB       int

	// Key opcional; default "vetclinic:currentUser".
	Key string
}

func New(ctx context.Context, cfg Config) (*Store, error) {
	if strings.TrimSpace(cfg.Addr) == "" {
		return nil, errors.New("sessionstore/redis: addr required")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("sessionstore/redis: ping: %w", err)
	}

	key := strings.TrimSpace(cfg.Key)
	if key == "" {
		key = defaultKey
	}

	return &Store{rdb: rdb, key: key}, nil
}

func (s *Store) Save(ctx context.Context, u users.User) error {
	b, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("sessionstore/redis: marshal: %w", err)
	}
	if err := s.rdb.Set(ctx, s.key, b, 0).Err(); err != nil {
		return fmt.Errorf("sessionstore/redis: set: %w", err)
	}
	return nil
}

func (s *Store) Load(ctx context.Context) (users.User, bool, error) {
	b, err := s.rdb.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return users.User{}, false, nil
		}
		return users.User{}, false, fmt.Errorf("sessionstore/redis: get: %w", err)
	}

	var u users.User
	if err := json.Unmarshal(b, &u); err != nil {
		return users.User{}, false, nil
	}
	if strings.TrimSpace(u.ID) == "" {
		return users.User{}, false, nil
	}
	return u, true, nil
}

func (s *Store) Clear(ctx context.Context) error {
	if err := s.rdb.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("sessionstore/redis: del: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.rdb.Close()
}
