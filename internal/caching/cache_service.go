package caching

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"rentledger/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type CacheService interface {
	// Primary binding caching
	GetPrimaryBinding(ctx context.Context, tenantID uuid.UUID) (*models.Binding, error)
	SetPrimaryBinding(ctx context.Context, binding *models.Binding, ttl time.Duration) error
	DeletePrimaryBinding(ctx context.Context, tenantID uuid.UUID) error

	// Generic string operations (analytics snapshots, report URLs)
	SetString(ctx context.Context, key string, value string, ttl time.Duration) error
	GetString(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	// Accept redis://host:port as well as a bare host:port.
	parsedAddr := addr
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		if hostPort := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://"); hostPort != addr {
			parsedAddr = hostPort
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		log.Printf("WARN: Redis ping failed on initialization: %v (address: %s)", pingErr, parsedAddr)
	}

	return &redisCacheService{client: client}
}

func primaryBindingKey(tenantID uuid.UUID) string {
	return fmt.Sprintf("rentledger:binding:primary:%s", tenantID.String())
}

func (r *redisCacheService) GetPrimaryBinding(ctx context.Context, tenantID uuid.UUID) (*models.Binding, error) {
	data, err := r.client.Get(ctx, primaryBindingKey(tenantID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var binding models.Binding
	if err := json.Unmarshal(data, &binding); err != nil {
		return nil, err
	}
	return &binding, nil
}

func (r *redisCacheService) SetPrimaryBinding(ctx context.Context, binding *models.Binding, ttl time.Duration) error {
	data, err := json.Marshal(binding)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, primaryBindingKey(binding.TenantID), data, ttl).Err()
}

func (r *redisCacheService) DeletePrimaryBinding(ctx context.Context, tenantID uuid.UUID) error {
	return r.client.Del(ctx, primaryBindingKey(tenantID)).Err()
}

func (r *redisCacheService) SetString(ctx context.Context, key string, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *redisCacheService) GetString(ctx context.Context, key string) (string, error) {
	value, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil
		}
		return "", err
	}
	return value, nil
}

func (r *redisCacheService) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}
