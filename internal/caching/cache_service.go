package caching

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"edumart/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// CacheService fronts Redis for the hot read paths: the plan catalog is read
// on every entitlement decision, so catalog rows and persona listings are
// cached and invalidated on any catalog write. It also provides the
// INCR-based rate-limit primitive used on the public browse-check endpoint.
type CacheService interface {
	GetPlan(ctx context.Context, planID uuid.UUID) (*models.Plan, error)
	SetPlan(ctx context.Context, plan *models.Plan, ttl time.Duration) error
	GetActivePlans(ctx context.Context, persona string) ([]*models.Plan, error)
	SetActivePlans(ctx context.Context, persona string, plans []*models.Plan, ttl time.Duration) error
	InvalidatePlans(ctx context.Context) error

	IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error)

	Ping(ctx context.Context) error
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) CacheService {
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

func (r *redisCacheService) GetPlan(ctx context.Context, planID uuid.UUID) (*models.Plan, error) {
	key := fmt.Sprintf("edumart:plan:%s", planID.String())
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var plan models.Plan
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *redisCacheService) SetPlan(ctx context.Context, plan *models.Plan, ttl time.Duration) error {
	key := fmt.Sprintf("edumart:plan:%s", plan.ID.String())
	data, err := json.Marshal(plan)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *redisCacheService) GetActivePlans(ctx context.Context, persona string) ([]*models.Plan, error) {
	key := fmt.Sprintf("edumart:plans:active:%s", personaKey(persona))
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var plans []*models.Plan
	if err := json.Unmarshal(data, &plans); err != nil {
		return nil, err
	}
	return plans, nil
}

func (r *redisCacheService) SetActivePlans(ctx context.Context, persona string, plans []*models.Plan, ttl time.Duration) error {
	key := fmt.Sprintf("edumart:plans:active:%s", personaKey(persona))
	data, err := json.Marshal(plans)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *redisCacheService) InvalidatePlans(ctx context.Context) error {
	keys, err := r.client.Keys(ctx, "edumart:plan*").Result()
	if err != nil {
		return err
	}
	if len(keys) > 0 {
		return r.client.Del(ctx, keys...).Err()
	}
	return nil
}

func (r *redisCacheService) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	cacheKey := fmt.Sprintf("edumart:ratelimit:%s", key)
	count, err := r.client.Incr(ctx, cacheKey).Result()
	if err != nil {
		return true, err
	}

	// Set expiry on first request
	if count == 1 {
		r.client.Expire(ctx, cacheKey, window)
	}

	return count > int64(limit), nil
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func personaKey(persona string) string {
	if persona == "" {
		return "all"
	}
	return persona
}
