package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/agentic-rag/server/internal/agent/model"
	errx "github.com/agentic-rag/server/internal/core/error"
	logx "github.com/agentic-rag/server/pkg/logger"
)

const variantSetKey = "abtest:variants"

type RedisABResultRepository struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewRedisABResultRepository(rdb redis.Cmdable, ttl time.Duration) *RedisABResultRepository {
	return &RedisABResultRepository{rdb: rdb, ttl: ttl}
}

func (r *RedisABResultRepository) runsKey(variant string) string {
	return fmt.Sprintf("abtest:%s:runs", variant)
}

func (r *RedisABResultRepository) RecordRun(ctx context.Context, rec model.ABRunRecord) error {
	if rec.PromptVariant == "" {
		return fmt.Errorf("record run: prompt variant is empty")
	}
	b, err := json.Marshal(rec)
	if err != nil {
		logx.Error().Err(err).Str("variant", rec.PromptVariant).Msg("failed to marshal run record")
		return fmt.Errorf("marshal run record: %w", err)
	}
	key := r.runsKey(rec.PromptVariant)

	if err := r.rdb.RPush(ctx, key, b).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to push run record to redis")
		return errx.WrapRedis(err)
	}
	if err := r.rdb.SAdd(ctx, variantSetKey, rec.PromptVariant).Err(); err != nil {
		logx.Error().Err(err).Str("variant", rec.PromptVariant).Msg("failed to register variant")
		return errx.WrapRedis(err)
	}
	// extend TTL on touch
	if r.ttl > 0 {
		if ok, err := r.rdb.Expire(ctx, key, r.ttl).Result(); err != nil {
			logx.Error().Err(err).Str("key", key).Msg("failed to set expire")
			return errx.WrapRedis(err)
		} else if !ok {
			logx.Warn().Str("key", key).Dur("ttl", r.ttl).Msg("failed to set TTL on run key")
		}
	}
	return nil
}

func (r *RedisABResultRepository) LoadRuns(ctx context.Context, variant string) ([]model.ABRunRecord, error) {
	key := r.runsKey(variant)

	rows, err := r.rdb.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		if err == redis.Nil {
			return []model.ABRunRecord{}, nil
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to load run records from redis")
		return nil, errx.WrapRedis(err)
	}

	recs := make([]model.ABRunRecord, 0, len(rows))
	for i, s := range rows {
		var rec model.ABRunRecord
		if err := json.Unmarshal([]byte(s), &rec); err != nil {
			logx.Error().Err(err).Str("variant", variant).Int("index", i).Msg("failed to unmarshal run record")
			return nil, fmt.Errorf("unmarshal run record at index %d: %w", i, err)
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func (r *RedisABResultRepository) Summary(ctx context.Context, variant string) (*model.ABVariantSummary, error) {
	recs, err := r.LoadRuns(ctx, variant)
	if err != nil {
		return nil, err
	}

	s := &model.ABVariantSummary{Variant: variant, Runs: len(recs)}
	if len(recs) == 0 {
		return s, nil
	}

	var succeeded, grounded, useful int
	var totalMS int64
	var totalRetries int
	for _, rec := range recs {
		if rec.Succeeded() {
			succeeded++
		}
		if rec.HallucinationCheck == model.GroundingGrounded {
			grounded++
		}
		if rec.UsefulnessCheck == model.UsefulnessUseful {
			useful++
		}
		totalMS += rec.DurationMS
		totalRetries += rec.RetryCount
	}
	n := float64(len(recs))
	s.SuccessRate = float64(succeeded) / n
	s.GroundedRate = float64(grounded) / n
	s.UsefulRate = float64(useful) / n
	s.AvgDurationMS = float64(totalMS) / n
	s.AvgRetries = float64(totalRetries) / n
	return s, nil
}

func (r *RedisABResultRepository) Variants(ctx context.Context) ([]string, error) {
	variants, err := r.rdb.SMembers(ctx, variantSetKey).Result()
	if err != nil {
		if err == redis.Nil {
			return []string{}, nil
		}
		logx.Error().Err(err).Msg("failed to load variant set from redis")
		return nil, errx.WrapRedis(err)
	}
	sort.Strings(variants)
	return variants, nil
}

func (r *RedisABResultRepository) ClearRuns(ctx context.Context, variant string) error {
	key := r.runsKey(variant)
	if err := r.rdb.Del(ctx, key).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to delete run records from redis")
		return errx.WrapRedis(err)
	}
	if err := r.rdb.SRem(ctx, variantSetKey, variant).Err(); err != nil {
		logx.Error().Err(err).Str("variant", variant).Msg("failed to unregister variant")
		return errx.WrapRedis(err)
	}
	return nil
}

var _ model.ABResultRepository = (*RedisABResultRepository)(nil)
