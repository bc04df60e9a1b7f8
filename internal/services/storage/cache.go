package storage

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/phambaophuc/watermark-bot/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	CacheKeyPrefix = "wm_cache:"
	JobKeyPrefix   = "wm_job:"
)

func (s *StorageService) GetFromCache(ctx context.Context, cacheKey string) ([]byte, error) {
	data, err := s.redisClient.Get(ctx, cacheKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // Cache miss
		}
		return nil, fmt.Errorf("cache get error: %w", err)
	}
	return data, nil
}

func (s *StorageService) SetCache(ctx context.Context, cacheKey string, data []byte) error {
	return s.redisClient.Set(ctx, cacheKey, data, s.cacheDuration).Err()
}

// GenerateCacheKey hashes the source bytes together with every spec field
// that changes the rendered output.
func (s *StorageService) GenerateCacheKey(src []byte, spec *models.WatermarkSpec) string {
	hash := sha256.New()
	hash.Write(src)

	t := spec.Style.Tint
	fmt.Fprintf(hash, "|layout_%s|rgba_%d_%d_%d_%d|font_%s_%.2f|m_%d|p_%d|a_%.2f|q_%d|",
		spec.Layout, t.R, t.G, t.B, t.A, spec.FontPath, spec.FontSize,
		spec.Margin, spec.Padding, spec.Angle, spec.Quality)
	hash.Write([]byte(strings.Join(spec.Texts, "\x00")))

	return fmt.Sprintf("%s%x", CacheKeyPrefix, hash.Sum(nil))
}

func (s *StorageService) SetJobResult(ctx context.Context, job *models.WatermarkJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}
	return s.redisClient.Set(ctx, JobKeyPrefix+job.ID, data, s.cacheDuration).Err()
}

// GetJobResult returns nil without error when the job is unknown.
func (s *StorageService) GetJobResult(ctx context.Context, jobID string) (*models.WatermarkJob, error) {
	data, err := s.GetFromCache(ctx, JobKeyPrefix+jobID)
	if err != nil || data == nil {
		return nil, err
	}

	var job models.WatermarkJob
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job: %w", err)
	}
	return &job, nil
}

func (s *StorageService) CleanupCache(ctx context.Context) error {
	iter := s.redisClient.Scan(ctx, 0, CacheKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		if ttl := s.redisClient.TTL(ctx, key).Val(); ttl < 0 {
			s.redisClient.Del(ctx, key)
		}
	}
	return iter.Err()
}

func (s *StorageService) GetCacheStats(ctx context.Context) (map[string]interface{}, error) {
	pipeline := s.redisClient.Pipeline()

	infoCmd := pipeline.Info(ctx, "memory")
	dbSizeCmd := pipeline.DBSize(ctx)

	if _, err := pipeline.Exec(ctx); err != nil {
		return nil, fmt.Errorf("pipeline error: %w", err)
	}

	stats := map[string]interface{}{
		"db_keys": dbSizeCmd.Val(),
		"info":    infoCmd.Val(),
	}

	return stats, nil
}
