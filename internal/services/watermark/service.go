// Package watermark assembles specs from configuration and user choices and
// runs them through the compositor, with an optional render cache.
package watermark

import (
	"context"

	"github.com/phambaophuc/watermark-bot/internal/config"
	"github.com/phambaophuc/watermark-bot/internal/models"
	"github.com/phambaophuc/watermark-bot/internal/services/processor"
	"github.com/phambaophuc/watermark-bot/internal/services/style"
	"go.uber.org/zap"
)

// Cache is the subset of the storage service used for rendered output.
type Cache interface {
	GenerateCacheKey(src []byte, spec *models.WatermarkSpec) string
	GetFromCache(ctx context.Context, cacheKey string) ([]byte, error)
	SetCache(ctx context.Context, cacheKey string, data []byte) error
}

type Service struct {
	processor *processor.ImageProcessor
	resolver  *style.Resolver
	cfg       *config.Config
	cache     Cache
	logger    *zap.Logger
}

// NewService builds the service. cache may be nil.
func NewService(
	processor *processor.ImageProcessor,
	resolver *style.Resolver,
	cfg *config.Config,
	cache Cache,
	logger *zap.Logger,
) *Service {
	return &Service{
		processor: processor,
		resolver:  resolver,
		cfg:       cfg,
		cache:     cache,
		logger:    logger,
	}
}

func (s *Service) Resolver() *style.Resolver {
	return s.resolver
}

func (s *Service) Processor() *processor.ImageProcessor {
	return s.processor
}

// BuildSpec resolves the requested color and applies any layout or text
// override on top of the configured constants.
func (s *Service) BuildSpec(req models.WatermarkRequest) models.WatermarkSpec {
	spec := s.cfg.WatermarkSpec(s.resolver.Resolve(req.Color))

	if req.Layout.Valid() {
		spec.Layout = req.Layout
	}

	var texts []string
	for _, t := range req.Texts {
		if t != "" {
			texts = append(texts, t)
		}
	}
	if len(texts) > 0 {
		spec.Texts = texts
	}

	return spec
}

// Watermark renders src for req. Cache failures are logged and ignored.
func (s *Service) Watermark(ctx context.Context, src []byte, req models.WatermarkRequest) ([]byte, models.WatermarkSpec, error) {
	spec := s.BuildSpec(req)

	var cacheKey string
	if s.cache != nil {
		cacheKey = s.cache.GenerateCacheKey(src, &spec)
		cached, err := s.cache.GetFromCache(ctx, cacheKey)
		if err != nil {
			s.logger.Warn("Render cache lookup failed", zap.Error(err))
		} else if len(cached) > 0 {
			s.logger.Debug("Render cache hit", zap.String("cache_key", cacheKey))
			return cached, spec, nil
		}
	}

	out, err := s.processor.Apply(src, spec)
	if err != nil {
		return nil, spec, err
	}

	if s.cache != nil {
		if err := s.cache.SetCache(ctx, cacheKey, out); err != nil {
			s.logger.Warn("Failed to cache render", zap.String("cache_key", cacheKey), zap.Error(err))
		}
	}

	return out, spec, nil
}
