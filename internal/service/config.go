package service

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/miniledger/easyexp-go/internal/domain"
	"github.com/miniledger/easyexp-go/internal/infra/observability"
	"github.com/miniledger/easyexp-go/internal/port"
)

var configTracer = otel.Tracer("service/config")

// ConfigService reads and writes the two user-scoped vocabularies. Reads
// fall back to the seed lists for any kind the user has never stored, and
// go through a short-lived cache because the expense service consults the
// vocabularies on every create/update.
type ConfigService struct {
	store   port.ConfigStore
	cache   port.Cache[domain.Config]
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewConfigService creates a new config service.
func NewConfigService(store port.ConfigStore, cache port.Cache[domain.Config], metrics *observability.Metrics, logger *zap.Logger) *ConfigService {
	return &ConfigService{
		store:   store,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
	}
}

// Get returns both vocabularies for the user, seeded where unset.
func (s *ConfigService) Get(ctx context.Context, userID string) (*domain.Config, error) {
	ctx, span := configTracer.Start(ctx, "ConfigService.Get")
	defer span.End()

	if cfg, ok := s.cache.Get(userID); ok {
		s.metrics.IncrCacheHit("config")
		return &cfg, nil
	}
	s.metrics.IncrCacheMiss("config")

	reimburse, found, err := s.store.GetOptions(ctx, userID, domain.KindReimburseType)
	if err != nil {
		return nil, err
	}
	if !found {
		reimburse = domain.DefaultReimburseTypes()
	}

	pay, found, err := s.store.GetOptions(ctx, userID, domain.KindPayType)
	if err != nil {
		return nil, err
	}
	if !found {
		pay = domain.DefaultPayTypes()
	}

	cfg := domain.Config{ReimburseTypes: reimburse, PayTypes: pay}
	s.cache.Set(userID, cfg)
	return &cfg, nil
}

// Set replaces the full list for one kind and returns the refreshed pair,
// so callers always re-sync complete config state in one round trip.
func (s *ConfigService) Set(ctx context.Context, userID string, kind domain.VocabKind, options []string) (*domain.Config, error) {
	ctx, span := configTracer.Start(ctx, "ConfigService.Set")
	defer span.End()

	if !kind.Valid() {
		return nil, &domain.ErrValidation{Field: "type", Message: "无效的配置类型"}
	}
	if options == nil {
		return nil, &domain.ErrValidation{Field: "options", Message: "配置类型和选项不能为空"}
	}

	if err := s.store.SetOptions(ctx, userID, kind, options); err != nil {
		return nil, err
	}

	s.cache.Delete(userID)
	s.logger.Info("config updated",
		zap.String("user_id", userID),
		zap.String("kind", string(kind)),
		zap.Int("options", len(options)),
	)

	return s.Get(ctx, userID)
}
