package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/monchobi/artschool/internal/app/models"
	"github.com/monchobi/artschool/internal/pkg/apperrors"
	"github.com/monchobi/artschool/internal/pkg/cache"
	"github.com/monchobi/artschool/internal/pkg/metrics"
)

// CatalogService serves the public class catalog.
type CatalogService interface {
	ListClasses(ctx context.Context) ([]*models.Class, error)
	GetClass(ctx context.Context, classID string) (*models.Class, error)
}

type catalogServiceImpl struct {
	classes ClassStore
	cache   cache.Cache
	ttl     time.Duration
	logger  zerolog.Logger
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(classes ClassStore, cache cache.Cache, ttl time.Duration, logger zerolog.Logger) CatalogService {
	return &catalogServiceImpl{
		classes: classes,
		cache:   cache,
		ttl:     ttl,
		logger:  logger,
	}
}

// ListClasses returns the approved classes students can enroll in.
func (s *catalogServiceImpl) ListClasses(ctx context.Context) ([]*models.Class, error) {
	var classes []*models.Class
	if s.lookup(ctx, cache.KeyCatalog, &classes) {
		return classes, nil
	}

	classes, err := s.classes.List(ctx, models.SubmissionFilter{Status: models.ClassStatusApproved})
	if err != nil {
		return nil, err
	}
	s.store(ctx, cache.KeyCatalog, classes)
	return classes, nil
}

// GetClass returns an approved class by ID. Classes under review or denied
// are reported as not found, like they are absent from ListClasses.
func (s *catalogServiceImpl) GetClass(ctx context.Context, classID string) (*models.Class, error) {
	key := cache.ClassKey(classID)

	var class models.Class
	if s.lookup(ctx, key, &class) && class.Status == models.ClassStatusApproved {
		return &class, nil
	}

	found, err := s.classes.GetByID(ctx, classID)
	if err != nil {
		return nil, err
	}
	if found.Status != models.ClassStatusApproved {
		return nil, apperrors.ErrClassNotFound
	}
	s.store(ctx, key, found)
	return found, nil
}

func (s *catalogServiceImpl) lookup(ctx context.Context, key string, dst any) bool {
	hit, err := s.cache.GetJSON(ctx, key, dst)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("Catalog cache read failed")
		return false
	}
	metrics.ObserveCacheLookup(cacheLabel(key), hit)
	return hit
}

func (s *catalogServiceImpl) store(ctx context.Context, key string, v any) {
	if err := s.cache.SetJSON(ctx, key, v, s.ttl); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("Catalog cache write failed")
	}
}

// cacheLabel keeps per-class keys out of metric labels.
func cacheLabel(key string) string {
	if key == cache.KeyCatalog || key == cache.KeyApprovedArchive {
		return key
	}
	return "catalog:class"
}
