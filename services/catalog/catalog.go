package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"creditcoach/models"
	"creditcoach/services/cart"
	"creditcoach/utils"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

var ErrProductNotFound = errors.New("product not found")

const listKey = "all"

// Source is where product payloads come from.
type Source interface {
	ListProducts(ctx context.Context) ([]models.ProductPayload, error)
	GetProduct(ctx context.Context, id string) (*models.ProductPayload, error)
}

// Service serves normalized products, caching them in Redis for ttl. The
// cache is best effort: any Redis failure falls through to the source.
type Service struct {
	source Source
	cache  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewService builds a catalog. cache may be nil to disable caching.
func NewService(source Source, cache *redis.Client, ttl time.Duration, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{source: source, cache: cache, ttl: ttl, logger: logger}
}

func cacheKey(suffix string) string {
	return utils.CatalogCachePrefix + suffix
}

func (s *Service) readCache(ctx context.Context, key string, out interface{}) bool {
	if s.cache == nil {
		return false
	}
	data, err := s.cache.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false
	}
	if err != nil {
		s.logger.Warn("catalog: cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		s.logger.Warn("catalog: dropping corrupt cache entry", zap.String("key", key), zap.Error(err))
		s.cache.Del(ctx, key)
		return false
	}
	return true
}

func (s *Service) writeCache(ctx context.Context, key string, v interface{}) {
	if s.cache == nil || s.ttl <= 0 {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, b, s.ttl).Err(); err != nil {
		s.logger.Warn("catalog: cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// List returns every product that has a usable identifier. Payloads that
// fail normalization are skipped and logged.
func (s *Service) List(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if s.readCache(ctx, cacheKey(listKey), &products) {
		return products, nil
	}

	payloads, err := s.source.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog: list products: %w", err)
	}
	products = make([]models.Product, 0, len(payloads))
	for _, p := range payloads {
		product, err := cart.NormalizeProduct(p)
		if err != nil {
			s.logger.Warn("catalog: skipping product", zap.String("title", p.Title), zap.Error(err))
			continue
		}
		products = append(products, product)
	}

	s.writeCache(ctx, cacheKey(listKey), products)
	return products, nil
}

// Get returns one normalized product by id.
func (s *Service) Get(ctx context.Context, id string) (models.Product, error) {
	var product models.Product
	key := cacheKey("product:" + id)
	if s.readCache(ctx, key, &product) {
		return product, nil
	}

	payload, err := s.source.GetProduct(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return models.Product{}, ErrProductNotFound
		}
		return models.Product{}, fmt.Errorf("catalog: get product %s: %w", id, err)
	}
	product, err = cart.NormalizeProduct(*payload)
	if err != nil {
		return models.Product{}, fmt.Errorf("catalog: product %s: %w", id, err)
	}

	s.writeCache(ctx, key, product)
	return product, nil
}

func isNotFound(err error) bool {
	var se interface{ HTTPStatus() int }
	return errors.As(err, &se) && se.HTTPStatus() == http.StatusNotFound
}
