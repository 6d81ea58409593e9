package translation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Kyz7/console/internal/models"
	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("translation not found")
	ErrConflict = errors.New("translation already exists")
)

// sanitizer strips all markup from stored values.
var sanitizer = bluemonday.StrictPolicy()

const cacheTTL = 10 * time.Minute

func cacheKey(locale string) string {
	return "translations:" + locale
}

// Service persists translations and keeps a per-locale Redis cache in front of
// the flattened map reads. A nil cache client disables caching entirely.
type Service struct {
	db    *gorm.DB
	cache *redis.Client
}

func NewService(db *gorm.DB, cache *redis.Client) *Service {
	return &Service{db: db, cache: cache}
}

func (s *Service) Create(ctx context.Context, locale, key, value string) (*models.Translation, error) {
	var existing models.Translation
	err := s.db.Where("locale = ? AND key = ?", locale, key).First(&existing).Error
	if err == nil {
		return nil, fmt.Errorf("%w: %s/%s", ErrConflict, locale, key)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	t := models.Translation{
		Locale: locale,
		Key:    key,
		Value:  sanitizer.Sanitize(value),
	}
	if err := s.db.Create(&t).Error; err != nil {
		return nil, err
	}

	s.invalidate(ctx, locale)
	return &t, nil
}

func (s *Service) Update(ctx context.Context, id uint, value string) (*models.Translation, error) {
	var t models.Translation
	if err := s.db.First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
		}
		return nil, err
	}

	t.Value = sanitizer.Sanitize(value)
	if err := s.db.Save(&t).Error; err != nil {
		return nil, err
	}

	s.invalidate(ctx, t.Locale)
	return &t, nil
}

func (s *Service) Delete(ctx context.Context, id uint) error {
	var t models.Translation
	if err := s.db.First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: id %d", ErrNotFound, id)
		}
		return err
	}

	if err := s.db.Delete(&t).Error; err != nil {
		return err
	}

	s.invalidate(ctx, t.Locale)
	return nil
}

func (s *Service) List(locale string) ([]models.Translation, error) {
	var out []models.Translation
	q := s.db.Order("locale, key")
	if locale != "" {
		q = q.Where("locale = ?", locale)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// LocaleMap returns the flattened key→value map for a locale, serving from
// Redis when possible. Cache failures degrade to a database read.
func (s *Service) LocaleMap(ctx context.Context, locale string) (map[string]string, error) {
	if s.cache != nil {
		raw, err := s.cache.Get(ctx, cacheKey(locale)).Result()
		if err == nil {
			var cached map[string]string
			if json.Unmarshal([]byte(raw), &cached) == nil {
				return cached, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			log.Printf("⚠️ translation cache read failed for %s: %v", locale, err)
		}
	}

	var rows []models.Translation
	if err := s.db.Where("locale = ?", locale).Find(&rows).Error; err != nil {
		return nil, err
	}

	flat := make(map[string]string, len(rows))
	for _, row := range rows {
		flat[row.Key] = row.Value
	}

	if s.cache != nil {
		if raw, err := json.Marshal(flat); err == nil {
			if err := s.cache.Set(ctx, cacheKey(locale), raw, cacheTTL).Err(); err != nil {
				log.Printf("⚠️ translation cache write failed for %s: %v", locale, err)
			}
		}
	}

	return flat, nil
}

func (s *Service) invalidate(ctx context.Context, locale string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, cacheKey(locale)).Err(); err != nil {
		log.Printf("⚠️ translation cache invalidation failed for %s: %v", locale, err)
	}
}
