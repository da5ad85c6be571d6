package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"compas/internal/models"
	"compas/internal/repositories/cache"
)

var (
	ErrTariffNotFound = errors.New("tariff entry not found")
)

// TariffRepository owns the persisted fare table. Reads are served from
// the cache when possible; every write invalidates it.
type TariffRepository interface {
	GetAll(ctx context.Context) ([]models.TariffEntry, error)
	GetByID(ctx context.Context, id uint) (*models.TariffEntry, error)
	Upsert(ctx context.Context, entry *models.TariffEntry) error
	Delete(ctx context.Context, id uint) error
}

type tariffRepository struct {
	db    *gorm.DB
	cache *cache.CacheService
}

func NewTariffRepository(db *gorm.DB, cacheService *cache.CacheService) TariffRepository {
	return &tariffRepository{db: db, cache: cacheService}
}

func (r *tariffRepository) GetAll(ctx context.Context) ([]models.TariffEntry, error) {
	if r.cache != nil {
		if entries, found, err := r.cache.GetTariffs(ctx); err == nil && found {
			return entries, nil
		}
	}

	var entries []models.TariffEntry
	if err := r.db.WithContext(ctx).Order("kind, num_courses").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to load tariff table: %w", err)
	}

	if r.cache != nil {
		_ = r.cache.CacheTariffs(ctx, entries)
	}
	return entries, nil
}

func (r *tariffRepository) GetByID(ctx context.Context, id uint) (*models.TariffEntry, error) {
	var entry models.TariffEntry
	if err := r.db.WithContext(ctx).First(&entry, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTariffNotFound
		}
		return nil, fmt.Errorf("failed to get tariff entry: %w", err)
	}
	return &entry, nil
}

func (r *tariffRepository) Upsert(ctx context.Context, entry *models.TariffEntry) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// One row per kind for flat and late fee tiers, one per count for
		// course tiers, so an upsert replaces rather than accumulates.
		query := tx.Where("kind = ?", entry.Kind)
		if entry.Kind == models.TariffCourseCount {
			query = query.Where("num_courses = ?", entry.NumCourses)
		}

		var existing models.TariffEntry
		err := query.First(&existing).Error
		switch {
		case err == nil:
			existing.Fare = entry.Fare
			existing.NumCourses = entry.NumCourses
			if err := tx.Save(&existing).Error; err != nil {
				return err
			}
			*entry = existing
			return nil
		case errors.Is(err, gorm.ErrRecordNotFound):
			return tx.Create(entry).Error
		default:
			return err
		}
	})
	if err != nil {
		return fmt.Errorf("failed to upsert tariff entry: %w", err)
	}

	if r.cache != nil {
		_ = r.cache.InvalidateTariffs(ctx)
	}
	return nil
}

func (r *tariffRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.TariffEntry{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete tariff entry: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTariffNotFound
	}

	if r.cache != nil {
		_ = r.cache.InvalidateTariffs(ctx)
	}
	return nil
}
