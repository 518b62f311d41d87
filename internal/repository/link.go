package repository

import (
	"context"

	"github.com/aman-churiwal/shortlink/internal/models"
	"github.com/aman-churiwal/shortlink/internal/storage"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LinkRepository struct {
	db *storage.Postgres
}

func NewLinkRepository(db *storage.Postgres) *LinkRepository {
	return &LinkRepository{db: db}
}

func (r *LinkRepository) Create(ctx context.Context, link *models.ShortLink) error {
	return r.db.DB.WithContext(ctx).Create(link).Error
}

// FindByCode returns the non-deleted link for a code, or nil when absent.
// Soft-deleted rows keep the code reserved but are invisible here.
func (r *LinkRepository) FindByCode(ctx context.Context, code string) (*models.ShortLink, error) {
	var link models.ShortLink
	err := r.db.DB.WithContext(ctx).
		Where("code = ? AND is_deleted = ?", code, false).
		First(&link).Error

	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}

	return &link, err
}

// CodeExists reports whether a code is taken. Deleted rows count too: a
// soft-deleted link keeps its code reserved while the record exists.
func (r *LinkRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.DB.WithContext(ctx).
		Model(&models.ShortLink{}).
		Where("code = ?", code).
		Count(&count).Error

	return count > 0, err
}

// FindByCodes returns non-deleted links for the given codes. Unknown codes
// are simply absent from the result.
func (r *LinkRepository) FindByCodes(ctx context.Context, codes []string) ([]models.ShortLink, error) {
	var links []models.ShortLink
	err := r.db.DB.WithContext(ctx).
		Where("code IN ? AND is_deleted = ?", codes, false).
		Find(&links).Error

	return links, err
}

func (r *LinkRepository) ListByOwner(ctx context.Context, keyID uuid.UUID, limit, offset int) ([]models.ShortLink, error) {
	var links []models.ShortLink
	err := r.db.DB.WithContext(ctx).
		Where("api_key_id = ? AND is_deleted = ?", keyID, false).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&links).Error

	return links, err
}

func (r *LinkRepository) Update(ctx context.Context, id uint, updates map[string]interface{}) error {
	return r.db.DB.WithContext(ctx).
		Model(&models.ShortLink{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// SoftDelete marks the link deleted. The row stays so the code cannot be
// reused and click history survives.
func (r *LinkRepository) SoftDelete(ctx context.Context, id uint) error {
	return r.db.DB.WithContext(ctx).
		Model(&models.ShortLink{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_deleted": true,
			"is_active":  false,
		}).Error
}

// IncrementClicks bumps the cached counter with a single atomic UPDATE so
// concurrent workers never lose increments.
func (r *LinkRepository) IncrementClicks(ctx context.Context, id uint, n int64) error {
	return r.db.DB.WithContext(ctx).
		Model(&models.ShortLink{}).
		Where("id = ?", id).
		Update("click_count", gorm.Expr("click_count + ?", n)).Error
}
