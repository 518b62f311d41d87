package repository

import (
	"context"
	"time"

	"github.com/aman-churiwal/shortlink/internal/models"
	"github.com/aman-churiwal/shortlink/internal/storage"
)

type ClickRepository struct {
	db *storage.Postgres
}

func NewClickRepository(db *storage.Postgres) *ClickRepository {
	return &ClickRepository{db: db}
}

// Inserts multiple click events (for batch insertion)
func (r *ClickRepository) CreateBatch(ctx context.Context, events []*models.ClickEvent) error {
	if len(events) == 0 {
		return nil
	}

	return r.db.DB.WithContext(ctx).Create(&events).Error
}

// CountByLink returns the authoritative click count for a link.
func (r *ClickRepository) CountByLink(ctx context.Context, linkID uint) (int64, error) {
	var count int64
	err := r.db.DB.WithContext(ctx).
		Model(&models.ClickEvent{}).
		Where("link_id = ?", linkID).
		Count(&count).Error

	return count, err
}

// GroupCount groups a link's clicks by one column (device_type, browser, os).
func (r *ClickRepository) GroupCount(ctx context.Context, linkID uint, column string) (map[string]int64, error) {
	rows, err := r.db.DB.WithContext(ctx).
		Model(&models.ClickEvent{}).
		Select(column+" as label, COUNT(*) as count").
		Where("link_id = ?", linkID).
		Group(column).
		Rows()

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make(map[string]int64)
	for rows.Next() {
		var label string
		var count int64
		if err := rows.Scan(&label, &count); err != nil {
			return nil, err
		}
		results[label] = count
	}

	return results, rows.Err()
}

// TrendingRow is one ranked entry in a trending query.
type TrendingRow struct {
	Code      string    `json:"code"`
	Clicks    int64     `json:"clicks"`
	LastClick time.Time `json:"last_click"`
}

// Trending ranks non-deleted links by clicks since the cutoff. Ties break by
// most recent click, then code, so pagination stays stable.
func (r *ClickRepository) Trending(ctx context.Context, since time.Time, limit int) ([]TrendingRow, error) {
	rows, err := r.db.DB.WithContext(ctx).
		Model(&models.ClickEvent{}).
		Select("short_links.code as code, COUNT(*) as clicks, MAX(click_events.clicked_at) as last_click").
		Joins("JOIN short_links ON short_links.id = click_events.link_id").
		Where("short_links.is_deleted = ? AND click_events.clicked_at >= ?", false, since).
		Group("short_links.code").
		Order("clicks DESC, last_click DESC, code ASC").
		Limit(limit).
		Rows()

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []TrendingRow
	for rows.Next() {
		var row TrendingRow
		if err := rows.Scan(&row.Code, &row.Clicks, &row.LastClick); err != nil {
			return nil, err
		}
		results = append(results, row)
	}

	return results, rows.Err()
}
