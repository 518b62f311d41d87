package service

import (
	"context"
	"sort"
	"time"

	"github.com/aman-churiwal/shortlink/internal/errs"
	"github.com/aman-churiwal/shortlink/internal/repository"
)

// Trending periods.
const (
	PeriodDay   = "day"
	PeriodWeek  = "week"
	PeriodMonth = "month"
	PeriodAll   = "all"
)

// Breakdown groups a link's clicks by derived category.
type Breakdown struct {
	Devices          map[string]int64 `json:"devices"`
	Browsers         map[string]int64 `json:"browsers"`
	OperatingSystems map[string]int64 `json:"operating_systems"`
}

// LinkStats is a per-link summary for stats and batch-stats responses.
type LinkStats struct {
	Code        string     `json:"code"`
	OriginalURL string     `json:"original_url"`
	Clicks      int64      `json:"clicks"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

// AnalyticsService computes breakdowns and trending rankings on demand from
// stored click events.
type AnalyticsService struct {
	links  *repository.LinkRepository
	clicks *repository.ClickRepository
	now    func() time.Time
}

func NewAnalyticsService(links *repository.LinkRepository, clicks *repository.ClickRepository) *AnalyticsService {
	return &AnalyticsService{
		links:  links,
		clicks: clicks,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// BreakdownFor groups the link's stored clicks by device, browser and OS.
func (s *AnalyticsService) BreakdownFor(ctx context.Context, linkID uint) (*Breakdown, error) {
	const op = "analytics.Breakdown"

	devices, err := s.clicks.GroupCount(ctx, linkID, "device_type")
	if err != nil {
		return nil, errs.E(op, errs.Internal, err)
	}

	browsers, err := s.clicks.GroupCount(ctx, linkID, "browser")
	if err != nil {
		return nil, errs.E(op, errs.Internal, err)
	}

	oses, err := s.clicks.GroupCount(ctx, linkID, "os")
	if err != nil {
		return nil, errs.E(op, errs.Internal, err)
	}

	return &Breakdown{
		Devices:          devices,
		Browsers:         browsers,
		OperatingSystems: oses,
	}, nil
}

// TotalClicks returns the authoritative event count, not the cached counter.
func (s *AnalyticsService) TotalClicks(ctx context.Context, linkID uint) (int64, error) {
	const op = "analytics.TotalClicks"

	count, err := s.clicks.CountByLink(ctx, linkID)
	if err != nil {
		return 0, errs.E(op, errs.Internal, err)
	}
	return count, nil
}

// Trending ranks links by clicks within the period window.
func (s *AnalyticsService) Trending(ctx context.Context, period string, limit int) ([]repository.TrendingRow, error) {
	const op = "analytics.Trending"

	since, err := PeriodStart(period, s.now())
	if err != nil {
		return nil, err
	}

	if limit <= 0 || limit > 100 {
		limit = 10
	}

	rows, err := s.clicks.Trending(ctx, since, limit)
	if err != nil {
		return nil, errs.E(op, errs.Internal, err)
	}

	sortTrending(rows)
	return rows, nil
}

// sortTrending pins the ranking: clicks descending, most recent click
// descending, code ascending. The query orders the same way; sorting again
// keeps the order total even if the store leaves equal keys unordered.
func sortTrending(rows []repository.TrendingRow) {
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Clicks != b.Clicks {
			return a.Clicks > b.Clicks
		}
		if !a.LastClick.Equal(b.LastClick) {
			return a.LastClick.After(b.LastClick)
		}
		return a.Code < b.Code
	})
}

// BatchStats summarizes each known code in one pass. Unknown codes are
// omitted rather than failing the batch.
func (s *AnalyticsService) BatchStats(ctx context.Context, codes []string) ([]LinkStats, error) {
	const op = "analytics.BatchStats"

	links, err := s.links.FindByCodes(ctx, codes)
	if err != nil {
		return nil, errs.E(op, errs.Internal, err)
	}

	now := s.now()
	stats := make([]LinkStats, 0, len(links))
	for _, link := range links {
		stats = append(stats, LinkStats{
			Code:        link.Code,
			OriginalURL: link.OriginalURL,
			Clicks:      link.ClickCount,
			Status:      link.Status(now).String(),
			CreatedAt:   link.CreatedAt,
			ExpiresAt:   link.ExpiresAt,
		})
	}

	return stats, nil
}

// PeriodStart maps a trending period to its window cutoff. "all" yields the
// zero time, matching every event.
func PeriodStart(period string, now time.Time) (time.Time, error) {
	const op = "analytics.PeriodStart"

	switch period {
	case PeriodDay:
		return now.Add(-24 * time.Hour), nil
	case PeriodWeek:
		return now.AddDate(0, 0, -7), nil
	case PeriodMonth:
		return now.AddDate(0, -1, 0), nil
	case PeriodAll:
		return time.Time{}, nil
	default:
		return time.Time{}, errs.Ef(op, errs.Validation,
			"period must be one of day, week, month, all; got %q", period)
	}
}
