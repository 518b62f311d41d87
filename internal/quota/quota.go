// Package quota enforces per-key daily and monthly usage limits. The
// reset-then-check-then-increment sequence runs inside one transaction
// holding a row lock on the key, so spends are linearizable per key even
// with multiple service instances sharing the database.
package quota

import (
	"context"
	"errors"
	"time"

	"github.com/aman-churiwal/shortlink/internal/errs"
	"github.com/aman-churiwal/shortlink/internal/models"
	"github.com/aman-churiwal/shortlink/internal/storage"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	dailyLayout   = "2006-01-02"
	monthlyLayout = "2006-01"
)

// Remaining reports quota headroom after a successful spend.
// -1 means unlimited.
type Remaining struct {
	Daily   int64 `json:"daily_remaining"`
	Monthly int64 `json:"monthly_remaining"`
}

type Tracker struct {
	db  *storage.Postgres
	now func() time.Time
}

func NewTracker(db *storage.Postgres) *Tracker {
	return &Tracker{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// CheckAndSpend atomically resets expired windows, checks headroom, and
// charges cost units against both windows. Either both counters advance or
// neither does.
func (t *Tracker) CheckAndSpend(ctx context.Context, keyID uuid.UUID, cost int64) (Remaining, error) {
	const op = "quota.CheckAndSpend"

	var remaining Remaining
	err := t.db.Transaction(func(tx *gorm.DB) error {
		var key models.APIKey
		err := tx.WithContext(ctx).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", keyID).
			First(&key).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return errs.E(op, errs.Unauthorized, errors.New("api key not found"))
			}
			return errs.E(op, errs.Internal, err)
		}

		spent, err := Spend(&key, cost, t.now())
		if err != nil {
			return err
		}
		remaining = spent

		return tx.WithContext(ctx).
			Model(&models.APIKey{}).
			Where("id = ?", key.ID).
			Updates(map[string]interface{}{
				"usage_today":        key.UsageToday,
				"usage_month":        key.UsageMonth,
				"last_reset_daily":   key.LastResetDaily,
				"last_reset_monthly": key.LastResetMonthly,
			}).Error
	})

	if err != nil {
		if errs.KindOf(err) != errs.Unknown {
			return Remaining{}, err
		}
		return Remaining{}, errs.E(op, errs.Internal, err)
	}

	return remaining, nil
}

// Spend applies window resets and the check-and-increment to the key in
// memory. The caller is responsible for persisting the mutated counters
// under the same lock that loaded them.
func Spend(key *models.APIKey, cost int64, now time.Time) (Remaining, error) {
	const op = "quota.Spend"

	if cost < 0 {
		return Remaining{}, errs.Ef(op, errs.Internal, "negative cost %d", cost)
	}

	today := now.Format(dailyLayout)
	month := now.Format(monthlyLayout)

	// Reset before comparing, so a stale counter can never deny a fresh
	// window or leak usage across the boundary.
	if key.LastResetDaily != today {
		key.UsageToday = 0
		key.LastResetDaily = today
	}
	if key.LastResetMonthly != month {
		key.UsageMonth = 0
		key.LastResetMonthly = month
	}

	caps := models.CapabilitiesForTier(key.Tier)
	if caps.Unlimited {
		// Unlimited tiers still advance counters for observability.
		key.UsageToday += cost
		key.UsageMonth += cost
		return Remaining{Daily: -1, Monthly: -1}, nil
	}

	dailyLimit := key.EffectiveDailyLimit()
	monthlyLimit := key.EffectiveMonthlyLimit()

	if key.UsageToday+cost > dailyLimit {
		return Remaining{}, errs.Ef(op, errs.RateLimitExceeded,
			"daily limit of %d reached", dailyLimit)
	}
	if key.UsageMonth+cost > monthlyLimit {
		return Remaining{}, errs.Ef(op, errs.RateLimitExceeded,
			"monthly limit of %d reached", monthlyLimit)
	}

	key.UsageToday += cost
	key.UsageMonth += cost

	return Remaining{
		Daily:   dailyLimit - key.UsageToday,
		Monthly: monthlyLimit - key.UsageMonth,
	}, nil
}
