// Package access is the admission gate for metered operations: key lookup,
// tier permission check, then an atomic quota spend.
package access

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aman-churiwal/shortlink/internal/errs"
	"github.com/aman-churiwal/shortlink/internal/models"
	"github.com/aman-churiwal/shortlink/internal/quota"
	"github.com/aman-churiwal/shortlink/internal/storage"
	"github.com/google/uuid"
)

const cacheTTL = 5 * time.Minute

// AuthContext is the admission result handed to handlers.
type AuthContext struct {
	Key       *models.APIKey
	Caps      models.TierCapabilities
	Remaining quota.Remaining
}

type keySource interface {
	FindByHash(ctx context.Context, hash string) (*models.APIKey, error)
	UpdateLastUsed(ctx context.Context, id uuid.UUID) error
}

type spender interface {
	CheckAndSpend(ctx context.Context, keyID uuid.UUID, cost int64) (quota.Remaining, error)
}

type Controller struct {
	keys  keySource
	quota spender
	redis *storage.RedisClient // optional lookup cache
}

func NewController(keys keySource, tracker spender, redis *storage.RedisClient) *Controller {
	return &Controller{
		keys:  keys,
		quota: tracker,
		redis: redis,
	}
}

// Admit authenticates the raw key, verifies the tier grants perm (when one
// is required), and spends cost units of quota. The spend is not refunded
// if the caller's operation fails downstream.
func (c *Controller) Admit(ctx context.Context, rawKey string, perm models.Permission, cost int64) (*AuthContext, error) {
	const op = "access.Admit"

	rawKey = strings.TrimSpace(rawKey)
	if rawKey == "" {
		return nil, errs.E(op, errs.Unauthorized, errors.New("missing API key"))
	}

	key, err := c.lookup(ctx, HashKey(rawKey))
	if err != nil {
		return nil, errs.E(op, errs.Internal, err)
	}
	if key == nil || !key.IsActive {
		return nil, errs.E(op, errs.Unauthorized, errors.New("invalid API key"))
	}

	caps := models.CapabilitiesForTier(key.Tier)
	if perm != "" && !caps.Has(perm) {
		return nil, errs.Ef(op, errs.PermissionDenied,
			"tier %d (%s) does not allow %s", key.Tier, caps.Name, perm)
	}

	remaining, err := c.quota.CheckAndSpend(ctx, key.ID, cost)
	if err != nil {
		return nil, err
	}

	// Update asynchronously - don't block the request
	go c.keys.UpdateLastUsed(context.WithoutCancel(ctx), key.ID)

	return &AuthContext{Key: key, Caps: caps, Remaining: remaining}, nil
}

// lookup checks the redis cache before hitting the database. Cached entries
// carry identity and permissions only; quota counters are always read under
// lock by the tracker.
func (c *Controller) lookup(ctx context.Context, hash string) (*models.APIKey, error) {
	cacheKey := fmt.Sprintf("apikey:cache:%s", hash)

	if c.redis != nil {
		if cached, err := c.redis.Get(ctx, cacheKey); err == nil && cached != "" {
			var key models.APIKey
			if err := json.Unmarshal([]byte(cached), &key); err == nil {
				return &key, nil
			}
		}
	}

	key, err := c.keys.FindByHash(ctx, hash)
	if err != nil {
		return nil, err
	}
	if key == nil {
		return nil, nil
	}

	if c.redis != nil {
		if data, err := json.Marshal(key); err == nil {
			c.redis.Set(ctx, cacheKey, data, cacheTTL)
		}
	}

	return key, nil
}

// HashKey returns the sha256 hex digest stored in place of the plaintext key.
func HashKey(rawKey string) string {
	hash := sha256.Sum256([]byte(rawKey))
	return hex.EncodeToString(hash[:])
}

// InvalidateCache drops a cached key entry after tier or state changes.
func (c *Controller) InvalidateCache(ctx context.Context, keyHash string) {
	if c.redis == nil {
		return
	}
	c.redis.Del(ctx, fmt.Sprintf("apikey:cache:%s", keyHash))
}
