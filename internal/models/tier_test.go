package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTierCapabilities(t *testing.T) {
	tests := []struct {
		tier      int
		perm      Permission
		wantGrant bool
	}{
		{1, PermCustomCode, false},
		{1, PermExpiration, false},
		{1, PermPasswordProtect, false},
		{1, PermBulkCreate, false},
		{2, PermCustomCode, true},
		{2, PermExpiration, true},
		{2, PermPasswordProtect, false},
		{2, PermBulkCreate, false},
		{3, PermPasswordProtect, true},
		{3, PermBulkCreate, true},
		{4, PermCustomCode, true},
		{4, PermBulkCreate, true},
	}

	for _, tt := range tests {
		caps := CapabilitiesForTier(tt.tier)
		assert.Equal(t, tt.wantGrant, caps.Has(tt.perm), "tier %d perm %s", tt.tier, tt.perm)
	}
}

func TestOnlyTopTierUnlimited(t *testing.T) {
	for tier := MinTier; tier <= MaxTier; tier++ {
		caps := CapabilitiesForTier(tier)
		assert.Equal(t, tier == UnlimitedTier, caps.Unlimited, "tier %d", tier)
		if !caps.Unlimited {
			assert.Positive(t, caps.DailyLimit, "tier %d", tier)
			assert.Positive(t, caps.MonthlyLimit, "tier %d", tier)
		}
	}
}

func TestUnknownTierFallsBack(t *testing.T) {
	assert.Equal(t, CapabilitiesForTier(1), CapabilitiesForTier(0))
	assert.Equal(t, CapabilitiesForTier(1), CapabilitiesForTier(99))
}

func TestUnknownPermissionDenied(t *testing.T) {
	caps := CapabilitiesForTier(4)
	assert.False(t, caps.Has(Permission("teleport")))
}

func TestEffectiveLimits(t *testing.T) {
	key := APIKey{Tier: 1}
	caps := CapabilitiesForTier(1)
	assert.Equal(t, caps.DailyLimit, key.EffectiveDailyLimit())
	assert.Equal(t, caps.MonthlyLimit, key.EffectiveMonthlyLimit())

	key.DailyLimit = 42
	key.MonthlyLimit = 420
	assert.Equal(t, int64(42), key.EffectiveDailyLimit())
	assert.Equal(t, int64(420), key.EffectiveMonthlyLimit())
}
