package access

import (
	"context"
	"errors"
	"testing"

	"github.com/aman-churiwal/shortlink/internal/errs"
	"github.com/aman-churiwal/shortlink/internal/models"
	"github.com/aman-churiwal/shortlink/internal/quota"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockKeySource struct {
	byHash map[string]*models.APIKey
	err    error
}

func (m *mockKeySource) FindByHash(ctx context.Context, hash string) (*models.APIKey, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.byHash[hash], nil
}

func (m *mockKeySource) UpdateLastUsed(ctx context.Context, id uuid.UUID) error {
	return nil
}

type mockSpender struct {
	remaining quota.Remaining
	err       error
	spent     []int64
}

func (m *mockSpender) CheckAndSpend(ctx context.Context, keyID uuid.UUID, cost int64) (quota.Remaining, error) {
	if m.err != nil {
		return quota.Remaining{}, m.err
	}
	m.spent = append(m.spent, cost)
	return m.remaining, nil
}

func registeredKey(tier int, raw string) (*mockKeySource, *models.APIKey) {
	key := &models.APIKey{
		ID:       uuid.New(),
		KeyHash:  HashKey(raw),
		Tier:     tier,
		IsActive: true,
	}
	return &mockKeySource{byHash: map[string]*models.APIKey{key.KeyHash: key}}, key
}

func TestAdmitSuccess(t *testing.T) {
	keys, key := registeredKey(1, "sl_valid")
	spender := &mockSpender{remaining: quota.Remaining{Daily: 99, Monthly: 999}}
	c := NewController(keys, spender, nil)

	auth, err := c.Admit(context.Background(), "sl_valid", "", 1)
	require.NoError(t, err)

	assert.Equal(t, key.ID, auth.Key.ID)
	assert.Equal(t, int64(99), auth.Remaining.Daily)
	assert.Equal(t, []int64{1}, spender.spent)
}

func TestAdmitMissingKey(t *testing.T) {
	c := NewController(&mockKeySource{}, &mockSpender{}, nil)

	for _, raw := range []string{"", "   "} {
		_, err := c.Admit(context.Background(), raw, "", 1)
		require.Error(t, err)
		assert.Equal(t, errs.Unauthorized, errs.KindOf(err))
	}
}

func TestAdmitUnknownKey(t *testing.T) {
	c := NewController(&mockKeySource{byHash: map[string]*models.APIKey{}}, &mockSpender{}, nil)

	_, err := c.Admit(context.Background(), "sl_unknown", "", 1)
	require.Error(t, err)
	assert.Equal(t, errs.Unauthorized, errs.KindOf(err))
}

func TestAdmitInactiveKey(t *testing.T) {
	keys, key := registeredKey(2, "sl_revoked")
	key.IsActive = false
	spender := &mockSpender{}
	c := NewController(keys, spender, nil)

	_, err := c.Admit(context.Background(), "sl_revoked", "", 1)
	require.Error(t, err)
	assert.Equal(t, errs.Unauthorized, errs.KindOf(err))
	assert.Empty(t, spender.spent, "no quota spent for a revoked key")
}

func TestAdmitPermissionDenied(t *testing.T) {
	// Tier 1 cannot use custom codes; tier 2 can.
	keys, _ := registeredKey(1, "sl_free")
	spender := &mockSpender{}
	c := NewController(keys, spender, nil)

	_, err := c.Admit(context.Background(), "sl_free", models.PermCustomCode, 1)
	require.Error(t, err)
	assert.Equal(t, errs.PermissionDenied, errs.KindOf(err))
	assert.Empty(t, spender.spent, "permission check precedes the spend")

	keys2, _ := registeredKey(2, "sl_basic")
	c2 := NewController(keys2, spender, nil)
	_, err = c2.Admit(context.Background(), "sl_basic", models.PermCustomCode, 1)
	require.NoError(t, err)
}

func TestAdmitBulkPermissionByTier(t *testing.T) {
	tests := []struct {
		tier    int
		allowed bool
	}{
		{1, false},
		{2, false},
		{3, true},
		{4, true},
	}

	for _, tt := range tests {
		keys, _ := registeredKey(tt.tier, "sl_key")
		c := NewController(keys, &mockSpender{}, nil)

		_, err := c.Admit(context.Background(), "sl_key", models.PermBulkCreate, 1)
		if tt.allowed {
			assert.NoError(t, err, "tier %d", tt.tier)
		} else {
			assert.Equal(t, errs.PermissionDenied, errs.KindOf(err), "tier %d", tt.tier)
		}
	}
}

func TestAdmitQuotaExhausted(t *testing.T) {
	keys, _ := registeredKey(1, "sl_spent")
	spender := &mockSpender{err: errs.Ef("quota.Spend", errs.RateLimitExceeded, "daily limit of 100 reached")}
	c := NewController(keys, spender, nil)

	_, err := c.Admit(context.Background(), "sl_spent", "", 1)
	require.Error(t, err)
	assert.Equal(t, errs.RateLimitExceeded, errs.KindOf(err))
}

func TestAdmitPassesCostThrough(t *testing.T) {
	keys, _ := registeredKey(3, "sl_bulk")
	spender := &mockSpender{}
	c := NewController(keys, spender, nil)

	_, err := c.Admit(context.Background(), "sl_bulk", models.PermBulkCreate, 42)
	require.NoError(t, err)
	assert.Equal(t, []int64{42}, spender.spent)
}

func TestAdmitLookupFailure(t *testing.T) {
	c := NewController(&mockKeySource{err: errors.New("db down")}, &mockSpender{}, nil)

	_, err := c.Admit(context.Background(), "sl_any", "", 1)
	require.Error(t, err)
	assert.Equal(t, errs.Internal, errs.KindOf(err))
}

func TestHashKeyDeterministic(t *testing.T) {
	assert.Equal(t, HashKey("sl_abc"), HashKey("sl_abc"))
	assert.NotEqual(t, HashKey("sl_abc"), HashKey("sl_abd"))
	assert.Len(t, HashKey("sl_abc"), 64)
}
