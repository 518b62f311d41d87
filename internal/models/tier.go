package models

// Permission names a feature a tier may use.
type Permission string

const (
	PermCustomCode      Permission = "custom_code"
	PermExpiration      Permission = "expiration"
	PermPasswordProtect Permission = "password_protect"
	PermBulkCreate      Permission = "bulk_create"
)

// TierCapabilities describes what a tier is allowed to do and how much it
// may consume. Unlimited tiers skip quota comparison but still count usage.
type TierCapabilities struct {
	Name            string
	CustomCode      bool
	Expiration      bool
	PasswordProtect bool
	BulkCreate      bool
	DailyLimit      int64
	MonthlyLimit    int64
	Unlimited       bool
}

const (
	MinTier       = 1
	MaxTier       = 4
	UnlimitedTier = 4
)

// One capability row per tier, looked up once per request instead of
// scattering tier-number comparisons through the handlers.
var tierTable = map[int]TierCapabilities{
	1: {Name: "free", DailyLimit: 100, MonthlyLimit: 1000},
	2: {Name: "basic", CustomCode: true, Expiration: true, DailyLimit: 1000, MonthlyLimit: 10000},
	3: {Name: "pro", CustomCode: true, Expiration: true, PasswordProtect: true, BulkCreate: true, DailyLimit: 10000, MonthlyLimit: 100000},
	4: {Name: "enterprise", CustomCode: true, Expiration: true, PasswordProtect: true, BulkCreate: true, Unlimited: true},
}

// CapabilitiesForTier returns the capability row for a tier. Out-of-range
// tiers fall back to tier 1.
func CapabilitiesForTier(tier int) TierCapabilities {
	if caps, ok := tierTable[tier]; ok {
		return caps
	}
	return tierTable[MinTier]
}

// Has reports whether the capability row grants the permission.
func (c TierCapabilities) Has(perm Permission) bool {
	switch perm {
	case PermCustomCode:
		return c.CustomCode
	case PermExpiration:
		return c.Expiration
	case PermPasswordProtect:
		return c.PasswordProtect
	case PermBulkCreate:
		return c.BulkCreate
	default:
		return false
	}
}
