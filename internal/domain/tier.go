package domain

import "strings"

// Tier is an ordered staff permission level.
type Tier int

const (
	TierNone Tier = iota
	TierTrialSupport
	TierSupport
	TierStaff
	TierHighStaff
	TierAdmin
	TierOwner
)

var tierNames = map[Tier]string{
	TierNone:         "None",
	TierTrialSupport: "Trial Support",
	TierSupport:      "Support",
	TierStaff:        "Staff",
	TierHighStaff:    "High Staff",
	TierAdmin:        "Admin",
	TierOwner:        "Owner",
}

func (t Tier) String() string {
	if name, ok := tierNames[t]; ok {
		return name
	}
	return "Unknown"
}

// Requirement renders the tier the way permission errors name it, e.g. "Admin+".
func (t Tier) Requirement() string {
	if t == TierOwner {
		return "Owner only"
	}
	return t.String() + "+"
}

// AtLeast reports whether t satisfies required.
func (t Tier) AtLeast(required Tier) bool {
	return t >= required
}

// ParseTier accepts names like "admin", "high_staff" or "Trial Support".
func ParseTier(s string) (Tier, bool) {
	norm := strings.ToLower(strings.NewReplacer("-", "", "_", "", " ", "").Replace(s))
	for tier, name := range tierNames {
		if strings.ToLower(strings.ReplaceAll(name, " ", "")) == norm {
			return tier, true
		}
	}
	return TierNone, false
}
