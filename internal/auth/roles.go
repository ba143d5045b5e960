package auth

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/nuvix-market/nuvix-suite/internal/config"
	"github.com/nuvix-market/nuvix-suite/internal/domain"
	apperrors "github.com/nuvix-market/nuvix-suite/pkg/util"
)

// TierEvaluator maps guild role ids to permission tiers. It is the only
// place that decides what an actor may do.
type TierEvaluator struct {
	roleTiers map[string]domain.Tier
}

// NewTierEvaluator builds an evaluator from the configured role ids.
// Unconfigured roles are skipped.
func NewTierEvaluator(cfg config.RolesConfig) *TierEvaluator {
	e := &TierEvaluator{roleTiers: map[string]domain.Tier{}}
	for roleID, tier := range map[string]domain.Tier{
		cfg.TrialSupport: domain.TierTrialSupport,
		cfg.Support:      domain.TierSupport,
		cfg.Staff:        domain.TierStaff,
		cfg.HighStaff:    domain.TierHighStaff,
		cfg.Admin:        domain.TierAdmin,
		cfg.Owner:        domain.TierOwner,
	} {
		if roleID == "" {
			continue
		}
		if tier > e.roleTiers[roleID] {
			e.roleTiers[roleID] = tier
		}
	}
	return e
}

// TierOf returns the highest tier granted by roleIDs.
func (e *TierEvaluator) TierOf(roleIDs []string) domain.Tier {
	best := domain.TierNone
	for _, id := range roleIDs {
		if tier, ok := e.roleTiers[id]; ok && tier > best {
			best = tier
		}
	}
	return best
}

// Allows reports whether roleIDs reach required.
func (e *TierEvaluator) Allows(roleIDs []string, required domain.Tier) bool {
	return e.TierOf(roleIDs).AtLeast(required)
}

// Require returns a permission error naming the tier when roleIDs fall short.
func (e *TierEvaluator) Require(roleIDs []string, required domain.Tier) error {
	if e.Allows(roleIDs, required) {
		return nil
	}
	return DeniedError(required)
}

// RoleIDs lists the configured role ids of tier and above, lowest tier first.
func (e *TierEvaluator) RoleIDs(min domain.Tier) []string {
	var out []string
	for tier := min; tier <= domain.TierOwner; tier++ {
		for id, t := range e.roleTiers {
			if t == tier {
				out = append(out, id)
			}
		}
	}
	return out
}

// DeniedError is the permission failure shown to chat users.
func DeniedError(required domain.Tier) error {
	return apperrors.NewPermissionDenied(fmt.Sprintf("❌ You don’t have permission (%s).", required.Requirement()))
}

// RequireTier ensures the API principal holds at least required.
func RequireTier(required domain.Tier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !principal.Tier.AtLeast(required) {
			return apperrors.NewPermissionDenied(fmt.Sprintf("requires %s", required.Requirement()))
		}
		return c.Next()
	}
}
