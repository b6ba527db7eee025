package plan

import (
	"fmt"
	"time"
)

// UserPlan is the plan tier currently assigned to a user. PremiumSuspended is
// set while the paid subscription is paused; the tier is kept so entitlement
// comes back unchanged when billing resumes.
type UserPlan struct {
	userID           uint
	tier             Tier
	premiumSuspended bool
	updatedAt        time.Time
}

func NewUserPlan(userID uint, tier Tier, now time.Time) (*UserPlan, error) {
	if userID == 0 {
		return nil, fmt.Errorf("user ID is required")
	}
	if tier == "" {
		return nil, fmt.Errorf("%w: empty tier", ErrUnknownTier)
	}
	return &UserPlan{userID: userID, tier: tier, updatedAt: now}, nil
}

func ReconstructUserPlan(userID uint, tier Tier, suspended bool, updatedAt time.Time) *UserPlan {
	return &UserPlan{
		userID:           userID,
		tier:             tier,
		premiumSuspended: suspended,
		updatedAt:        updatedAt,
	}
}

func (u *UserPlan) UserID() uint           { return u.userID }
func (u *UserPlan) Tier() Tier             { return u.tier }
func (u *UserPlan) PremiumSuspended() bool { return u.premiumSuspended }
func (u *UserPlan) UpdatedAt() time.Time   { return u.updatedAt }

// Activate grants tier and lifts any suspension.
func (u *UserPlan) Activate(tier Tier, now time.Time) {
	u.tier = tier
	u.premiumSuspended = false
	u.updatedAt = now
}

// Suspend keeps the tier but withholds its entitlement.
func (u *UserPlan) Suspend(now time.Time) {
	u.premiumSuspended = true
	u.updatedAt = now
}

// Downgrade moves the user to the default tier.
func (u *UserPlan) Downgrade(defaultTier Tier, now time.Time) {
	u.tier = defaultTier
	u.premiumSuspended = false
	u.updatedAt = now
}
