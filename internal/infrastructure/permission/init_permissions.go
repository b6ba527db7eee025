package permission

import (
	"fmt"

	"github.com/postforge/postforge/internal/shared/authorization"
	"github.com/postforge/postforge/internal/shared/logger"
)

const (
	ResourceOffers = "offers"

	ActionRead  = "read"
	ActionWrite = "write"

	RoleSupport = string(authorization.RoleSupport)
)

// InitOfferPermissions seeds the offer management policies. Existing
// policies are left untouched.
func InitOfferPermissions(enforcer *Enforcer, log logger.Interface) error {
	policies := [][]string{
		{authorization.RoleAdmin.String(), ResourceOffers, ActionRead},
		{authorization.RoleAdmin.String(), ResourceOffers, ActionWrite},

		{RoleSupport, ResourceOffers, ActionRead},
	}

	for _, policy := range policies {
		if err := enforcer.AddPolicy(policy[0], policy[1], policy[2]); err != nil {
			log.Errorw("failed to add offer permission policy",
				"error", err,
				"role", policy[0],
				"resource", policy[1],
				"action", policy[2])
			return fmt.Errorf("failed to add policy [%s, %s, %s]: %w",
				policy[0], policy[1], policy[2], err)
		}
	}

	log.Infow("offer permissions initialized successfully")
	return nil
}

// AssignAdmins grants the admin role to the configured user ids.
func AssignAdmins(enforcer *Enforcer, userIDs []uint, log logger.Interface) error {
	for _, id := range userIDs {
		if err := enforcer.AddRoleForUser(id, authorization.RoleAdmin.String()); err != nil {
			return err
		}
	}

	if len(userIDs) > 0 {
		log.Infow("admin roles assigned", "count", len(userIDs))
	}
	return nil
}

// InitAllPermissions initializes all permission policies
func InitAllPermissions(enforcer *Enforcer, adminUserIDs []uint, log logger.Interface) error {
	if err := InitOfferPermissions(enforcer, log); err != nil {
		return err
	}

	if err := AssignAdmins(enforcer, adminUserIDs, log); err != nil {
		return err
	}

	log.Infow("all permissions initialized successfully")
	return nil
}
