package mappers

import (
	"github.com/postforge/postforge/internal/domain/plan"
	"github.com/postforge/postforge/internal/infrastructure/persistence/models"
)

func UserPlanToEntity(model *models.UserPlanModel) *plan.UserPlan {
	if model == nil {
		return nil
	}
	return plan.ReconstructUserPlan(model.UserID, plan.Tier(model.Plan), model.PremiumSuspended, model.UpdatedAt)
}

func UserPlanToModel(entity *plan.UserPlan) *models.UserPlanModel {
	return &models.UserPlanModel{
		UserID:           entity.UserID(),
		Plan:             entity.Tier().String(),
		PremiumSuspended: entity.PremiumSuspended(),
		UpdatedAt:        entity.UpdatedAt(),
	}
}
