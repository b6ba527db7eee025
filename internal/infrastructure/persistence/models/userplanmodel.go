package models

import "time"

// UserPlanModel stores the plan tier assigned to a user.
type UserPlanModel struct {
	UserID           uint   `gorm:"primaryKey;autoIncrement:false"`
	Plan             string `gorm:"type:varchar(32);not null"`
	PremiumSuspended bool   `gorm:"not null;default:false"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (UserPlanModel) TableName() string {
	return "user_plans"
}
