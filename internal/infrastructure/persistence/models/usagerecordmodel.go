package models

import "time"

// UsageRecordModel is the persistence model of a user's usage in one billing
// period. (user_id, period) is unique.
type UsageRecordModel struct {
	ID                uint   `gorm:"primarykey"`
	UserID            uint   `gorm:"not null;uniqueIndex:uk_usage_user_period,priority:1"`
	Period            string `gorm:"type:char(7);not null;uniqueIndex:uk_usage_user_period,priority:2;index:idx_usage_period"`
	PostsGenerated    uint64 `gorm:"not null;default:0"`
	CommentsGenerated uint64 `gorm:"not null;default:0"`
	TotalTokensUsed   uint64 `gorm:"not null;default:0"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (UsageRecordModel) TableName() string {
	return "usage_records"
}
