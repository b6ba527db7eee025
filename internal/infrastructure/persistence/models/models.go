// Package models holds the gorm persistence models. They are an
// anti-corruption layer between the domain aggregates and the schema.
package models

// All returns every model, in dependency order, for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&UsageRecordModel{},
		&UserPlanModel{},
		&SubscriptionModel{},
		&SubscriptionInvoiceModel{},
		&OfferModel{},
		&OfferRedemptionModel{},
	}
}
