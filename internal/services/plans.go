package services

import "github.com/najmuzzamasiddiqui00-create/docai-sub001/internal/models"

// Plan is one purchasable tier. Amounts are in paise; order amounts are
// always taken from this table, never from the client.
type Plan struct {
	ID       string
	Name     string
	Amount   int64
	Currency string
}

// Plans is the fixed tier table. Free is not purchasable and so not listed.
var Plans = map[string]Plan{
	models.PlanPro: {
		ID:       models.PlanPro,
		Name:     "Pro",
		Amount:   49900,
		Currency: "INR",
	},
	models.PlanPremium: {
		ID:       models.PlanPremium,
		Name:     "Premium",
		Amount:   99900,
		Currency: "INR",
	},
}
