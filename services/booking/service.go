package booking

import "creditcoach/models"

var offerings = []models.ServiceOffering{
	{
		Type:        models.ServiceCreditRepair,
		Title:       "Credit Repair Consultation",
		Description: "Review your reports together and plan disputes for inaccurate items.",
		Minutes:     60,
	},
	{
		Type:        models.ServiceCreditCoaching,
		Title:       "Credit Coaching Session",
		Description: "One-on-one coaching on utilization, payment history and building new credit.",
		Minutes:     45,
	},
	{
		Type:        models.ServiceDebtConsultation,
		Title:       "Debt Consultation",
		Description: "Map out a payoff or settlement strategy for outstanding balances.",
		Minutes:     45,
	},
	{
		Type:        models.ServiceBusinessCredit,
		Title:       "Business Credit Strategy",
		Description: "Establish and grow a business credit profile separate from personal credit.",
		Minutes:     60,
	},
}

// Offerings returns the services that can be booked, in display order.
func Offerings() []models.ServiceOffering {
	out := make([]models.ServiceOffering, len(offerings))
	copy(out, offerings)
	return out
}
