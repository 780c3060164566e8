package content

import "math"

const (
	penaltyPerViolation = 5000
	exposureFloor       = 15000
	exposureCeiling     = 250000
)

// Exposure is the estimated annual penalty range for a transaction volume.
type Exposure struct {
	MonthlyTransactions int `json:"monthlyTransactions"`
	MonthlyLow          int `json:"monthlyViolationsLow"`
	MonthlyHigh         int `json:"monthlyViolationsHigh"`
	AnnualLow           int `json:"annualPenaltiesLow"`
	AnnualHigh          int `json:"annualPenaltiesHigh"`
}

// EstimateExposure assumes 10% to 30% of monthly transactions are violations,
// each costing penaltyPerViolation, annualized and clamped to
// [exposureFloor, exposureCeiling].
func EstimateExposure(monthlyTransactions int) Exposure {
	if monthlyTransactions < 0 {
		monthlyTransactions = 0
	}
	low := int(math.Round(float64(monthlyTransactions) * 0.1))
	high := int(math.Round(float64(monthlyTransactions) * 0.3))
	return Exposure{
		MonthlyTransactions: monthlyTransactions,
		MonthlyLow:          low,
		MonthlyHigh:         high,
		AnnualLow:           clamp(low*penaltyPerViolation*12, exposureFloor, exposureCeiling),
		AnnualHigh:          clamp(high*penaltyPerViolation*12, exposureFloor, exposureCeiling),
	}
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
