package model

// RiskLevel is the display band derived from a risk score
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// Band thresholds. A score equal to a threshold belongs to the lower band.
const (
	LowRiskMax    = 2.0
	MediumRiskMax = 3.5
	HighRiskMax   = 4.5
)

// ClassifyRisk maps a score to its display band
func ClassifyRisk(score float64) RiskLevel {
	switch {
	case score <= LowRiskMax:
		return RiskLow
	case score <= MediumRiskMax:
		return RiskMedium
	case score <= HighRiskMax:
		return RiskHigh
	default:
		return RiskCritical
	}
}

// IsHighRisk reports whether a score counts towards the high-risk statistic
func IsHighRisk(score float64) bool {
	return score > MediumRiskMax
}

// Label returns the human readable name of the band
func (r RiskLevel) Label() string {
	switch r {
	case RiskLow:
		return "Low"
	case RiskMedium:
		return "Medium"
	case RiskHigh:
		return "High"
	case RiskCritical:
		return "Critical"
	}
	return "Unknown"
}

// StatusLabel returns the human readable name of a contract status
func StatusLabel(status string) string {
	switch status {
	case StatusActive:
		return "Active"
	case StatusPending:
		return "Pending"
	case StatusExpired:
		return "Expired"
	case StatusExpiringSoon:
		return "Expiring Soon"
	}
	return "Unknown"
}
