// Package trust derives 0-100 trust scores from observed server
// behaviour. All functions are pure; callers own persistence of the
// resulting score.
package trust

import (
	"math"

	"github.com/fedmesh/fedmesh/federation"
)

const (
	MinScore = 0
	MaxScore = 100
)

const (
	uptimeWeight       = 0.20
	responseWeight     = 0.15
	successWeight      = 0.25
	qualityWeight      = 0.15
	volumeWeight       = 0.10
	verificationWeight = 0.15

	verificationBase  = 50
	verificationBonus = 25

	reportPenaltyStep = 10
	reportPenaltyCap  = 50
)

// Calculate folds a server's metrics into a single integer score.
// Response time degrades linearly and hits zero around 10s average
// latency; volume rewards track record on a log10 scale and saturates
// at 10^5 requests.
func Calculate(m federation.TrustMetrics) int {
	responseScore := math.Max(0, 100-m.AvgResponseTimeMs/100)
	volumeScore := math.Min(100, math.Log10(float64(m.TotalRequests)+1)*20)

	verificationScore := float64(verificationBase)
	if m.VerifiedOwner {
		verificationScore += verificationBonus
	}
	if m.AuditedCode {
		verificationScore += verificationBonus
	}

	score := m.Uptime*uptimeWeight +
		responseScore*responseWeight +
		m.SuccessRate*successWeight +
		m.QualityScore*qualityWeight +
		volumeScore*volumeWeight +
		verificationScore*verificationWeight

	score -= math.Min(reportPenaltyCap, float64(m.ReportCount)*reportPenaltyStep)

	return clamp(int(math.Round(score)))
}

// ApplyDecay ages a score by daysSinceActivity at the given per-day
// rate. A rate of 1.0 is a no-op; rates below 1.0 shrink the score
// toward zero the longer a server stays inactive.
func ApplyDecay(score int, daysSinceActivity float64, decayRate float64) int {
	decayed := float64(score) * math.Pow(decayRate, daysSinceActivity)

	return clamp(int(math.Round(decayed)))
}

func clamp(score int) int {
	if score < MinScore {
		return MinScore
	}
	if score > MaxScore {
		return MaxScore
	}

	return score
}
