package federation

// TrustMetrics is the per-server behavioural record trust scores are
// derived from. Exactly one exists per registered server; eviction
// removes both together.
type TrustMetrics struct {
	ServerID          string  `json:"server_id"`
	Uptime            float64 `json:"uptime"`
	SuccessRate       float64 `json:"success_rate"`
	QualityScore      float64 `json:"quality_score"`
	AvgResponseTimeMs float64 `json:"avg_response_time_ms"`
	TotalRequests     int64   `json:"total_requests"`
	TotalErrors       int64   `json:"total_errors"`
	ReportCount       int     `json:"report_count"`
	VerifiedOwner     bool    `json:"verified_owner"`
	AuditedCode       bool    `json:"audited_code"`
}

// NewTrustMetrics returns the defaults a server starts with: assumed
// healthy until observed otherwise, middling quality, no track record.
func NewTrustMetrics(serverID string) TrustMetrics {
	return TrustMetrics{
		ServerID:     serverID,
		Uptime:       100,
		SuccessRate:  100,
		QualityScore: 50,
	}
}
