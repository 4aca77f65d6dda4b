package domain

// Stats summarises the store contents.
type Stats struct {
	TotalContent     int
	TotalChunks      int
	TotalQueries     int
	StorageSizeBytes int64
	VectorDimension  int
}

// HealthStatus reports storage health. Issues are reported, never raised.
type HealthStatus struct {
	Healthy bool
	Issues  []string
}

// AddIssue records a problem and marks the status unhealthy.
func (h *HealthStatus) AddIssue(issue string) {
	h.Healthy = false
	h.Issues = append(h.Issues, issue)
}
