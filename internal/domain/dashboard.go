package domain

// DirectoryStats summarizes the operator directory for the dashboard.
type DirectoryStats struct {
	TotalOperators     int `json:"totalOperators"`
	AvailableOperators int `json:"availableOperators"`
}

// Dashboard is the signed-in home summary: the viewer's profile plus
// directory counters, fetched concurrently.
type Dashboard struct {
	Profile   *Profile       `json:"profile"`
	Directory DirectoryStats `json:"directory"`
}

// ServiceMetrics is a point-in-time snapshot of service counters for the
// GET /v1/metrics/summary endpoint.
type ServiceMetrics struct {
	TotalRequests int64   `json:"totalRequests"`
	ErrorRate     float64 `json:"errorRate"`
	CacheHitRate  float64 `json:"cacheHitRate"`
	ProfileSaves  int64   `json:"profileSaves"`
	Searches      int64   `json:"searches"`
	Period        string  `json:"period"`
}
