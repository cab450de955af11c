// Package health holds the smbm health endpoint documents as seen by CLIs.
package health

// Response is the liveness document of GET /health.
type Response struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Data      struct {
		Service   string `json:"service"`
		StartedAt string `json:"started_at"`
		Uptime    string `json:"uptime"`
		UptimeSec int64  `json:"uptime_sec"`
	} `json:"data"`
	Error string `json:"error,omitempty"`
}

// CheckResult is one readiness check.
type CheckResult struct {
	Status  string `json:"status" yaml:"status"`
	Error   string `json:"error,omitempty" yaml:"error,omitempty"`
	Latency string `json:"latency,omitempty" yaml:"latency,omitempty"`
}

// Readiness is the document of GET /health/ready. Data is keyed by check
// name ("database", "samba").
type Readiness struct {
	Status string                 `json:"status"`
	Data   map[string]CheckResult `json:"data,omitempty"`
	Error  string                 `json:"error,omitempty"`
}
