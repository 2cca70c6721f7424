package model

// ProbeOutcome is the structured result of one external reachability check.
// Produced exactly once per probed URL and never mutated afterward.
type ProbeOutcome struct {
	OK         bool   `json:"ok"`
	StatusCode int    `json:"status_code,omitempty"` // 0 when no HTTP response was obtained
	Reason     string `json:"reason"`                // Short classification, e.g. "OK", "HTTP 404", "Timeout"
	Detail     string `json:"detail,omitempty"`      // Longer diagnostic for the report
}

// VerificationRecord is one row of the dead-link report. Records exist only
// for failing links; passing links leave no trace in the report.
type VerificationRecord struct {
	SourceFile   string `json:"source_file"`
	Link         string `json:"link"`
	Reason       string `json:"reason"`
	ResolvedPath string `json:"resolved_path"`
	Detail       string `json:"reason_details,omitempty"`
}

// CheckStats summarizes a verification run
type CheckStats struct {
	FilesProcessed int `json:"files_processed"`
	LinksChecked   int `json:"links_checked"`
	ExternalProbed int `json:"external_probed"`
	Skipped        int `json:"skipped"`
	DeadLinks      int `json:"dead_links"`
}
