package logging

import "time"

// #region decision-entry
// DecisionEntry is a single row in the decision_log table.
type DecisionEntry struct {
	AnalysisID string
	TrapID     string
	RunID      string
	Decision   string // "OK" | "WARN" | "FAIL" | "UNDETERMINED"
	Flags      int
	Reason     string
	CreatedAt  time.Time
}

// #endregion decision-entry
