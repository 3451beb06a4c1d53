package logging

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/danielpatrickdp/flyby-triad/internal/triad"
)

// #region log-decision
// LogDecision writes one run decision to the decision_log table.
func LogDecision(db *sql.DB, entry DecisionEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := db.Exec(
		`INSERT INTO decision_log (analysis_id, trap_id, run_id, decision, flags, reason, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.AnalysisID,
		entry.TrapID,
		entry.RunID,
		entry.Decision,
		entry.Flags,
		nullIfEmpty(entry.Reason),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log decision: %w", err)
	}
	return nil
}

// LogResults writes a decision_log row for every result of an analysis.
// It stops at the first failed insert.
func LogResults(db *sql.DB, analysisID string, results []triad.Result) error {
	now := time.Now().UTC()
	for _, r := range results {
		reason := r.Reason
		if r.Error != "" {
			reason = r.Error
		}
		err := LogDecision(db, DecisionEntry{
			AnalysisID: analysisID,
			TrapID:     r.TrapID,
			RunID:      r.RunID,
			Decision:   string(r.Decision),
			Flags:      r.FlagCount(),
			Reason:     reason,
			CreatedAt:  now,
		})
		if err != nil {
			return fmt.Errorf("%s/%s: %w", r.TrapID, r.RunID, err)
		}
	}
	return nil
}

// #endregion log-decision

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
