package store

import (
	"time"

	"github.com/danielpatrickdp/flyby-triad/internal/gate"
)

// #region screening
// Screening is one persisted analysis: the thresholds it ran with and the
// aggregate counts of its results.
type Screening struct {
	AnalysisID string
	DataRoot   string
	Preset     string
	Thresholds gate.Thresholds
	Alpha      float64
	NRuns      int
	NFlags     int
	CreatedAt  time.Time
}

// #endregion screening
