package gate

import (
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
)

var thresholdValidator = validator.New()

// Validate checks that every cutoff is finite, non-negative and that fail is
// not below warn.
func (t Thresholds) Validate() error {
	for _, v := range []float64{t.AWarn, t.AFail, t.DWarn, t.DFail, t.MWarn, t.MFail} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("thresholds: non-finite cutoff %v", v)
		}
	}
	if err := thresholdValidator.Struct(t); err != nil {
		return fmt.Errorf("thresholds: %w", err)
	}
	return nil
}
