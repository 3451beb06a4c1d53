package table

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheck(t *testing.T) {
	cases := []struct {
		rel   Relation
		value interface{}
		ok    bool
	}{
		{RelNone, math.Inf(1), true},
		{RelFinite, 1.5, true},
		{RelFinite, math.Inf(-1), false},
		{RelFinite, math.NaN(), true},
		{RelPositive, 1e-9, true},
		{RelPositive, 0.0, false},
		{RelPositive, math.Inf(1), false},
		{RelNonNegative, 0.0, true},
		{RelNonNegative, -0.1, false},
		{RelBinary, 1.0, true},
		{RelBinary, 2.0, false},
		{RelBinary, 0, true},
		{RelNonEmpty, "T1", true},
		{RelNonEmpty, "", false},
	}
	for _, c := range cases {
		err := Check(c.rel, c.value)
		if c.ok {
			assert.NoError(t, err, "%s %v", c.rel, c.value)
		} else {
			assert.EqualError(t, err, "violates "+string(c.rel), "%s %v", c.rel, c.value)
		}
	}
}

func TestCheckUnknownRelation(t *testing.T) {
	assert.Error(t, Check(Relation("prime"), 7.0))
}
