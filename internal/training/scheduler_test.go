package training

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstantLR(t *testing.T) {
	s := &ConstantLR{}
	assert.Equal(t, 1e-3, s.LR(0, 1e-3))
	assert.Equal(t, 1e-3, s.LR(57.3, 1e-3))
}

func TestCosineAnnealingWarmRestartsCycleBoundaries(t *testing.T) {
	s := NewCosineAnnealingWarmRestarts(14, 2, 1e-5)
	base := 1e-3

	// Start of each cycle returns the base LR. With TMult=2 restarts land
	// at 14, 14+28=42, 42+56=98.
	assert.InDelta(t, base, s.LR(0, base), 1e-9)
	assert.InDelta(t, base, s.LR(14, base), 1e-9)
	assert.InDelta(t, base, s.LR(42, base), 1e-9)
	assert.InDelta(t, base, s.LR(98, base), 1e-9)
}

func TestCosineAnnealingWarmRestartsMidCycle(t *testing.T) {
	s := NewCosineAnnealingWarmRestarts(14, 2, 1e-5)
	base := 1e-3

	// Halfway through the first cycle the cosine sits at its midpoint.
	mid := 1e-5 + (base-1e-5)/2
	assert.InDelta(t, mid, s.LR(7, base), 1e-9)

	// Halfway through the second cycle (length 28).
	assert.InDelta(t, mid, s.LR(14+14, base), 1e-9)
}

func TestCosineAnnealingWarmRestartsApproachesEtaMin(t *testing.T) {
	s := NewCosineAnnealingWarmRestarts(14, 2, 1e-5)
	base := 1e-3

	// Just before the first restart the LR is close to the floor.
	lr := s.LR(13.999, base)
	assert.Greater(t, lr, 1e-5)
	assert.Less(t, lr, 2e-5)
}

func TestCosineAnnealingWarmRestartsMonotoneWithinCycle(t *testing.T) {
	s := NewCosineAnnealingWarmRestarts(14, 2, 1e-5)
	base := 1e-3

	prev := s.LR(0, base)
	for p := 0.5; p < 14; p += 0.5 {
		lr := s.LR(p, base)
		assert.Less(t, lr, prev, "progress %v", p)
		prev = lr
	}
}

func TestCosineAnnealingWarmRestartsTMultOne(t *testing.T) {
	s := NewCosineAnnealingWarmRestarts(10, 1, 0)
	base := 1e-3

	// Fixed-length cycles: restarts at every multiple of T0.
	assert.InDelta(t, base, s.LR(0, base), 1e-9)
	assert.InDelta(t, base, s.LR(10, base), 1e-9)
	assert.InDelta(t, base, s.LR(20, base), 1e-9)
	assert.InDelta(t, base/2, s.LR(5, base), 1e-9)
	assert.InDelta(t, base/2, s.LR(25, base), 1e-9)
}

func TestCosineAnnealingWarmRestartsDefaults(t *testing.T) {
	s := NewCosineAnnealingWarmRestarts(0, 0, -1)
	assert.Equal(t, 14, s.T0)
	assert.Equal(t, 2, s.TMult)
	assert.InDelta(t, 1e-5, s.EtaMin, 1e-12)
}
