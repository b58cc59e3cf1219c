package training

import (
	"math"
)

// LRScheduler maps training progress to a learning rate. Schedulers are
// stateless pure functions of progress; the trainer applies the result to
// the optimizer every batch.
type LRScheduler interface {
	// LR returns the learning rate at the given fractional epoch progress
	// (e.g. 2.5 = halfway through the third epoch).
	LR(epochProgress float64, baseLR float64) float64

	// Name returns the scheduler name for logging.
	Name() string
}

// ConstantLR keeps the base learning rate (default behavior).
type ConstantLR struct{}

func (s *ConstantLR) LR(epochProgress float64, baseLR float64) float64 {
	return baseLR
}

func (s *ConstantLR) Name() string {
	return "ConstantLR"
}

// CosineAnnealingWarmRestarts anneals the learning rate along a cosine from
// baseLR down to EtaMin over a cycle, then restarts. The first cycle lasts
// T0 epochs; each following cycle is TMult times longer. Keying on
// fractional epoch progress makes the schedule advance smoothly within an
// epoch.
//
// Reference: "SGDR: Stochastic Gradient Descent with Warm Restarts"
// (Loshchilov & Hutter, 2017)
type CosineAnnealingWarmRestarts struct {
	T0     int     // Epochs in the first cycle
	TMult  int     // Cycle length multiplier after each restart
	EtaMin float64 // Minimum learning rate
}

// NewCosineAnnealingWarmRestarts creates the scheduler, substituting the
// training defaults (T0=14, TMult=2, EtaMin=1e-5) for out-of-range values.
func NewCosineAnnealingWarmRestarts(t0, tMult int, etaMin float64) *CosineAnnealingWarmRestarts {
	if t0 <= 0 {
		t0 = 14
	}
	if tMult < 1 {
		tMult = 2
	}
	if etaMin < 0 {
		etaMin = 1e-5
	}
	return &CosineAnnealingWarmRestarts{T0: t0, TMult: tMult, EtaMin: etaMin}
}

func (s *CosineAnnealingWarmRestarts) LR(epochProgress float64, baseLR float64) float64 {
	if epochProgress < 0 {
		epochProgress = 0
	}

	// Locate the current cycle: tCur is progress within it, ti its length.
	var tCur, ti float64
	if s.TMult == 1 {
		ti = float64(s.T0)
		tCur = math.Mod(epochProgress, ti)
	} else {
		q := float64(s.TMult)
		// The small bias keeps exact restart points (where the log ratio is
		// an integer) from flooring one cycle low on roundoff.
		n := math.Floor(math.Log(epochProgress/float64(s.T0)*(q-1)+1)/math.Log(q) + 1e-9)
		tCur = epochProgress - float64(s.T0)*(math.Pow(q, n)-1)/(q-1)
		ti = float64(s.T0) * math.Pow(q, n)
	}

	return s.EtaMin + (baseLR-s.EtaMin)*(1+math.Cos(math.Pi*tCur/ti))/2
}

func (s *CosineAnnealingWarmRestarts) Name() string {
	return "CosineAnnealingWarmRestarts"
}
