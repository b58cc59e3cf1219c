// Package loss implements the AdaptiveScaling detector objectives: the
// elementary loss primitives, the rough (coarse mask + scale) composite, the
// precise (per-pixel probability + corner geometry) composite, and the
// combined loss the trainer consumes.
//
// Every loss is a pure function of (prediction, ground truth, optional mask)
// producing a scalar tensor of shape {1}. Inputs are never mutated. Shape and
// precondition violations panic: they indicate upstream contract breakage,
// not a recoverable condition.
package loss
