package loss

import (
	"fmt"

	"github.com/vkit-x/vkit-open-model/internal/tensor"
)

// term is one weighted sub-objective of a composite loss. Composite loss
// constructors build a fixed ordered term list up front, filtered to factors
// above zero, so the active-term set is introspectable and the per-call code
// has no scattered conditionals.
type term struct {
	name   string
	factor float32
}

// activeTerms filters the ordered candidate list to positive factors,
// rejecting negative factors outright.
func activeTerms(candidates []term) ([]term, error) {
	active := make([]term, 0, len(candidates))
	for _, t := range candidates {
		if t.factor < 0 {
			return nil, fmt.Errorf("loss factor %q is negative: %v", t.name, t.factor)
		}
		if t.factor > 0 {
			active = append(active, t)
		}
	}
	if len(active) == 0 {
		return nil, fmt.Errorf("no active loss terms: every factor is zero")
	}
	return active, nil
}

// termNames lists the names of the given terms, in evaluation order.
func termNames(terms []term) []string {
	names := make([]string, len(terms))
	for i, t := range terms {
		names[i] = t.name
	}
	return names
}

// accumulator sums weighted scalar loss terms. It starts with no terms;
// asking for the total of an empty accumulator panics, a state the composite
// constructors rule out by rejecting all-zero configurations.
type accumulator struct {
	total float32
	n     int
}

func (a *accumulator) add(factor float32, scalar *tensor.Tensor) {
	a.total += factor * scalar.Item()
	a.n++
}

func (a *accumulator) value() *tensor.Tensor {
	if a.n == 0 {
		panic("loss accumulator: no terms were accumulated")
	}
	return tensor.Scalar(a.total)
}
