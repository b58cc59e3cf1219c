package training

// Metric tags used by the trainer.
const (
	TagTrainLoss = "train_loss"
	TagDevLoss   = "dev_loss"
)

// Metrics keeps a sliding window of recent values per tag and reports the
// windowed mean. Loss values are noisy batch to batch; logging the moving
// average makes trends readable.
type Metrics struct {
	window int
	values map[string][]float64
}

// NewMetrics creates a metric tracker averaging over the last window values.
func NewMetrics(window int) *Metrics {
	if window <= 0 {
		window = 50
	}
	return &Metrics{
		window: window,
		values: make(map[string][]float64),
	}
}

// Update records a value for tag and returns the new windowed mean.
func (m *Metrics) Update(tag string, value float64) float64 {
	vs := append(m.values[tag], value)
	if len(vs) > m.window {
		vs = vs[len(vs)-m.window:]
	}
	m.values[tag] = vs
	return m.Mean(tag)
}

// Mean returns the mean over the current window for tag, or 0 if no values
// were recorded.
func (m *Metrics) Mean(tag string) float64 {
	vs := m.values[tag]
	if len(vs) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}

// Count returns how many values are currently in the window for tag.
func (m *Metrics) Count(tag string) int {
	return len(m.values[tag])
}

// Reset drops all recorded values for tag.
func (m *Metrics) Reset(tag string) {
	delete(m.values, tag)
}
