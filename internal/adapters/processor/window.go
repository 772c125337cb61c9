package processor

// RollingWindow tracks the recent success/failure outcomes of resolved
// tasks over a fixed-size circular buffer.
type RollingWindow struct {
	results   []bool
	maxSize   int
	pointer   int
	fullCycle bool
}

func NewRollingWindow(size int) *RollingWindow {
	return &RollingWindow{
		results: make([]bool, size),
		maxSize: size,
	}
}

func (r *RollingWindow) Record(success bool) {
	r.results[r.pointer] = success
	r.pointer = (r.pointer + 1) % r.maxSize

	if r.pointer == 0 {
		r.fullCycle = true
	}
}

func (r *RollingWindow) SuccessRate() float64 {
	count := r.maxSize
	if !r.fullCycle {
		count = r.pointer
	}

	if count == 0 {
		return 0
	}

	successes := 0
	for i := 0; i < count; i++ {
		if r.results[i] {
			successes++
		}
	}

	return float64(successes) / float64(count)
}

// LoadHistory is a bounded ring of load samples, most recent last.
type LoadHistory struct {
	samples   []float64
	maxSize   int
	pointer   int
	fullCycle bool
}

func NewLoadHistory(size int) *LoadHistory {
	return &LoadHistory{
		samples: make([]float64, size),
		maxSize: size,
	}
}

func (h *LoadHistory) Append(load float64) {
	h.samples[h.pointer] = load
	h.pointer = (h.pointer + 1) % h.maxSize

	if h.pointer == 0 {
		h.fullCycle = true
	}
}

func (h *LoadHistory) Len() int {
	if h.fullCycle {
		return h.maxSize
	}
	return h.pointer
}

// Last returns the most recent sample, or 0 when the history is empty.
func (h *LoadHistory) Last() float64 {
	if h.Len() == 0 {
		return 0
	}
	return h.samples[(h.pointer-1+h.maxSize)%h.maxSize]
}

// Values returns the samples oldest-first.
func (h *LoadHistory) Values() []float64 {
	n := h.Len()
	values := make([]float64, 0, n)

	start := 0
	if h.fullCycle {
		start = h.pointer
	}
	for i := 0; i < n; i++ {
		values = append(values, h.samples[(start+i)%h.maxSize])
	}
	return values
}
