package ports

// MetricsSampler owns every stochastic input of the core: the simulated
// memory figure and the success draw for a resolving task. Swappable for
// a deterministic implementation in tests.
type MetricsSampler interface {
	// SampleMemoryUsage returns a memory usage percentage in [20, 80].
	SampleMemoryUsage() float64
	// Float64 returns a uniform draw in [0, 1).
	Float64() float64
}
