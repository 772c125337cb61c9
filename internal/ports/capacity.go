package ports

// CapacitySource converts a processor identity into its current capacity.
// Implementations must return a positive value; callers fall back to a
// default capacity when they get an error or a non-positive number.
type CapacitySource interface {
	CapacityOf(processorID string) (float64, error)
}

// CapacityFunc adapts a plain function to a CapacitySource.
type CapacityFunc func(processorID string) (float64, error)

func (f CapacityFunc) CapacityOf(processorID string) (float64, error) {
	return f(processorID)
}
