package services

// withFallback runs primary and, if it fails, substitutes fallback's value.
// The primary error is returned alongside the value so the caller can log it;
// a non-nil error therefore means "degraded", never "no value".
func withFallback[T any](primary func() (T, error), fallback func() T) (T, error) {
	v, err := primary()
	if err != nil {
		return fallback(), err
	}
	return v, nil
}

// strategy is one step of a cascade.
type strategy[T any] struct {
	name string
	run  func() (T, error)
}

// cascade runs strategies in order and returns the first success along with
// the name of the strategy that produced it. If every strategy fails the
// errors are returned in order.
func cascade[T any](steps ...strategy[T]) (T, string, []error) {
	var errs []error
	for _, step := range steps {
		v, err := step.run()
		if err == nil {
			return v, step.name, nil
		}
		errs = append(errs, err)
	}
	var zero T
	return zero, "", errs
}
