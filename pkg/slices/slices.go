package slices

// Map applies fn to every element of s and returns the results in order.
func Map[T any, U any](s []T, fn func(T) U) []U {
	if s == nil {
		return nil
	}

	r := make([]U, 0, len(s))
	for _, v := range s {
		r = append(r, fn(v))
	}

	return r
}
