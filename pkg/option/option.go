package option

// Option represents an optional value.
// It either contains a value or it does not.
//
// This interface is modeled after github.com/sagikazarmark/go-option.Option
type Option[T any] interface {
	// HasValue returns true if the Option contains a value.
	HasValue() bool

	// Value returns the value (or its default) stored in the Option.
	Value() T
}

type some[T any] struct {
	value T
}

func (o some[T]) HasValue() bool { return true }
func (o some[T]) Value() T       { return o.value }

type none[T any] struct{}

func (none[T]) HasValue() bool { return false }

func (none[T]) Value() T {
	var v T

	return v
}

// Some returns an Option holding v.
func Some[T any](v T) Option[T] {
	return some[T]{value: v}
}

// None returns an empty Option.
func None[T any]() Option[T] {
	return none[T]{}
}

// ValueOr returns the value stored in o or def if o is empty.
func ValueOr[T any](o Option[T], def T) T {
	if o == nil || !o.HasValue() {
		return def
	}

	return o.Value()
}
