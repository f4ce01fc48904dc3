package option

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOption(t *testing.T) {
	t.Run("Some", func(t *testing.T) {
		o := Some("value")

		assert.True(t, o.HasValue())
		assert.Equal(t, "value", o.Value())
		assert.Equal(t, "value", ValueOr(o, "default"))
	})

	t.Run("None", func(t *testing.T) {
		o := None[string]()

		assert.False(t, o.HasValue())
		assert.Equal(t, "", o.Value())
		assert.Equal(t, "default", ValueOr(o, "default"))
	})

	t.Run("Nil", func(t *testing.T) {
		var o Option[int]

		assert.Equal(t, 42, ValueOr(o, 42))
	})
}
