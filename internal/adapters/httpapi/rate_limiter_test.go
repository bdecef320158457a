package httpapi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClientRateLimiter(t *testing.T) {
	t.Run("blocks after the limit inside the window", func(t *testing.T) {
		rl := NewClientRateLimiter(2, time.Minute)

		assert.True(t, rl.Allow("a"))
		assert.True(t, rl.Allow("a"))
		assert.False(t, rl.Allow("a"))
	})

	t.Run("tokens are tracked independently", func(t *testing.T) {
		rl := NewClientRateLimiter(1, time.Minute)

		assert.True(t, rl.Allow("a"))
		assert.False(t, rl.Allow("a"))
		assert.True(t, rl.Allow("b"))
	})

	t.Run("window slides", func(t *testing.T) {
		rl := NewClientRateLimiter(1, 30*time.Millisecond)

		assert.True(t, rl.Allow("a"))
		assert.False(t, rl.Allow("a"))

		time.Sleep(40 * time.Millisecond)
		assert.True(t, rl.Allow("a"))
	})
}
