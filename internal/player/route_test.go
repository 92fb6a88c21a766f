package player

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouteOwnership(t *testing.T) {
	r := NewRouteOwnership()
	assert.Equal(t, "", r.Owner())

	release, err := r.Acquire("interstitial")
	require.NoError(t, err)
	assert.Equal(t, "interstitial", r.Owner())

	t.Run("second owner is rejected", func(t *testing.T) {
		_, err := r.Acquire("other")
		assert.ErrorIs(t, err, ErrRouteBusy)
		assert.Equal(t, "interstitial", r.Owner())
	})

	t.Run("release frees the route and is idempotent", func(t *testing.T) {
		release()
		release()
		assert.Equal(t, "", r.Owner())

		otherRelease, err := r.Acquire("other")
		require.NoError(t, err)
		// A stale release from the previous owner must not free the new owner's claim
		release()
		assert.Equal(t, "other", r.Owner())
		otherRelease()
	})

	t.Run("reacquire by the same owner invalidates the old release", func(t *testing.T) {
		first, err := r.Acquire("interstitial")
		require.NoError(t, err)
		second, err := r.Acquire("interstitial")
		require.NoError(t, err)

		first()
		assert.Equal(t, "interstitial", r.Owner())
		second()
		assert.Equal(t, "", r.Owner())
	})
}
