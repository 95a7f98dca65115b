package locks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLocker_TryAcquire(t *testing.T) {
	locker := NewMemoryLocker()

	release, acquired, err := locker.TryAcquire(t.Context(), "rule-1")
	require.NoError(t, err)
	require.True(t, acquired)

	// Second acquisition on the same rule is refused.
	_, acquired, err = locker.TryAcquire(t.Context(), "rule-1")
	require.NoError(t, err)
	assert.False(t, acquired)

	// Other rules are independent.
	otherRelease, acquired, err := locker.TryAcquire(t.Context(), "rule-2")
	require.NoError(t, err)
	assert.True(t, acquired)
	otherRelease()

	release()

	// Released rule can be acquired again.
	release, acquired, err = locker.TryAcquire(t.Context(), "rule-1")
	require.NoError(t, err)
	assert.True(t, acquired)
	release()
}

func TestMemoryLocker_ReleaseIsIdempotent(t *testing.T) {
	locker := NewMemoryLocker()

	release, acquired, err := locker.TryAcquire(t.Context(), "rule-1")
	require.NoError(t, err)
	require.True(t, acquired)

	release()
	release() // second call is a no-op

	_, acquired, err = locker.TryAcquire(t.Context(), "rule-1")
	require.NoError(t, err)
	assert.True(t, acquired)
}
