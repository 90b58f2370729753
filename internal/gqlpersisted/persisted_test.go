package gqlpersisted

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveRegistersThenServesByHash(t *testing.T) {
	m := NewManager(nil)

	hash := Hash("{ hello }")
	_, err := m.Resolve(hash, "")
	assert.ErrorIs(t, err, ErrNotFound)

	resolved, err := m.Resolve(hash, "{ hello }")
	require.NoError(t, err)
	assert.Equal(t, "{ hello }", resolved)

	resolved, err = m.Resolve(hash, "")
	require.NoError(t, err)
	assert.Equal(t, "{ hello }", resolved)
}

func TestResolveRejectsMismatchedHash(t *testing.T) {
	m := NewManager(nil)
	_, err := m.Resolve("not-the-real-hash", "{ hello }")
	assert.ErrorIs(t, err, ErrHashMismatch)
}

func TestResolveTracksUseCount(t *testing.T) {
	m := NewManager(nil)
	hash := Hash("{ hello }")
	_, err := m.Resolve(hash, "{ hello }")
	require.NoError(t, err)
	_, err = m.Resolve(hash, "")
	require.NoError(t, err)
	_, err = m.Resolve(hash, "")
	require.NoError(t, err)

	stats := m.Stats()
	require.Len(t, stats, 1)
	assert.Equal(t, 3, stats[0].UseCount)
}
