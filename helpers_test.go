package polyreg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvariantIsSilentWithoutDebugLevel(t *testing.T) {
	t.Setenv("DEBUG_LEVEL", "")
	require.NotPanics(t, func() { invariant("never checked", false) })
	require.NotPanics(t, func() {
		invariant("never evaluated", func() bool {
			t.Fatal("closure evaluated without DEBUG_LEVEL")
			return false
		})
	})
}

func TestInvariantPanicsAtDebugLevel(t *testing.T) {
	t.Setenv("DEBUG_LEVEL", "1")
	require.NotPanics(t, func() { invariant("holds", true) })
	require.NotPanics(t, func() { invariant("holds", func() bool { return true }) })
	assert.Panics(t, func() { invariant("broken", false) })
	assert.Panics(t, func() { invariant("broken", func() bool { return false }) })
}

func TestInvariantChecksHoldOnMeshOperations(t *testing.T) {
	t.Setenv("DEBUG_LEVEL", "1")
	m := gridWithShortBorderEdge()

	require.NotPanics(t, func() {
		CollapseBorderSmallEdges(m, DefaultEdgeFraction)
		RemoveValence2Faces(m)
		FlattenFaces(m, 1, false)
		m.Compact()
	})
	require.NoError(t, Verify(m))
}

func TestParseCSFloats(t *testing.T) {
	floats, err := parseCSFloats("1, 2.5,-3")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2.5, -3}, floats)

	_, err = parseCSFloats("1,x")
	assert.Error(t, err)
}
