package version

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestShortAndFull checks version strings contain the expected components.
func TestShortAndFull(t *testing.T) {
	t.Parallel()

	require.Equal(t, Version, Short())
	require.Contains(t, Full(), Version)
	require.Contains(t, Full(), Commit)
	require.Contains(t, Full(), BuildTime)
}
