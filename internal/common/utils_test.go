package common

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHasAny(t *testing.T) {
	set := []string{"casual", "warm"}

	require.True(t, HasAny(set, "warm"))
	require.True(t, HasAny(set, "formal", "casual"))
	require.False(t, HasAny(set, "formal", "sporty"))
	require.False(t, HasAny[string](nil, "warm"))
}

func TestToggle(t *testing.T) {
	set := []string{"casual", "warm"}

	removed := Toggle(set, "warm")
	require.Equal(t, []string{"casual"}, removed)

	added := Toggle(set, "sporty")
	require.Equal(t, []string{"casual", "warm", "sporty"}, added)

	// input untouched
	require.Equal(t, []string{"casual", "warm"}, set)
}
