package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProfileDisplayName(t *testing.T) {
	var profile Profile
	require.Equal(t, "", profile.DisplayName())

	name := "Alice Example"
	profile.FullName = &name
	require.Equal(t, "Alice Example", profile.DisplayName())
}
