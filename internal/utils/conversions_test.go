package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestToStringSlice(t *testing.T) {
	require.Nil(t, ToStringSlice(nil))
	require.Equal(t, []string{"admin"}, ToStringSlice("admin"))
	require.Equal(t, []string{"a", "b"}, ToStringSlice([]string{"a", "b"}))
	require.Equal(t, []string{"a", "c"}, ToStringSlice([]any{"a", 1.0, "c"}))
	require.Equal(t, []string{}, ToStringSlice([]any{}))
}
