package tools

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseGroup(t *testing.T) {
	cases := []struct {
		in   string
		want Group
	}{
		{"core", GroupCore},
		{"Memory", GroupMemory},
		{"WEB", GroupWeb},
		{"web3", GroupWeb3},
		{"system", GroupSystem},
		{"", ""},
		{"bogus", ""},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, ParseGroup(tc.in), "input %q", tc.in)
	}
}

func TestGroupLabel(t *testing.T) {
	require.Equal(t, "Core", GroupCore.Label())
	require.Equal(t, "Memory", GroupMemory.Label())
	require.Equal(t, "Web", GroupWeb.Label())
	require.Equal(t, "Web3", GroupWeb3.Label())
	require.Equal(t, "System", GroupSystem.Label())
	require.Equal(t, "Other", Group("mystery").Label())
}

func TestGroupValid(t *testing.T) {
	require.True(t, GroupCore.Valid())
	require.True(t, GroupSystem.Valid())
	require.False(t, Group("").Valid())
	require.False(t, Group("Core").Valid())
}
