package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseArguments(t *testing.T) {
	a, err := parseArguments([]string{"/data", "cam3", "2", "1"})
	require.NoError(t, err)
	require.Equal(t, arguments{
		dataPath: "/data",
		camera:   "cam3",
		matID:    2,
		posID:    1,
	}, a)
	require.Equal(t, "JUDOCARE-MAT2.1", a.serviceName())
}

func TestParseArgumentsErrors(t *testing.T) {
	for _, ca := range []struct {
		name string
		args []string
		err  string
	}{
		{
			"missing",
			[]string{"/data", "cam3", "2"},
			"expected 4 arguments, got 3",
		},
		{
			"too many",
			[]string{"/data", "cam3", "2", "1", "0"},
			"expected 4 arguments, got 5",
		},
		{
			"empty data path",
			[]string{"", "cam3", "2", "1"},
			"data path is empty",
		},
		{
			"empty camera",
			[]string{"/data", "", "2", "1"},
			"camera is empty",
		},
		{
			"mat id",
			[]string{"/data", "cam3", "a", "1"},
			"invalid mat id 'a'",
		},
		{
			"position id",
			[]string{"/data", "cam3", "2", "b"},
			"invalid position id 'b'",
		},
	} {
		t.Run(ca.name, func(t *testing.T) {
			_, err := parseArguments(ca.args)
			require.EqualError(t, err, ca.err)
		})
	}
}
