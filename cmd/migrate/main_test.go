package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSteps(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    int
		wantErr bool
	}{
		{"default_one", nil, 1, false},
		{"explicit", []string{"3"}, 3, false},
		{"zero_rejected", []string{"0"}, 0, true},
		{"negative_rejected", []string{"-2"}, 0, true},
		{"garbage_rejected", []string{"all"}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseSteps(tt.args)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRootCommand(t *testing.T) {
	root := newRootCmd()

	for _, name := range []string{"up", "down", "version", "force"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}

	flag := root.PersistentFlags().Lookup("dir")
	require.NotNil(t, flag)
	assert.Equal(t, "", flag.DefValue)
}
