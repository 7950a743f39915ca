package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mogaika/glevel_browser/pack/glevel"
)

func TestGenerateParses(t *testing.T) {
	levels := generate(42, 5)
	require.Len(t, levels, 5)

	for i, l := range levels {
		data, err := glevel.Encode(l)
		require.NoError(t, err, l.Name)

		res, err := glevel.Parse(data)
		require.NoError(t, err, string(data))
		assert.True(t, res.Diagnostics.Clean(), "%v", res.Diagnostics.Warnings)
		assert.Equal(t, l, res.Level)

		if i+1 < len(levels) {
			goal := l.Blocks[len(l.Blocks)-1]
			assert.Equal(t, glevel.Goal, goal.Interaction.Kind)
			assert.Equal(t, fileName(i+1, levels[i+1].Name), goal.Interaction.Value)
		}
	}
}

func TestGenerateDeterministic(t *testing.T) {
	assert.Equal(t, generate(7, 3), generate(7, 3))
	assert.NotEqual(t, generate(7, 3), generate(8, 3))
}
