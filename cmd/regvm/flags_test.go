package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputFlagsAreIndependent(t *testing.T) {
	t.Cleanup(func() {
		assembleOutput, compileOutput = "", ""
	})
	require.NoError(t, assembleCmd.Flags().Set("output", "prog.bin"))
	assert.Equal(t, "prog.bin", assembleOutput)
	assert.Empty(t, compileOutput)

	require.NoError(t, compileCmd.Flags().Set("output", "prog.asm"))
	assert.Equal(t, "prog.asm", compileOutput)
	assert.Equal(t, "prog.bin", assembleOutput)
}
