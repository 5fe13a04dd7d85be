package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCostsCommand(t *testing.T) {
	cmd := costsCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--fuel", "10", "--repair", "3"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "fuel   10.000 TRASH\nenergy 2.000000 CINDER\nrepair 3.000000 CINDER\n", out.String())

	cmd = costsCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--fuel", "1.5"})
	assert.Error(t, cmd.Execute())

	cmd = costsCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--fuel", "18446744073709552"})
	assert.Error(t, cmd.Execute())
}

func TestRemainingCommand(t *testing.T) {
	cmd := remainingCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{time.Now().Add(-48 * time.Hour).UTC().Format(time.RFC3339)})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "Closed\n", out.String())
}
