package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/spiceqa/rvdispatch/internal/cli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_Actions(t *testing.T) {
	var out, errOut bytes.Buffer
	err := run(&out, &errOut, []string{"--config", "", "actions", "*_session"})
	require.NoError(t, err)
	assert.Equal(t, "close_session\nnew_session\n", out.String())
}

func TestRun_UnknownCommand(t *testing.T) {
	var out, errOut bytes.Buffer
	err := run(&out, &errOut, []string{"frobnicate"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command")
}

func TestRun_BadPatternIsUsageError(t *testing.T) {
	var out, errOut bytes.Buffer
	err := run(&out, &errOut, []string{"actions", "["})
	var exitErr *cli.ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, cli.ExitUsage, exitErr.Code)
}
