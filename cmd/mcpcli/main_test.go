package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEnvOr(t *testing.T) {
	t.Setenv("MCPCLI_TEST_KEY", "set")

	require.Equal(t, "set", envOr("MCPCLI_TEST_KEY", "fallback"))
	require.Equal(t, "fallback", envOr("MCPCLI_TEST_MISSING", "fallback"))
}

func TestEnvDuration(t *testing.T) {
	t.Setenv("MCPCLI_TEST_TIMEOUT", "250ms")
	t.Setenv("MCPCLI_TEST_BAD", "soon")

	require.Equal(t, 250*time.Millisecond, envDuration("MCPCLI_TEST_TIMEOUT", time.Second))
	require.Equal(t, time.Second, envDuration("MCPCLI_TEST_BAD", time.Second))
	require.Equal(t, time.Second, envDuration("MCPCLI_TEST_UNSET", time.Second))
}

func TestRun_UsageErrors(t *testing.T) {
	require.Equal(t, exitUsage, run(nil))
	require.Equal(t, exitUsage, run([]string{"frobnicate"}))
	require.Equal(t, exitOK, run([]string{"help"}))
	require.Equal(t, exitUsage, run([]string{"tools"}))
	require.Equal(t, exitUsage, run([]string{"call", "server-only"}))
	require.Equal(t, exitUsage, run([]string{"alias"}))
}
