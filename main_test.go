package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryRunsWithoutAICredentials(t *testing.T) {
	t.Setenv("AI_PROVIDER", "gemini")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("STORAGE_BACKEND", "memory")
	t.Setenv("LOG_OUTPUT", "stdout")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"history", "--chat", "42"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
		chatID = 0
	})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "No scans yet.")
}

func TestServeStillRequiresAICredentials(t *testing.T) {
	t.Setenv("AI_PROVIDER", "gemini")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("STORAGE_BACKEND", "memory")
	t.Setenv("LOG_OUTPUT", "stdout")

	rootCmd.SetArgs([]string{"serve"})
	rootCmd.SetErr(&bytes.Buffer{})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetErr(nil)
	})

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
}
