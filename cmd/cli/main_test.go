package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeProgram(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "main.hcl")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o600), "failed to set up test file")
	return path
}

func TestRun_LoadError(t *testing.T) {
	t.Parallel()

	path := writeProgram(t, `
		box "a" {
			type = "arithmetic/add"
		// Missing closing brace here
	`)
	out := &bytes.Buffer{}

	err := run(out, []string{"-log-format", "text", path})

	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to load program")
}

func TestRun_CompletesProgram(t *testing.T) {
	t.Parallel()

	path := writeProgram(t, `
		box "s" {
			type = "primitive_io/spinner"
		}
		box "sum" {
			type = "arithmetic/add"
		}
		wire "w" {
			src_box   = "s"
			src_plug  = "value"
			dest_box  = "sum"
			dest_plug = "a"
		}
	`)
	out := &bytes.Buffer{}

	require.NoError(t, run(out, []string{"-log-format", "text", path}))
	require.Contains(t, out.String(), "Program stopped.")
}

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	// The "-h" (help) flag should cause cli.Parse to return `shouldExit=true`.
	out := &bytes.Buffer{}
	err := run(out, []string{"-h"})

	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	err := run(out, []string{"--this-is-not-a-valid-flag"})

	require.Error(t, err, "run() should return an error when argument parsing fails")
	require.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")
}
