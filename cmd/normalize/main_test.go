package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"consequence/internal/normalize"
)

func TestRun_BundledStoryToStdout(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run([]string{"-total", "40", "-log-level", "error"}, &out))

	scenes, err := normalize.DecodeScenes(out.Bytes())
	require.NoError(t, err)
	assert.Len(t, scenes, 40)
	assert.Contains(t, out.String(), "meta:")
}

func TestRun_FileToFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.yaml")
	outPath := filepath.Join(dir, "out.yaml")
	src := `scenes:
  intro:
    text: Hello.
    choices:
      - id: loop
        text: Again
        goTo: intro
`
	require.NoError(t, os.WriteFile(in, []byte(src), 0o600))

	require.NoError(t, run([]string{"-in", in, "-out", outPath, "-endings", "2", "-total", "5", "-log-level", "error"}, &bytes.Buffer{}))

	b, err := os.ReadFile(outPath)
	require.NoError(t, err)
	scenes, err := normalize.DecodeScenes(b)
	require.NoError(t, err)
	require.Len(t, scenes, 5)
	assert.Equal(t, "intro", scenes[0].ID)
	for _, c := range scenes[0].Choices {
		assert.NotEqual(t, "intro", c.GoTo)
	}
}

func TestRun_Errors(t *testing.T) {
	assert.Error(t, run([]string{"-in", filepath.Join(t.TempDir(), "none.yaml")}, &bytes.Buffer{}))
	assert.Error(t, run([]string{"-bogus"}, &bytes.Buffer{}))
}
