package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestPrintIgnoresDaemonSettings(t *testing.T) {
	t.Setenv("LOG_LEVEL", "trace")
	t.Setenv("CHAINCFG_HTTP_PORT", "not-a-port")
	t.Setenv("PRIVATE_KEY", "0xdeadbeef")

	out, err := runRoot(t, "print", "--dotenv", "")
	require.NoError(t, err)
	assert.NotContains(t, out, "0xdeadbeef")

	var printed map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &printed))
	networks := printed["networks"].(map[string]any)
	assert.Len(t, networks, 2)
	polygon := networks["polygon"].(map[string]any)
	assert.Equal(t, "[REDACTED]", polygon["signingKey"])
	assert.EqualValues(t, 137, polygon["chainId"])
}

func TestPrintReadsDotEnv(t *testing.T) {
	t.Setenv("POLYGONSCAN_API_KEY", "")
	os.Unsetenv("POLYGONSCAN_API_KEY")
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("POLYGONSCAN_API_KEY=scan-key\n"), 0o600))

	out, err := runRoot(t, "print", "--dotenv", path)
	require.NoError(t, err)
	assert.NotContains(t, out, "scan-key")
	assert.True(t, strings.Contains(out, `"apiKey": "[REDACTED]"`))
}

func TestPrintRejectsArguments(t *testing.T) {
	_, err := runRoot(t, "print", "extra")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, err := runRoot(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "chaincfg version dev")
}
