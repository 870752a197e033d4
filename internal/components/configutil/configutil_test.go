package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	BaseUrl      string `json:"base_url"`
	RetryCeiling int    `json:"retry_ceiling"`
	Agent        string `json:"agent"`
}

func TestSplitExt(t *testing.T) {
	prefix, ext := splitExt("qrzbuddy.json5")
	require.Equal(t, "qrzbuddy", prefix)
	require.Equal(t, "json5", ext)

	prefix, ext = splitExt("noext")
	require.Equal(t, "noext", prefix)
	require.Equal(t, "", ext)
}

func TestReadConfig(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "qrzbuddy.json5"), []byte(`{
		// comments are allowed in json5
		base_url: "https://xmldata.qrz.com/xml/current/",
		retry_ceiling: 4,
		agent: "qrzbuddy",
	}`), 0600)
	require.NoError(t, err)
	err = os.WriteFile(filepath.Join(dir, "qrzbuddy.local.json5"), []byte(`{
		base_url: "http://localhost:8080/",
	}`), 0600)
	require.NoError(t, err)

	cfg, err := ReadConfig[testConfig](filepath.Join(dir, "qrzbuddy.json5"))
	require.NoError(t, err)
	require.Equal(t, testConfig{
		BaseUrl:      "http://localhost:8080/",
		RetryCeiling: 4,
		Agent:        "qrzbuddy",
	}, cfg)
}

func TestReadConfigMissing(t *testing.T) {
	_, err := ReadConfig[testConfig](filepath.Join(t.TempDir(), "missing.json5"))
	require.True(t, os.IsNotExist(err))
}

func TestReadConfigOnlyLocal(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "qrzbuddy.local.json5"), []byte(`{ agent: "local-agent" }`), 0600)
	require.NoError(t, err)

	cfg, err := ReadConfig[testConfig](filepath.Join(dir, "qrzbuddy.json5"))
	require.NoError(t, err)
	require.Equal(t, testConfig{Agent: "local-agent"}, cfg)
}

func TestLocalPath(t *testing.T) {
	require.Equal(t, filepath.Join("conf", "qrzbuddy.local.json5"), localPath(filepath.Join("conf", "qrzbuddy.json5")))
}
