package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "git", cfg.GitPath)
	assert.Equal(t, TransferProgressStderr, cfg.TransferProgress)
	assert.False(t, cfg.Trace)
	assert.Zero(t, cfg.Timeout)
}

func TestLoad_yamlFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gitrun.yaml")
	content := `
git_path: /usr/local/bin/git
transfer_progress: sidecar
trace: true
timeout: 30s
path_prefixes:
  - /opt/git-helpers
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/usr/local/bin/git", cfg.GitPath)
	assert.Equal(t, TransferProgressSidecar, cfg.TransferProgress)
	assert.True(t, cfg.Trace)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, []string{"/opt/git-helpers"}, cfg.PathPrefixes)
}

func TestLoad_envOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gitrun.yaml")
	require.NoError(t, os.WriteFile(path, []byte("git_path: /from/file\n"), 0o644))

	t.Setenv("GITRUN_GIT_PATH", "/from/env")
	t.Setenv("GITRUN_LFS_PROGRESS", "sidecar")
	t.Setenv("GITRUN_TRACE", "1")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/from/env", cfg.GitPath)
	assert.Equal(t, TransferProgressSidecar, cfg.TransferProgress)
	assert.True(t, cfg.Trace)
}

func TestLoad_missingFileIsNotAnError(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "no-such-file.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "git", cfg.GitPath)
}

func TestLoad_malformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("git_path: [unclosed\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_invalidTimeout(t *testing.T) {
	t.Setenv("GITRUN_TIMEOUT", "not-a-duration")
	_, err := Load("")
	assert.Error(t, err)
}

func TestLoad_invalidTransferMode(t *testing.T) {
	t.Setenv("GITRUN_LFS_PROGRESS", "carrier-pigeon")
	_, err := Load("")
	assert.Error(t, err)
}

func TestLoad_pathPrefixesFromEnv(t *testing.T) {
	sep := string(os.PathListSeparator)
	t.Setenv("GITRUN_PATH_PREFIXES", "/a"+sep+sep+"/b")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, []string{"/a", "/b"}, cfg.PathPrefixes)
}
