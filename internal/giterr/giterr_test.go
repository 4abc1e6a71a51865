package giterr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_success(t *testing.T) {
	err := Classify(Result{ExitCode: 0}, []string{"git", "status"}, "")
	assert.Nil(t, err)
}

func TestClassify_abortedWinsUnconditionally(t *testing.T) {
	// Even a zero exit code with empty stderr must classify as aborted when
	// the aborted flag is set.
	err := Classify(Result{ExitCode: 0, Aborted: true}, []string{"git", "fetch"}, "/repo")
	require.NotNil(t, err)
	assert.Equal(t, KindAborted, err.Kind)

	err = Classify(Result{ExitCode: 128, Stderr: "fatal: remote error", Aborted: true}, nil, "")
	require.NotNil(t, err)
	assert.Equal(t, KindAborted, err.Kind)
}

func TestClassify_spawnFailureSentinel(t *testing.T) {
	err := Classify(Result{ExitCode: SpawnFailureExitCode}, []string{"git"}, "")
	require.NotNil(t, err)
	assert.Equal(t, KindSpawnFailed, err.Kind)
}

func TestClassify_spawnFailurePhrase(t *testing.T) {
	err := Classify(Result{ExitCode: 127, Stderr: "sh: git: command not found\n"}, nil, "")
	require.NotNil(t, err)
	assert.Equal(t, KindSpawnFailed, err.Kind)
}

func TestClassify_nonZeroExit(t *testing.T) {
	err := Classify(Result{ExitCode: 1, Stderr: "error: pathspec 'nope' did not match\n"}, []string{"git", "checkout", "nope"}, "/repo")
	require.NotNil(t, err)
	assert.Equal(t, KindNonZeroExit, err.Kind)
	assert.Equal(t, "pathspec 'nope' did not match", err.Message)
	assert.Equal(t, 1, err.Context.ExitCode)
	assert.Equal(t, "/repo", err.Context.Dir)
}

func TestExtractMessage_precedence(t *testing.T) {
	tests := []struct {
		name   string
		stderr string
		want   string
	}{
		{
			name:   "fatal wins over error",
			stderr: "error: something minor\nfatal: repository not found\n",
			want:   "repository not found",
		},
		{
			name:   "error line when no fatal",
			stderr: "warning: ignored\nerror: failed to push some refs\n",
			want:   "failed to push some refs",
		},
		{
			name:   "case insensitive fatal",
			stderr: "FATAL: out of memory\n",
			want:   "out of memory",
		},
		{
			name:   "first non-empty line fallback",
			stderr: "\n\nremote: something odd happened\n",
			want:   "remote: something odd happened",
		},
		{
			name:   "generic fallback on empty stderr",
			stderr: "",
			want:   "git exited with code 128",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractMessage(tt.stderr, 128))
		})
	}
}

func TestCategorize(t *testing.T) {
	tests := []struct {
		stderr string
		want   Category
	}{
		{"fatal: Authentication failed for 'https://...'", CategoryAuth},
		{"remote: HTTP 401 returned", CategoryAuth},
		{"fatal: could not read Username for 'https://github.com'", CategoryAuth},
		{"ssh: Could not resolve hostname github.com", CategoryNetwork},
		{"fatal: unable to access: Could not resolve host: example.com", CategoryNetwork},
		{"getaddrinfo ENOTFOUND github.com", CategoryNetwork},
		{"CONFLICT (content): Merge conflict in main.go", CategoryConflict},
		{"error: open(\"x\"): Permission denied", CategoryPermission},
		{"EACCES: cannot open lock file", CategoryPermission},
		{"fatal: something else entirely", CategoryUnknown},
		{"", CategoryUnknown},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, categorize(tt.stderr), "stderr: %q", tt.stderr)
	}
}

func TestGitError_errorString(t *testing.T) {
	err := &GitError{Kind: KindNonZeroExit, Message: "boom"}
	assert.Equal(t, "git non-zero-exit: boom", err.Error())
}
