package git

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloneSkipsExistingCheckout(t *testing.T) {
	dest := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dest, ".git"), 0o755))

	c := NewCloner()
	c.binary = filepath.Join(t.TempDir(), "missing-git")

	assert.NoError(t, c.Clone(context.Background(), Repository{URL: "https://example.com/bridge.git"}, dest))
}

func TestCloneRefusesForeignDirectory(t *testing.T) {
	dest := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dest, "notes.txt"), []byte("x"), 0o644))

	err := NewCloner().Clone(context.Background(), Repository{URL: "https://example.com/bridge.git"}, dest)
	assert.ErrorContains(t, err, "is not a git checkout")
}

func TestCloneRequiresURL(t *testing.T) {
	assert.Error(t, NewCloner().Clone(context.Background(), Repository{}, t.TempDir()))
}

func TestCloneReportsGitFailure(t *testing.T) {
	c := NewCloner()
	c.binary = filepath.Join(t.TempDir(), "missing-git")

	err := c.Clone(context.Background(), Repository{URL: "https://example.com/bridge.git"}, filepath.Join(t.TempDir(), "src"))
	assert.ErrorContains(t, err, "git clone failed")
}

func TestCloneArgs(t *testing.T) {
	assert.Equal(t,
		[]string{"clone", "--depth", "1", "--branch", "v1.2", "https://example.com/bridge.git", "/tmp/src"},
		cloneArgs(Repository{URL: "https://example.com/bridge.git", Ref: "v1.2"}, "/tmp/src"))
	assert.Equal(t,
		[]string{"clone", "--depth", "1", "https://example.com/bridge.git", "/tmp/src"},
		cloneArgs(Repository{URL: "https://example.com/bridge.git"}, "/tmp/src"))
}
