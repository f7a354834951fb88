package filex

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnsureParentDir_CreatesNestedDirectory(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "state", "mdash", "mdash.db")

	require.NoError(t, EnsureParentDir(path))

	fi, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	require.True(t, fi.IsDir(), "should create a directory")

	if runtime.GOOS != "windows" {
		require.Equal(t, os.FileMode(0o700), fi.Mode().Perm()&0o700)
	}

	_, err = os.Stat(path)
	require.True(t, os.IsNotExist(err), "the file itself is not created")
}

func TestEnsureParentDir_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "mdash.db")

	require.NoError(t, EnsureParentDir(path))
	require.NoError(t, EnsureParentDir(path))
}

func TestEnsureParentDir_SkipsSpecialNames(t *testing.T) {
	for _, name := range []string{"", ":memory:", "file:mdash?mode=memory"} {
		require.NoError(t, EnsureParentDir(name), name)
	}
}

func TestEnsureParentDir_FailsIfFileWithSameNameExists(t *testing.T) {
	tmp := t.TempDir()
	blocker := filepath.Join(tmp, "state")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	err := EnsureParentDir(filepath.Join(blocker, "mdash.db"))
	require.Error(t, err)
}
