package iout

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCopyFile(t *testing.T) {
	requires := require.New(t)

	// 1. arrange
	srcDir, dstDir := t.TempDir(), t.TempDir()
	srcAbsPath := filepath.Join(srcDir, "some_file.txt")
	requires.NoError(os.WriteFile(srcAbsPath, []byte("some file content"), 0o644))
	srcFileInfo, err := os.Stat(srcAbsPath)
	requires.NoError(err)

	// 2. act
	dstAbsPath := filepath.Join(dstDir, "some_file.txt")
	written, err := CopyFile(srcAbsPath, dstAbsPath, srcFileInfo.ModTime())

	// 3. assert that the original and the copied files have same size and modTime,
	// and that the reported byte count is the destination file's length
	requires.NoError(err)
	copiedFileInfo, err := os.Stat(dstAbsPath)
	requires.NoError(err)
	requires.Equal(srcFileInfo.Size(), copiedFileInfo.Size())
	requires.Equal(srcFileInfo.Size(), written)
	requires.Equal(srcFileInfo.ModTime(), copiedFileInfo.ModTime())
}

func TestCopyFileOverwritesExisting(t *testing.T) {
	requires := require.New(t)

	srcDir, dstDir := t.TempDir(), t.TempDir()
	srcAbsPath := filepath.Join(srcDir, "file.txt")
	dstAbsPath := filepath.Join(dstDir, "file.txt")
	requires.NoError(os.WriteFile(srcAbsPath, []byte("new"), 0o644))
	requires.NoError(os.WriteFile(dstAbsPath, []byte("previous, much longer content"), 0o644))

	written, err := CopyFile(srcAbsPath, dstAbsPath, time.Now())

	requires.NoError(err)
	requires.Equal(int64(3), written)
	content, err := os.ReadFile(dstAbsPath)
	requires.NoError(err)
	requires.Equal("new", string(content))
}

func TestCopyFileMissingSource(t *testing.T) {
	requires := require.New(t)

	dstDir := t.TempDir()

	_, err := CopyFile(filepath.Join(t.TempDir(), "missing.txt"), filepath.Join(dstDir, "out.txt"), time.Now())

	requires.Error(err)
	requires.ErrorContains(err, "cannot copy file")
}

func TestListDir(t *testing.T) {
	requires := require.New(t)

	dir := t.TempDir()
	requires.NoError(os.Mkdir(filepath.Join(dir, "subdir"), 0o755))
	requires.NoError(os.WriteFile(filepath.Join(dir, "one.txt"), []byte("1"), 0o644))
	requires.NoError(os.WriteFile(filepath.Join(dir, "two.txt"), []byte("22"), 0o644))

	dirs, files, err := ListDir(dir)

	requires.NoError(err)
	requires.Len(dirs, 1)
	requires.Equal("subdir", dirs[0].Name)
	requires.Len(files, 2)

	sizes := map[string]int64{}
	for _, f := range files {
		sizes[f.Name] = f.Size
		requires.False(f.ModTime.IsZero())
	}
	requires.Equal(map[string]int64{"one.txt": 1, "two.txt": 2}, sizes)
}

func TestListDirMissing(t *testing.T) {
	requires := require.New(t)

	_, _, err := ListDir(filepath.Join(t.TempDir(), "missing"))

	requires.Error(err)
	requires.ErrorContains(err, "cannot read dir")
}
