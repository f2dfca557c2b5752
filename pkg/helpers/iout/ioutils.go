package iout

import (
	"fmt"
	"io"
	"os"
	"time"
)

//Entry holds the transient metadata of one directory member, enough to decide
//whether its counterpart needs to be (re)copied.
type Entry struct {
	Name    string
	Size    int64 // in bytes
	ModTime time.Time
}

//ListDir enumerates the immediate children of the directory at path and splits
//them into subdirectories and files. Symlinks are listed as files and are never
//followed. No particular order of the returned slices is guaranteed.
func ListDir(path string) (dirs, files []Entry, err error) {
	members, err := os.ReadDir(path)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot read dir: %w", err)
	}
	for _, m := range members {
		info, err := m.Info()
		if err != nil {
			return nil, nil, fmt.Errorf("cannot get info for %q: %w", m.Name(), err)
		}
		e := Entry{Name: m.Name(), Size: info.Size(), ModTime: info.ModTime()}
		if m.IsDir() {
			dirs = append(dirs, e)
		} else {
			files = append(files, e)
		}
	}
	return dirs, files, nil
}

//CopyFile copies the entry at the source path (must be a regular file) to the
//specified destination, replacing any file already there. It sets for the
//copied file the same modTime as the source file modTime and reports the number
//of bytes the destination file ended up with.
func CopyFile(srcPath, dstPath string, srcModTime time.Time) (int64, error) {
	written, err := copyFileContents(srcPath, dstPath)
	if err != nil {
		return 0, fmt.Errorf("cannot copy file: %w", err)
	}
	if err := os.Chtimes(dstPath, time.Now(), srcModTime); err != nil {
		return 0, fmt.Errorf("cannot set file modification time: %w", err)
	}
	return written, nil
}

func copyFileContents(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, fmt.Errorf("cannot open file: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return 0, fmt.Errorf("cannot create file: %w", err)
	}
	defer out.Close()

	written, err := io.Copy(out, in)
	if err != nil {
		return 0, fmt.Errorf("cannot read/write file content: %w", err)
	}
	return written, out.Sync()
}
