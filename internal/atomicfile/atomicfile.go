// Package atomicfile replaces files without exposing partial contents.
package atomicfile

import (
	"bufio"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Write calls fn with a buffered writer on a temporary file next to path,
// then syncs it and renames it over path. If fn or any step fails the
// temporary file is removed and path is left untouched.
func Write(path string, fn func(w io.Writer) error) (err error) {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	tmp, err := os.CreateTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return errors.Wrapf(err, "create temp file for %s", path)
	}
	tmpName := tmp.Name()
	closed := false
	defer func() {
		if err != nil {
			if !closed {
				tmp.Close()
			}
			os.Remove(tmpName)
		}
	}()

	bw := bufio.NewWriter(tmp)
	if err = fn(bw); err != nil {
		return err
	}
	if err = bw.Flush(); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	if err = tmp.Chmod(0644); err != nil {
		return errors.Wrapf(err, "chmod %s", path)
	}
	if err = tmp.Sync(); err != nil {
		return errors.Wrapf(err, "sync %s", path)
	}
	closed = true
	if err = tmp.Close(); err != nil {
		return errors.Wrapf(err, "close %s", path)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return errors.Wrapf(err, "replace %s", path)
	}
	return nil
}
