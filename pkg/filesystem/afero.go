package filesystem

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/guesant/marech/pkg/errors"
	"github.com/spf13/afero"
)

// FS is an afero filesystem with coded errors.
type FS struct {
	fs afero.Fs
}

// New wraps fsys. A nil fsys is the OS filesystem.
func New(fsys afero.Fs) *FS {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	return &FS{fs: fsys}
}

// Afero returns the wrapped filesystem.
func (f *FS) Afero() afero.Fs { return f.fs }

// Stat returns the file info of name.
func (f *FS) Stat(name string) (fs.FileInfo, error) {
	return f.fs.Stat(name)
}

// ReadFile reads a regular file.
func (f *FS) ReadFile(name string) ([]byte, error) {
	info, err := f.fs.Stat(name)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(err, errors.ErrFileNotFound, "file not found: %s", name).
				WithDetail("path", name)
		}
		return nil, errors.Wrapf(err, errors.ErrFileRead, "cannot stat %s", name).
			WithDetail("path", name)
	}
	if info.IsDir() {
		return nil, errors.Wrapf(&fs.PathError{Op: "read", Path: name, Err: fs.ErrInvalid},
			errors.ErrFileRead, "%s is a directory", name).
			WithDetail("path", name)
	}
	data, err := afero.ReadFile(f.fs, name)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileRead, "cannot read %s", name).
			WithDetail("path", name)
	}
	return data, nil
}

// WriteFile writes data to name, creating its parent directories.
func (f *FS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	dir := filepath.Dir(name)
	if err := f.fs.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "cannot create directory %s", dir).
			WithDetail("path", dir)
	}
	if err := afero.WriteFile(f.fs, name, data, perm); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot write %s", name).
			WithDetail("path", name)
	}
	return nil
}

// Files returns the regular files under root in lexical order. Directories
// for which skipDir returns true are not descended into.
func (f *FS) Files(root string, skipDir func(dir string) bool) ([]string, error) {
	var out []string
	err := afero.Walk(f.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if path != root && skipDir != nil && skipDir(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if info.Mode().IsRegular() {
			out = append(out, path)
		}
		return nil
	})
	if err != nil {
		code := errors.ErrFileRead
		if os.IsNotExist(err) {
			code = errors.ErrFileNotFound
		}
		return nil, errors.Wrapf(err, code, "cannot list %s", root).
			WithDetail("path", root)
	}
	sort.Strings(out)
	return out, nil
}
