package testutil

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/spf13/afero"
)

// Project is a file tree used as test input.
type Project struct {
	Root string
	Fs   afero.Fs
}

// NewProject creates an in-memory project rooted at root. Keys of files are
// paths relative to root.
func NewProject(t *testing.T, root string, files map[string]string) *Project {
	t.Helper()
	p := &Project{Root: filepath.Clean(root), Fs: afero.NewMemMapFs()}
	p.WriteFiles(t, files)
	return p
}

// NewOSProject writes files under a temporary directory on the real
// filesystem.
func NewOSProject(t *testing.T, files map[string]string) *Project {
	t.Helper()
	p := &Project{Root: t.TempDir(), Fs: afero.NewOsFs()}
	p.WriteFiles(t, files)
	return p
}

// Path returns the absolute path of rel inside the project.
func (p *Project) Path(rel string) string {
	return filepath.Join(p.Root, filepath.FromSlash(rel))
}

// WriteFiles creates files relative to the project root.
func (p *Project) WriteFiles(t *testing.T, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p.WriteFile(t, rel, content)
	}
}

// WriteFile creates one file, including its parent directories.
func (p *Project) WriteFile(t *testing.T, rel, content string) string {
	t.Helper()
	path := p.Path(rel)
	if err := p.Fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create parent directories for %s: %v", path, err)
	}
	if err := afero.WriteFile(p.Fs, path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create file %s: %v", path, err)
	}
	return path
}

// ReadFile returns the content of rel, failing the test if it is missing.
func (p *Project) ReadFile(t *testing.T, rel string) string {
	t.Helper()
	content, err := afero.ReadFile(p.Fs, p.Path(rel))
	if err != nil {
		t.Fatalf("Failed to read %s: %v", rel, err)
	}
	return string(content)
}

// Exists reports whether rel exists in the project.
func (p *Project) Exists(rel string) bool {
	_, err := p.Fs.Stat(p.Path(rel))
	return err == nil
}

// Files lists every regular file under dir (relative to the project root),
// as sorted slash paths relative to dir.
func (p *Project) Files(t *testing.T, dir string) []string {
	t.Helper()
	base := p.Path(dir)
	var out []string
	err := afero.Walk(p.Fs, base, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(base, path)
		if err != nil {
			return err
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		t.Fatalf("Failed to walk %s: %v", dir, err)
	}
	sort.Strings(out)
	return out
}
