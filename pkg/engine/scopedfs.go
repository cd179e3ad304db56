package engine

import (
	"path/filepath"

	"github.com/guesant/marech/pkg/depgraph"
	"github.com/guesant/marech/pkg/transform"
	"github.com/rs/zerolog"
)

// ScopedFS is the filesystem view handed to one transformer. Paths resolve
// against the directory of the file being transformed, after alias mapping.
// A ScopedFS belongs to a single transformer instance.
type ScopedFS struct {
	engine *Engine
	dir    string
	path   string
	graph  *depgraph.Graph
	logger zerolog.Logger
}

var _ transform.FileSystem = (*ScopedFS)(nil)

// Dir returns the directory the view is rooted at.
func (s *ScopedFS) Dir() string { return s.dir }

// Path returns the file the view was created for.
func (s *ScopedFS) Path() string { return s.path }

// Graph returns the dependency graph shared by this resolution.
func (s *ScopedFS) Graph() *depgraph.Graph { return s.graph }

// Resolve maps logical through the alias table, or else resolves it against
// Dir. Absolute paths are only cleaned.
func (s *ScopedFS) Resolve(logical string) string {
	if mapped, ok := s.engine.mapper.Map(logical); ok {
		p := filepath.FromSlash(mapped)
		if !filepath.IsAbs(p) {
			p = filepath.Join(s.engine.baseDir(), p)
		}
		return filepath.Clean(p)
	}

	p := filepath.FromSlash(logical)
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(s.dir, p)
}

// Read returns the transformed content of logical. The file goes through the
// engine with the same graph, so it is transformed by the same rules as a
// top-level file and a file already being resolved fails with a
// CYCLIC_DEPENDENCY error.
func (s *ScopedFS) Read(logical string) ([]byte, error) {
	target, err := s.enter(logical)
	if err != nil {
		return nil, err
	}

	if content, ok := s.graph.Completed(target); ok {
		s.logger.Trace().Str("path", target).Msg("Reusing transformed dependency")
		return content, nil
	}

	raw, err := s.engine.readFile(target, s.path)
	if err != nil {
		return nil, err
	}

	res, err := s.engine.Dispatch(File{Path: target, Content: raw}, s.graph)
	if err != nil {
		return nil, err
	}
	return res.Content, nil
}

// ReadRaw returns the bytes of logical as stored, without transforming them.
func (s *ScopedFS) ReadRaw(logical string) ([]byte, error) {
	target, err := s.enter(logical)
	if err != nil {
		return nil, err
	}
	return s.engine.readFile(target, s.path)
}

// Exists reports whether logical resolves to an existing regular file.
func (s *ScopedFS) Exists(logical string) bool {
	info, err := s.engine.fs.Stat(s.Resolve(logical))
	return err == nil && !info.IsDir()
}

// enter resolves logical, checks it against the in-progress stack and
// records the import edge.
func (s *ScopedFS) enter(logical string) (string, error) {
	target := s.Resolve(logical)
	s.logger.Debug().
		Str("from", s.path).
		Str("import", logical).
		Str("resolved", target).
		Msg("Reading dependency")

	if err := s.graph.Check(target); err != nil {
		return "", cycleError(err, target, s.path)
	}
	s.graph.AddEdge(s.path, target)
	return target, nil
}
