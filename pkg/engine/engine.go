package engine

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/guesant/marech/pkg/depgraph"
	"github.com/guesant/marech/pkg/errors"
	"github.com/guesant/marech/pkg/logging"
	"github.com/guesant/marech/pkg/pathmap"
	"github.com/guesant/marech/pkg/rules"
	"github.com/guesant/marech/pkg/transform"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// Config holds what an Engine needs.
type Config struct {
	// Rules is the ordered rule set files are matched against.
	Rules *rules.RuleSet
	// MappedPaths is the alias table used when resolving imports.
	MappedPaths map[string]string
	// Fs is the filesystem files are read from. Defaults to the OS filesystem.
	Fs afero.Fs
	// Root is the project root. Files under it are matched by their
	// root-relative path, and relative alias targets resolve against it.
	Root string
}

// Engine matches files to rules and runs the selected transformers.
type Engine struct {
	rules  *rules.RuleSet
	mapper *pathmap.Mapper
	fs     afero.Fs
	root   string
	logger zerolog.Logger
}

// File is one input to Dispatch.
type File struct {
	Path    string
	Content []byte
}

// Result is the outcome of dispatching one file.
type Result struct {
	// Path is the absolute path of the file.
	Path string
	// Content is the transformed content, or the original content when no
	// rule matched.
	Content []byte
	// Matched reports whether a rule applied. A matched rule may still leave
	// the content unchanged.
	Matched bool
	// Rule is the name of the matched rule.
	Rule string
	// Kind is the transformer kind of the matched rule, when known.
	Kind transform.Kind
	// Dependencies are the files this file imported directly.
	Dependencies []string
}

// NoRuleMatched reports whether the file was passed through untouched
// because no rule applied to it.
func (r *Result) NoRuleMatched() bool {
	return !r.Matched
}

// New creates an Engine.
func New(cfg Config) *Engine {
	fsys := cfg.Fs
	if fsys == nil {
		fsys = afero.NewOsFs()
	}

	root := cfg.Root
	if root != "" {
		root = filepath.Clean(root)
		if !filepath.IsAbs(root) {
			if abs, err := filepath.Abs(root); err == nil {
				root = abs
			}
		}
	}

	return &Engine{
		rules:  cfg.Rules,
		mapper: pathmap.New(cfg.MappedPaths),
		fs:     fsys,
		root:   root,
		logger: logging.GetLogger("engine"),
	}
}

// Dispatch is the one-shot form of New(...).Dispatch.
func Dispatch(fsys afero.Fs, file File, ruleSet *rules.RuleSet, mappedPaths map[string]string, graph *depgraph.Graph) (*Result, error) {
	return New(Config{Rules: ruleSet, MappedPaths: mappedPaths, Fs: fsys}).Dispatch(file, graph)
}

// Rules returns the rule set of the engine.
func (e *Engine) Rules() *rules.RuleSet { return e.rules }

// Fs returns the filesystem the engine reads from.
func (e *Engine) Fs() afero.Fs { return e.fs }

// Root returns the project root, or "" when none was configured.
func (e *Engine) Root() string { return e.root }

// Dispatch runs the first rule matching file.Path. When no rule matches, the
// content is returned unchanged and Result.NoRuleMatched reports true.
// A nil graph starts a new top-level resolution.
//
// Errors from the factory or the transformer are returned wrapped with the
// file path and the rule name; they are never swallowed.
func (e *Engine) Dispatch(file File, graph *depgraph.Graph) (*Result, error) {
	if graph == nil {
		graph = depgraph.New()
	}

	absPath := e.absolute(file.Path)
	matchPath := e.matchPathFor(file.Path, absPath)

	rule, _, ok := e.rules.Match(matchPath)
	if !ok {
		e.logger.Debug().
			Str("path", absPath).
			Msg("No rule matched, passing file through")
		return &Result{Path: absPath, Content: file.Content}, nil
	}

	logger := logging.ForFile(e.logger, absPath, rule.Name)
	logger.Debug().Int("depth", len(graph.Stack())).Msg("Dispatching file")

	if err := graph.Enter(absPath); err != nil {
		return nil, cycleError(err, absPath, "")
	}
	defer graph.Leave(absPath)

	scoped := e.Scope(absPath, graph)
	ctx := transform.Context{
		FileContent: file.Content,
		FilePath:    absPath,
		Graph:       graph,
		FS:          scoped,
	}

	transformer, err := rule.Factory(ctx, e.rules)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrTransformerConstruct,
			"failed to construct transformer for %s (rule %s)", absPath, rule.Name).
			WithDetail("path", absPath).
			WithDetail("rule", rule.Name)
	}
	if transformer == nil {
		return nil, errors.Newf(errors.ErrTransformerConstruct,
			"rule %s returned no transformer for %s", rule.Name, absPath).
			WithDetail("path", absPath).
			WithDetail("rule", rule.Name)
	}

	out, err := transformer.Transform(file.Content, scoped)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrTransformerExecute,
			"transformer failed on %s (rule %s)", absPath, rule.Name).
			WithDetail("path", absPath).
			WithDetail("rule", rule.Name)
	}

	content := file.Content
	var extra []string
	if out != nil {
		content = out.Content
		for _, dep := range out.Dependencies {
			extra = append(extra, scoped.Resolve(dep))
		}
	}
	graph.Complete(absPath, content)

	deps := graph.Dependencies(absPath)
	for _, dep := range extra {
		if !contains(deps, dep) {
			deps = append(deps, dep)
		}
	}

	logger.Debug().
		Int("dependencies", len(deps)).
		Msg("File transformed")

	return &Result{
		Path:         absPath,
		Content:      content,
		Matched:      true,
		Rule:         rule.Name,
		Kind:         rule.Kind,
		Dependencies: deps,
	}, nil
}

// DispatchPath reads path from the engine filesystem and dispatches it.
func (e *Engine) DispatchPath(path string, graph *depgraph.Graph) (*Result, error) {
	absPath := e.absolute(path)
	content, err := e.readFile(absPath, "")
	if err != nil {
		return nil, err
	}
	return e.Dispatch(File{Path: absPath, Content: content}, graph)
}

// Scope returns the filesystem view a transformer working on filePath gets.
func (e *Engine) Scope(filePath string, graph *depgraph.Graph) *ScopedFS {
	if graph == nil {
		graph = depgraph.New()
	}
	absPath := e.absolute(filePath)
	return &ScopedFS{
		engine: e,
		dir:    filepath.Dir(absPath),
		path:   absPath,
		graph:  graph,
		logger: logging.GetLogger("engine.fs"),
	}
}

// MatchPath returns the path rules are matched against for filePath.
func (e *Engine) MatchPath(filePath string) string {
	return e.matchPathFor(filePath, e.absolute(filePath))
}

func (e *Engine) absolute(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	if e.root != "" {
		return filepath.Join(e.root, p)
	}
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}

// matchPathFor is the root-relative path of absPath when it lies under the
// root. Without a root the path is matched as given, so a relative path keeps
// matching relative patterns.
func (e *Engine) matchPathFor(given, absPath string) string {
	if e.root == "" {
		return rules.NormalizePath(filepath.Clean(given))
	}
	if rel, err := filepath.Rel(e.root, absPath); err == nil &&
		rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(rel)
	}
	return filepath.ToSlash(absPath)
}

// baseDir is what relative alias targets resolve against.
func (e *Engine) baseDir() string {
	if e.root != "" {
		return e.root
	}
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

func (e *Engine) readFile(path, importer string) ([]byte, error) {
	info, err := e.fs.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(err, errors.ErrFileNotFound, "file not found: %s", path).
				WithDetail("path", path).
				WithDetail("importer", importer)
		}
		return nil, errors.Wrapf(err, errors.ErrFileRead, "cannot stat %s", path).
			WithDetail("path", path)
	}
	if info.IsDir() {
		return nil, errors.Newf(errors.ErrFileRead, "%s is a directory", path).
			WithDetail("path", path).
			WithDetail("importer", importer)
	}

	content, err := afero.ReadFile(e.fs, path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileRead, "cannot read %s", path).
			WithDetail("path", path)
	}
	return content, nil
}

func cycleError(err error, path, importer string) error {
	var cycle *depgraph.CycleError
	if !stderrors.As(err, &cycle) {
		return errors.Wrap(err, errors.ErrInternal, "dependency graph failure")
	}
	e := errors.Wrapf(cycle, errors.ErrCyclicDependency, "cyclic dependency on %s", path).
		WithDetail("path", path).
		WithDetail("chain", cycle.Chain)
	if importer != "" {
		e = e.WithDetail("importer", importer)
	}
	return e
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
