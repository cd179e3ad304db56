// Package transform defines the contract between the rule engine and the
// transformers it instantiates.
package transform

import (
	"github.com/guesant/marech/pkg/depgraph"
)

// Kind names a transformer implementation. Options for each kind are modeled
// as their own type so a rule carries typed options instead of a free-form map.
type Kind string

const (
	KindIdentity   Kind = "identity"
	KindHTMLImport Kind = "html-import"
	KindHTMLMinify Kind = "html-minify"
)

// Options is implemented by every per-kind options type.
type Options interface {
	Kind() Kind
}

// FileSystem is the directory-scoped view of the project a transformer gets.
// Relative paths resolve against Dir; aliased paths go through the alias table.
type FileSystem interface {
	// Dir is the directory this view is rooted at.
	Dir() string
	// Path is the file the transformer is working on.
	Path() string
	// Resolve turns a logical import path into a cleaned absolute path.
	Resolve(logical string) string
	// Read returns the content of a dependency after it went through the
	// same rules as top-level files.
	Read(logical string) ([]byte, error)
	// ReadRaw returns the bytes of a dependency as stored on disk.
	ReadRaw(logical string) ([]byte, error)
	// Exists reports whether logical resolves to an existing file.
	Exists(logical string) bool
}

// Context is what a rule factory receives for one file.
type Context struct {
	FileContent []byte
	FilePath    string
	Graph       *depgraph.Graph
	FS          FileSystem
}

// Output is the result of one transformation.
type Output struct {
	Content []byte
	// Dependencies lists extra files the transformer depends on that were
	// not read through the FileSystem.
	Dependencies []string
}

// Transformer rewrites the content of one file.
type Transformer interface {
	Transform(content []byte, fsys FileSystem) (*Output, error)
}

// Func adapts a plain function to the Transformer interface.
type Func func(content []byte, fsys FileSystem) (*Output, error)

// Transform calls f.
func (f Func) Transform(content []byte, fsys FileSystem) (*Output, error) {
	return f(content, fsys)
}
