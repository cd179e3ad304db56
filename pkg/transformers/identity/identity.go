// Package identity provides a transformer that returns its input unchanged.
// It is useful for rules that only need to claim files, and in tests.
package identity

import (
	"github.com/guesant/marech/pkg/rules"
	"github.com/guesant/marech/pkg/transform"
)

// Options configures the identity transformer. It has none.
type Options struct{}

// Kind implements transform.Options.
func (Options) Kind() transform.Kind { return transform.KindIdentity }

// Transformer passes content through.
type Transformer struct{}

// New creates an identity transformer.
func New() *Transformer { return &Transformer{} }

// Transform returns content unchanged.
func (t *Transformer) Transform(content []byte, _ transform.FileSystem) (*transform.Output, error) {
	return &transform.Output{Content: content}, nil
}

// Factory returns a rules.Factory building identity transformers.
func Factory() rules.Factory {
	return func(transform.Context, *rules.RuleSet) (transform.Transformer, error) {
		return New(), nil
	}
}
