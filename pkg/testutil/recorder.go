package testutil

import (
	"github.com/guesant/marech/pkg/rules"
	"github.com/guesant/marech/pkg/transform"
)

// Call is one invocation seen by a Recorder.
type Call struct {
	FilePath string
	Dir      string
	Content  string
}

// Recorder builds transformers that record their calls and return the
// content passed through Fn (or unchanged when Fn is nil).
type Recorder struct {
	Calls []Call
	Fn    func(content []byte, fsys transform.FileSystem) ([]byte, error)
}

// Factory returns a rules.Factory backed by the recorder.
func (r *Recorder) Factory() rules.Factory {
	return func(ctx transform.Context, _ *rules.RuleSet) (transform.Transformer, error) {
		return transform.Func(func(content []byte, fsys transform.FileSystem) (*transform.Output, error) {
			r.Calls = append(r.Calls, Call{
				FilePath: ctx.FilePath,
				Dir:      fsys.Dir(),
				Content:  string(content),
			})
			if r.Fn == nil {
				return &transform.Output{Content: content}, nil
			}
			out, err := r.Fn(content, fsys)
			if err != nil {
				return nil, err
			}
			return &transform.Output{Content: out}, nil
		}), nil
	}
}
