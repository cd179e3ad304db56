// Package htmlimport inlines HTML fragments.
//
// An element such as
//
//	<import src="./partials/nav.html"></import>
//
// is replaced by the content of the referenced file. The file is read through
// the transformer's scoped filesystem, so aliases apply and the imported file
// is itself transformed by the matching rules before being inlined. Adding a
// `raw` attribute inlines the file as stored instead.
package htmlimport

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/guesant/marech/pkg/logging"
	"github.com/guesant/marech/pkg/rules"
	"github.com/guesant/marech/pkg/transform"
	"github.com/rs/zerolog"
	"golang.org/x/net/html"
)

// Options configures the inliner.
type Options struct {
	// Tag is the element name that triggers an import.
	Tag string `koanf:"tag" toml:"tag,omitempty" yaml:"tag,omitempty"`
	// Attr is the attribute holding the import path.
	Attr string `koanf:"attr" toml:"attr,omitempty" yaml:"attr,omitempty"`
}

// Kind implements transform.Options.
func (Options) Kind() transform.Kind { return transform.KindHTMLImport }

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{Tag: "import", Attr: "src"}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Tag == "" {
		o.Tag = d.Tag
	}
	if o.Attr == "" {
		o.Attr = d.Attr
	}
	o.Tag = strings.ToLower(o.Tag)
	o.Attr = strings.ToLower(o.Attr)
	return o
}

// Transformer replaces import elements with the content they reference.
type Transformer struct {
	opts   Options
	logger zerolog.Logger
}

// New creates an inliner.
func New(opts Options) (*Transformer, error) {
	opts = opts.withDefaults()
	if strings.ContainsAny(opts.Tag, " \t\n<>/") {
		return nil, fmt.Errorf("invalid import tag %q", opts.Tag)
	}
	return &Transformer{
		opts:   opts,
		logger: logging.GetLogger("transformers.htmlimport"),
	}, nil
}

// Factory returns a rules.Factory building inliners with opts.
func Factory(opts Options) rules.Factory {
	return func(transform.Context, *rules.RuleSet) (transform.Transformer, error) {
		t, err := New(opts)
		if err != nil {
			return nil, err
		}
		return t, nil
	}
}

// Transform inlines every import element of content.
func (t *Transformer) Transform(content []byte, fsys transform.FileSystem) (*transform.Output, error) {
	z := html.NewTokenizer(bytes.NewReader(content))
	var buf bytes.Buffer
	buf.Grow(len(content))

	// nesting depth inside a non self-closing import element being replaced
	skip := 0

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if err := z.Err(); err != io.EOF {
				return nil, err
			}
			break
		}

		raw := append([]byte(nil), z.Raw()...)

		switch tt {
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			if string(name) != t.opts.Tag {
				if skip == 0 {
					buf.Write(raw)
				}
				continue
			}
			if skip > 0 {
				if tt == html.StartTagToken {
					skip++
				}
				continue
			}

			src, inlineRaw := t.attrs(z, hasAttr)
			if src == "" {
				return nil, fmt.Errorf("<%s> element without %q attribute in %s", t.opts.Tag, t.opts.Attr, fsys.Path())
			}

			data, err := t.read(fsys, src, inlineRaw)
			if err != nil {
				return nil, fmt.Errorf("import %q: %w", src, err)
			}
			buf.Write(data)

			if tt == html.StartTagToken {
				skip = 1
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			if skip > 0 {
				if string(name) == t.opts.Tag {
					skip--
				}
				continue
			}
			buf.Write(raw)

		default:
			if skip == 0 {
				buf.Write(raw)
			}
		}
	}

	return &transform.Output{Content: buf.Bytes()}, nil
}

func (t *Transformer) attrs(z *html.Tokenizer, more bool) (src string, inlineRaw bool) {
	for more {
		var key, val []byte
		key, val, more = z.TagAttr()
		switch string(key) {
		case t.opts.Attr:
			src = strings.TrimSpace(string(val))
		case "raw":
			inlineRaw = true
		}
	}
	return src, inlineRaw
}

func (t *Transformer) read(fsys transform.FileSystem, src string, inlineRaw bool) ([]byte, error) {
	t.logger.Debug().
		Str("file", fsys.Path()).
		Str("src", src).
		Bool("raw", inlineRaw).
		Msg("Inlining import")
	if inlineRaw {
		return fsys.ReadRaw(src)
	}
	return fsys.Read(src)
}
