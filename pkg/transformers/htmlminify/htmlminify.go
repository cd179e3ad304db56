// Package htmlminify shrinks HTML by dropping comments and collapsing
// whitespace. Content of pre, textarea, script and style elements is kept
// verbatim.
package htmlminify

import (
	"bytes"
	"io"
	"strings"

	"github.com/guesant/marech/pkg/logging"
	"github.com/guesant/marech/pkg/rules"
	"github.com/guesant/marech/pkg/transform"
	"github.com/rs/zerolog"
	"golang.org/x/net/html"
)

// Options configures the minifier.
type Options struct {
	RemoveComments          bool `koanf:"remove_comments" toml:"remove_comments" yaml:"remove_comments"`
	CollapseWhitespace      bool `koanf:"collapse_whitespace" toml:"collapse_whitespace" yaml:"collapse_whitespace"`
	KeepConditionalComments bool `koanf:"keep_conditional_comments" toml:"keep_conditional_comments" yaml:"keep_conditional_comments"`
}

// Kind implements transform.Options.
func (Options) Kind() transform.Kind { return transform.KindHTMLMinify }

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{
		RemoveComments:     true,
		CollapseWhitespace: true,
	}
}

var preserved = map[string]bool{
	"pre":      true,
	"textarea": true,
	"script":   true,
	"style":    true,
}

// blockTags are elements whitespace next to is not rendered, so it can be
// dropped instead of collapsed.
var blockTags = map[string]bool{
	"address": true, "article": true, "aside": true, "base": true,
	"blockquote": true, "body": true, "dd": true, "details": true,
	"dialog": true, "div": true, "dl": true, "dt": true, "fieldset": true,
	"figcaption": true, "figure": true, "footer": true, "form": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"head": true, "header": true, "hr": true, "html": true, "li": true,
	"link": true, "main": true, "meta": true, "nav": true, "noscript": true,
	"ol": true, "option": true, "p": true, "pre": true, "script": true,
	"section": true, "style": true, "summary": true, "table": true,
	"tbody": true, "td": true, "template": true, "tfoot": true, "th": true,
	"thead": true, "title": true, "tr": true, "ul": true,
}

// Transformer minifies HTML.
type Transformer struct {
	opts   Options
	logger zerolog.Logger
}

// New creates a minifier.
func New(opts Options) *Transformer {
	return &Transformer{
		opts:   opts,
		logger: logging.GetLogger("transformers.htmlminify"),
	}
}

// Factory returns a rules.Factory building minifiers with opts.
func Factory(opts Options) rules.Factory {
	return func(transform.Context, *rules.RuleSet) (transform.Transformer, error) {
		return New(opts), nil
	}
}

// Transform minifies content. The filesystem is not used.
func (t *Transformer) Transform(content []byte, _ transform.FileSystem) (*transform.Output, error) {
	z := html.NewTokenizer(bytes.NewReader(content))
	var buf bytes.Buffer
	buf.Grow(len(content))

	var (
		preserve  int
		pending   bool
		lastBlock = true
	)
	// flush writes the whitespace held back between two tokens. It renders
	// as one space unless a block boundary sits on either side.
	flush := func(nextBlock bool) {
		if pending && !nextBlock && !lastBlock {
			buf.WriteByte(' ')
		}
		pending = false
	}

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
		case html.CommentToken:
			if t.opts.RemoveComments && !(t.opts.KeepConditionalComments && isConditional(raw)) {
				continue
			}
			flush(false)
			buf.Write(raw)

		case html.TextToken:
			if preserve > 0 || !t.opts.CollapseWhitespace {
				buf.Write(raw)
				continue
			}
			if len(bytes.TrimSpace(raw)) == 0 {
				pending = true
				continue
			}
			flush(false)
			buf.Write(collapseText(raw))
			lastBlock = false

		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if preserved[tag] {
				switch {
				case tt == html.StartTagToken:
					preserve++
				case tt == html.EndTagToken && preserve > 0:
					preserve--
				}
			}
			block := blockTags[tag]
			flush(block)
			buf.Write(t.tag(raw))
			lastBlock = block

		default:
			flush(true)
			buf.Write(raw)
			lastBlock = true
		}
	}

	t.logger.Trace().
		Int("before", len(content)).
		Int("after", buf.Len()).
		Msg("Minified HTML")

	return &transform.Output{Content: buf.Bytes()}, nil
}

func (t *Transformer) tag(raw []byte) []byte {
	if !t.opts.CollapseWhitespace {
		return raw
	}
	return collapseTag(raw)
}

// collapseText squeezes whitespace runs to one space.
func collapseText(raw []byte) []byte {
	out := make([]byte, 0, len(raw))
	inSpace := false
	for _, c := range raw {
		if isSpace(c) {
			if !inSpace {
				out = append(out, ' ')
			}
			inSpace = true
			continue
		}
		inSpace = false
		out = append(out, c)
	}
	return out
}

// collapseTag squeezes whitespace inside a tag, leaving quoted attribute
// values alone and dropping the space before the closing bracket.
func collapseTag(raw []byte) []byte {
	out := make([]byte, 0, len(raw))
	var quote byte
	inSpace := false
	for _, c := range raw {
		if quote != 0 {
			out = append(out, c)
			if c == quote {
				quote = 0
			}
			continue
		}
		if isSpace(c) {
			inSpace = true
			continue
		}
		if inSpace {
			if c != '>' {
				out = append(out, ' ')
			}
			inSpace = false
		}
		if c == '"' || c == '\'' {
			quote = c
		}
		out = append(out, c)
	}
	return out
}

func isConditional(raw []byte) bool {
	s := string(raw)
	s = strings.TrimPrefix(s, "<!--")
	s = strings.TrimSuffix(s, "-->")
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "[if") || strings.HasSuffix(s, "[endif]")
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}
