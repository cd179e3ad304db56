// Test Type: Unit Test
// Description: Tests for the HTML minifier

package htmlminify_test

import (
	"testing"

	"github.com/guesant/marech/pkg/transformers/htmlminify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func minify(t *testing.T, opts htmlminify.Options, in string) string {
	t.Helper()
	out, err := htmlminify.New(opts).Transform([]byte(in), nil)
	require.NoError(t, err)
	return string(out.Content)
}

func TestMinify_Document(t *testing.T) {
	in := `<!DOCTYPE html>
<html>
  <head>
    <!-- comment -->
    <title>  Hello   World  </title>
  </head>
  <body>
    <p   class="a  b"  >Hi   there</p>
    <pre>  keep
   this  </pre>
  </body>
</html>
`
	want := "<!DOCTYPE html><html><head><title> Hello World </title></head>" +
		`<body><p class="a  b">Hi there</p><pre>  keep` + "\n   this  </pre></body></html>"

	assert.Equal(t, want, minify(t, htmlminify.DefaultOptions(), in))
}

func TestMinify_InlineWhitespaceKept(t *testing.T) {
	assert.Equal(t, "<b>a</b> <i>b</i>",
		minify(t, htmlminify.DefaultOptions(), "<b>a</b>   <i>b</i>"))
}

func TestMinify_LineBreakBetweenInlineElements(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"inline siblings", "<p><span>Hello</span>\n<span>world</span></p>", "<p><span>Hello</span> <span>world</span></p>"},
		{"indented inline", "<p>\n  <a href=\"#\">a</a>\n  <b>b</b>\n</p>", `<p><a href="#">a</a> <b>b</b></p>`},
		{"across removed comment", "<em>a</em>\n<!-- c -->\n<em>b</em>", "<em>a</em> <em>b</em>"},
		{"block siblings", "<ul>\n  <li>a</li>\n  <li>b</li>\n</ul>", "<ul><li>a</li><li>b</li></ul>"},
		{"inline next to block", "<div>\n  <span>a</span>\n</div>", "<div><span>a</span></div>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, minify(t, htmlminify.DefaultOptions(), tt.in))
		})
	}
}

func TestMinify_ScriptAndStylePreserved(t *testing.T) {
	in := "<script>\n  var a  =  1; // <!-- not a comment -->\n</script><style>\n  p  { color: red }\n</style>"
	assert.Equal(t, in, minify(t, htmlminify.DefaultOptions(), in))
}

func TestMinify_Comments(t *testing.T) {
	in := "<p>a</p><!-- note --><!--[if IE]><p>old</p><![endif]-->"

	t.Run("removed_by_default", func(t *testing.T) {
		assert.Equal(t, "<p>a</p>", minify(t, htmlminify.DefaultOptions(), in))
	})

	t.Run("kept_when_disabled", func(t *testing.T) {
		opts := htmlminify.DefaultOptions()
		opts.RemoveComments = false
		assert.Equal(t, in, minify(t, opts, in))
	})

	t.Run("conditional_comments_kept", func(t *testing.T) {
		opts := htmlminify.DefaultOptions()
		opts.KeepConditionalComments = true
		assert.Equal(t, "<p>a</p><!--[if IE]><p>old</p><![endif]-->", minify(t, opts, in))
	})
}

func TestMinify_NoCollapse(t *testing.T) {
	opts := htmlminify.Options{RemoveComments: true}
	in := "<p  class=\"x\">a   b</p>\n<!-- c -->\n"
	assert.Equal(t, "<p  class=\"x\">a   b</p>\n\n", minify(t, opts, in))
}

func TestMinify_SelfClosing(t *testing.T) {
	assert.Equal(t, `<img src="a.png" /><br/>`,
		minify(t, htmlminify.DefaultOptions(), `<img   src="a.png"   /><br/>`))
}

func TestMinify_Idempotent(t *testing.T) {
	in := "<div>\n  <p>one   two</p>\n  <!-- x -->\n</div>"
	once := minify(t, htmlminify.DefaultOptions(), in)
	assert.Equal(t, once, minify(t, htmlminify.DefaultOptions(), once))
}
