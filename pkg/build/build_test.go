// Test Type: Integration Test
// Description: Tests for building file groups on an in-memory filesystem

package build_test

import (
	"context"
	"testing"

	"github.com/guesant/marech/pkg/build"
	"github.com/guesant/marech/pkg/config"
	"github.com/guesant/marech/pkg/errors"
	"github.com/guesant/marech/pkg/presets"
	"github.com/guesant/marech/pkg/testutil"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newConfig(project *testutil.Project, groups ...config.FileGroup) *config.Config {
	cfg := config.Default()
	cfg.Dir = project.Root
	cfg.Files = groups
	return cfg
}

func group(project *testutil.Project, input, match, output, filename string) config.FileGroup {
	return config.FileGroup{
		Input:  config.Input{Path: project.Path(input), Match: match},
		Output: config.Output{Path: project.Path(output), Filename: filename},
	}
}

func run(t *testing.T, cfg *config.Config, project *testutil.Project, opts build.Options) (*build.Report, error) {
	t.Helper()
	b, err := build.New(cfg, project.Fs, opts)
	require.NoError(t, err)
	return b.Run(context.Background())
}

func TestBuild_EndToEnd(t *testing.T) {
	project := testutil.NewProject(t, "/project", map[string]string{
		"src/index.html":        `<body><import src="~/partials/nav.html"></import></body>`,
		"src/about/index.html":  `<import src="../partials/nav.html" />`,
		"src/partials/nav.html": `<nav>N</nav>`,
		"src/style.css":         `body{}`,
	})
	cfg := newConfig(project, group(project, "src", "", "dist", ""))
	cfg.Presets.MappedPaths = map[string]string{"~": "src"}

	report, err := run(t, cfg, project, build.Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"about/index.html", "index.html", "partials/nav.html", "style.css"}, project.Files(t, "dist"))
	assert.Equal(t, `<body><nav>N</nav></body>`, project.ReadFile(t, "dist/index.html"))
	assert.Equal(t, `<nav>N</nav>`, project.ReadFile(t, "dist/about/index.html"))
	assert.Equal(t, `body{}`, project.ReadFile(t, "dist/style.css"))

	assert.Equal(t, 4, report.Built())
	for _, f := range report.Files {
		if f.Source == project.Path("src/style.css") {
			assert.False(t, f.Matched)
		} else {
			assert.True(t, f.Matched, f.Source)
			assert.Equal(t, presets.HTMLImportRule, f.Rule)
		}
	}
}

func TestBuild_Plan(t *testing.T) {
	project := testutil.NewProject(t, "/project", map[string]string{
		"src/b.html":      `b`,
		"src/a.html":      `a`,
		"src/sub/c.html":  `c`,
		"src/notes.txt":   `n`,
		"pages/home.html": `h`,
	})
	cfg := newConfig(project,
		group(project, "src", "**/*.html", "dist", ""),
		group(project, "pages/home.html", "", "public", "index.html"),
	)

	b, err := build.New(cfg, project.Fs, build.Options{})
	require.NoError(t, err)
	jobs, err := b.Plan()
	require.NoError(t, err)

	want := []build.Job{
		{Group: 0, Source: project.Path("src/a.html"), Output: project.Path("dist/a.html")},
		{Group: 0, Source: project.Path("src/b.html"), Output: project.Path("dist/b.html")},
		{Group: 0, Source: project.Path("src/sub/c.html"), Output: project.Path("dist/sub/c.html")},
		{Group: 1, Source: project.Path("pages/home.html"), Output: project.Path("public/index.html")},
	}
	if diff := cmp.Diff(want, jobs); diff != "" {
		t.Errorf("unexpected plan (-want +got):\n%s", diff)
	}
}

func TestBuild_InputMatch(t *testing.T) {
	project := testutil.NewProject(t, "/project", map[string]string{
		"src/index.html":        `<import src="partials/nav.html"></import>`,
		"src/partials/nav.html": `<nav></nav>`,
	})
	cfg := newConfig(project, group(project, "src", "*.html", "dist", ""))

	_, err := run(t, cfg, project, build.Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"index.html"}, project.Files(t, "dist"))
	assert.Equal(t, `<nav></nav>`, project.ReadFile(t, "dist/index.html"))
}

func TestBuild_MinifyPresetOnly(t *testing.T) {
	project := testutil.NewProject(t, "/project", map[string]string{
		"index.html": "<p>\n  a   b\n</p>\n<!-- c -->\n",
	})
	cfg := newConfig(project, group(project, "index.html", "", "out", ""))
	cfg.Presets.HTMLImport.Enabled = presets.Bool(false)
	cfg.Presets.HTMLMinify.Enabled = presets.Bool(true)

	_, err := run(t, cfg, project, build.Options{})
	require.NoError(t, err)
	assert.Equal(t, "<p> a b </p>", project.ReadFile(t, "out/index.html"))
}

func TestBuild_SingleFileRename(t *testing.T) {
	project := testutil.NewProject(t, "/project", map[string]string{
		"pages/home.html": `<p>home</p>`,
	})
	cfg := newConfig(project, group(project, "pages/home.html", "", "public", "index.html"))

	report, err := run(t, cfg, project, build.Options{})
	require.NoError(t, err)

	require.Len(t, report.Files, 1)
	assert.Equal(t, project.Path("public/index.html"), report.Files[0].Output)
	assert.Equal(t, `<p>home</p>`, project.ReadFile(t, "public/index.html"))
}

func TestBuild_SkipsOutputInsideInput(t *testing.T) {
	project := testutil.NewProject(t, "/project", map[string]string{
		"a.txt":        "a",
		"dist/old.txt": "old",
	})
	cfg := newConfig(project, group(project, ".", "", "dist", ""))

	report, err := run(t, cfg, project, build.Options{})
	require.NoError(t, err)

	require.Len(t, report.Files, 1)
	assert.Equal(t, []string{"a.txt", "old.txt"}, project.Files(t, "dist"))
}

func TestBuild_Failures(t *testing.T) {
	files := map[string]string{
		"src/a.html": `<import src="missing.html"></import>`,
		"src/b.html": `<p>b</p>`,
	}

	t.Run("keep_going", func(t *testing.T) {
		project := testutil.NewProject(t, "/project", files)
		cfg := newConfig(project, group(project, "src", "", "dist", ""))

		report, err := run(t, cfg, project, build.Options{Jobs: 2})
		require.Error(t, err)
		assert.Equal(t, errors.ErrBuildFailed, errors.GetErrorCode(err))

		failed := report.Failed()
		require.Len(t, failed, 1)
		assert.Equal(t, project.Path("src/a.html"), failed[0].Source)
		assert.True(t, errors.IsErrorCode(failed[0].Err, errors.ErrFileNotFound))

		assert.Equal(t, 1, report.Built())
		assert.Equal(t, []string{"b.html"}, project.Files(t, "dist"))
	})

	t.Run("fail_fast", func(t *testing.T) {
		project := testutil.NewProject(t, "/project", files)
		cfg := newConfig(project, group(project, "src", "", "dist", ""))

		_, err := run(t, cfg, project, build.Options{Jobs: 1, FailFast: true})
		require.Error(t, err)
		assert.Equal(t, errors.ErrTransformerExecute, errors.GetErrorCode(err))
		assert.True(t, errors.IsErrorCode(err, errors.ErrFileNotFound))
		assert.Equal(t, project.Path("src/a.html"), errors.GetErrorDetails(err)["path"])
	})

	t.Run("every_failure_searchable", func(t *testing.T) {
		project := testutil.NewProject(t, "/project", map[string]string{
			"src/a.html":             `<import src="missing.html"></import>`,
			"src/b.html":             `<import src="partials/loop.html"></import>`,
			"src/partials/loop.html": `<import src="loop.html"></import>`,
		})
		cfg := newConfig(project, group(project, "src", "*.html", "dist", ""))

		_, err := run(t, cfg, project, build.Options{Jobs: 1})
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrFileNotFound))
		assert.True(t, errors.IsErrorCode(err, errors.ErrCyclicDependency))

		cycle, ok := errors.FindError(err, errors.ErrCyclicDependency)
		require.True(t, ok)
		assert.Equal(t, project.Path("src/partials/loop.html"), cycle.Details["path"])
	})

	t.Run("missing_input", func(t *testing.T) {
		project := testutil.NewProject(t, "/project", nil)
		cfg := newConfig(project, group(project, "src", "", "dist", ""))

		report, err := run(t, cfg, project, build.Options{})
		assert.Nil(t, report)
		assert.True(t, errors.IsErrorCode(err, errors.ErrFileNotFound))
	})
}

func TestBuild_DryRun(t *testing.T) {
	project := testutil.NewProject(t, "/project", map[string]string{
		"src/index.html": `<p>x</p>`,
	})
	cfg := newConfig(project, group(project, "src", "", "dist", ""))

	report, err := run(t, cfg, project, build.Options{DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Built())
	assert.Equal(t, len(`<p>x</p>`), report.Files[0].Size)
	assert.False(t, project.Exists("dist"))
}

func TestBuild_CanceledContext(t *testing.T) {
	project := testutil.NewProject(t, "/project", map[string]string{
		"src/a.txt": "a",
	})
	cfg := newConfig(project, group(project, "src", "", "dist", ""))
	b, err := build.New(cfg, project.Fs, build.Options{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = b.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, project.Exists("dist/a.txt"))
}

func TestBuild_InvalidRules(t *testing.T) {
	project := testutil.NewProject(t, "/project", nil)
	cfg := newConfig(project)
	cfg.Rules = []config.Rule{{Match: "*.scss", Transformer: "sass"}}

	_, err := build.New(cfg, project.Fs, build.Options{})
	assert.True(t, errors.IsErrorCode(err, errors.ErrUnknownTransformer))
}

func TestBuild_OnDisk(t *testing.T) {
	project := testutil.NewOSProject(t, map[string]string{
		"src/index.html":     `<main><import src="parts/a.html" /></main>`,
		"src/parts/a.html":   `<p>a</p>`,
		"src/assets/app.css": `p{}`,
	})
	cfg := newConfig(project, group(project, "src", "", "out", ""))

	b, err := build.New(cfg, nil, build.Options{Jobs: 2})
	require.NoError(t, err)
	report, err := b.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, report.Built())
	assert.Equal(t, []string{"assets/app.css", "index.html", "parts/a.html"}, project.Files(t, "out"))
	assert.Equal(t, `<main><p>a</p></main>`, project.ReadFile(t, "out/index.html"))
}
