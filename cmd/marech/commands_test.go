package marech

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/guesant/marech/pkg/config"
	"github.com/guesant/marech/pkg/errors"
	"github.com/guesant/marech/pkg/filesystem"
	"github.com/muesli/termenv"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const projectConfig = `
[[files]]
input = { path = "src", match = "**/*.html" }
output = { path = "dist" }

[[rules]]
name = "pages"
match = "pages/**"
transformer = "identity"

[presets.mapped_paths]
"~" = "src"
`

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return dir
}

func sampleProject(t *testing.T) string {
	return writeProject(t, map[string]string{
		"marech.toml":              projectConfig,
		"src/index.html":           `<html><body><import src="~/partials/header.html"></import><p>Hi</p></body></html>`,
		"src/partials/header.html": `<header>Top</header>`,
	})
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_STATE_HOME", t.TempDir())

	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestBuildCommand(t *testing.T) {
	dir := sampleProject(t)

	out, err := execute(t, "build", dir, "-j", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "2 built, 0 failed, 2 files")
	assert.Contains(t, out, filepath.Join("src", "index.html"))

	built, err := os.ReadFile(filepath.Join(dir, "dist", "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(built), "<header>Top</header>")
	assert.NotContains(t, string(built), "<import")

	assert.FileExists(t, filepath.Join(dir, "dist", "partials", "header.html"))
}

func TestBuildCommandDryRun(t *testing.T) {
	dir := sampleProject(t)

	out, err := execute(t, "build", dir, "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, MsgDryRunNotice)
	assert.NoDirExists(t, filepath.Join(dir, "dist"))
}

func TestBuildCommandOverrides(t *testing.T) {
	dir := sampleProject(t)

	_, err := execute(t, "build", dir,
		"--set", "presets.html_import.enabled=false",
		"--set", "presets.html_minify.enabled=true")
	require.NoError(t, err)

	built, err := os.ReadFile(filepath.Join(dir, "dist", "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(built), "<import")
}

func TestBuildCommandInvalidSet(t *testing.T) {
	dir := sampleProject(t)

	_, err := execute(t, "build", dir, "--set", "novalue")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestBuildCommandMissingConfig(t *testing.T) {
	_, err := execute(t, "build", t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigNotFound))
}

func TestBuildCommandFailure(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"marech.toml":    projectConfig,
		"src/ok.html":    `<p>ok</p>`,
		"src/index.html": `<import src="~/missing.html"></import>`,
	})

	out, err := execute(t, "build", dir)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrBuildFailed))
	assert.True(t, errors.IsErrorCode(err, errors.ErrFileNotFound))
	assert.Contains(t, out, "1 built, 1 failed, 2 files")
	assert.FileExists(t, filepath.Join(dir, "dist", "ok.html"))
}

func TestRulesCommand(t *testing.T) {
	dir := sampleProject(t)

	t.Run("text", func(t *testing.T) {
		out, err := execute(t, "rules", dir)
		require.NoError(t, err)
		assert.Contains(t, out, "pages")
		assert.Contains(t, out, "html_import")
		assert.Contains(t, out, "(preset)")
		assert.NotContains(t, out, "html_minify")
	})

	t.Run("yaml", func(t *testing.T) {
		out, err := execute(t, "rules", dir, "-o", "yaml")
		require.NoError(t, err)

		var views []ruleView
		require.NoError(t, yaml.Unmarshal([]byte(out), &views))
		require.Len(t, views, 2)
		assert.Equal(t, ruleView{Position: 1, Name: "pages", Match: "pages/**", Kind: "identity", Source: "config"}, views[0])
		assert.Equal(t, ruleView{Position: 2, Name: "html_import", Match: "**/*.html", Kind: "html-import", Source: "preset"}, views[1])
	})

	t.Run("unknown output", func(t *testing.T) {
		_, err := execute(t, "rules", dir, "-o", "json")
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
	})
}

func TestResolveCommand(t *testing.T) {
	dir := sampleProject(t)
	index := filepath.Join(dir, "src", "index.html")

	out, err := execute(t, "resolve", "--config", dir, index)
	require.NoError(t, err)
	assert.Contains(t, out, "<header>Top</header><p>Hi</p>")

	out, err = execute(t, "resolve", "--config", dir, index, "--deps")
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(dir, "src", "partials", "header.html"))
}

func TestResolveCommandMissingFile(t *testing.T) {
	dir := sampleProject(t)

	_, err := execute(t, "resolve", "--config", dir, filepath.Join(dir, "src", "nope.html"))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrFileNotFound))
}

func TestInitCommand(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, "init", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "marech.toml")

	cfg, err := config.Load(dir)
	require.NoError(t, err)
	require.Len(t, cfg.Files, 1)
	assert.Equal(t, filepath.Join(dir, "src"), cfg.Files[0].Input.Path)
	assert.Equal(t, "src", cfg.Presets.MappedPaths["~"])

	_, err = execute(t, "init", dir)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrAlreadyExists))

	_, err = execute(t, "init", dir, "--force")
	require.NoError(t, err)
}

func TestInitCommandYAML(t *testing.T) {
	dir := t.TempDir()

	_, err := execute(t, "init", dir, "--format", "yaml")
	require.NoError(t, err)

	cfg, err := config.Load(filepath.Join(dir, "marech.yaml"))
	require.NoError(t, err)
	assert.Len(t, cfg.Files, 1)
}

func TestInitCommandDryRun(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, "init", dir, "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "defaults_enabled")
	assert.NoFileExists(t, filepath.Join(dir, "marech.toml"))
}

func TestInitCommandCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "site", "new")

	_, err := execute(t, "init", dir)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "marech.toml"))
}

func TestWriteConfigTemplate(t *testing.T) {
	t.Run("memory", func(t *testing.T) {
		fsys := filesystem.New(afero.NewMemMapFs())

		target, data, err := writeConfigTemplate(fsys, "/proj/site", "yaml", false, false)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join("/proj/site", "marech.yaml"), target)

		written, err := fsys.ReadFile(target)
		require.NoError(t, err)
		assert.Equal(t, data, written)

		_, _, err = writeConfigTemplate(fsys, "/proj/site", "yaml", false, false)
		assert.True(t, errors.IsErrorCode(err, errors.ErrAlreadyExists))
	})

	t.Run("dry run", func(t *testing.T) {
		fsys := filesystem.New(afero.NewMemMapFs())

		target, data, err := writeConfigTemplate(fsys, "/proj", "toml", false, true)
		require.NoError(t, err)
		assert.NotEmpty(t, data)

		_, err = fsys.Stat(target)
		assert.Error(t, err)
	})

	t.Run("read only", func(t *testing.T) {
		fsys := filesystem.New(afero.NewReadOnlyFs(afero.NewMemMapFs()))

		_, _, err := writeConfigTemplate(fsys, "/proj", "toml", false, false)
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrDirCreate) || errors.IsErrorCode(err, errors.ErrFileWrite))
	})

	t.Run("unknown format", func(t *testing.T) {
		fsys := filesystem.New(afero.NewMemMapFs())

		_, _, err := writeConfigTemplate(fsys, "/proj", "json", false, false)
		assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
	})
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "marech dev")
}

func TestCompletionCommand(t *testing.T) {
	out, err := execute(t, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "marech")

	_, err = execute(t, "completion", "tcsh")
	require.Error(t, err)
}

func TestNoCommand(t *testing.T) {
	_, err := execute(t)
	require.Error(t, err)
}
