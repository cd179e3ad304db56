// Package build runs the rule engine over the file groups of a configuration
// and writes the results.
//
// Every top-level file is dispatched with its own dependency graph, so files
// can be built in parallel; imported files are read and transformed as part
// of the file importing them.
package build

import (
	"context"
	stderrors "errors"
	"path/filepath"
	"runtime"

	"github.com/guesant/marech/pkg/config"
	"github.com/guesant/marech/pkg/depgraph"
	"github.com/guesant/marech/pkg/engine"
	"github.com/guesant/marech/pkg/errors"
	"github.com/guesant/marech/pkg/filesystem"
	"github.com/guesant/marech/pkg/logging"
	"github.com/guesant/marech/pkg/rules"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

// Options controls a build.
type Options struct {
	// Jobs is the number of files built concurrently. Zero or less uses the
	// number of CPUs.
	Jobs int
	// FailFast stops at the first failing file. Otherwise every file is
	// attempted and the failures are returned together.
	FailFast bool
	// DryRun transforms files without writing outputs.
	DryRun bool
}

// Job is one top-level file to build.
type Job struct {
	Group  int
	Source string
	Output string
}

// FileResult is the outcome of one Job.
type FileResult struct {
	Job
	Rule         string
	Matched      bool
	Dependencies []string
	Size         int
	Err          error
}

// Report summarizes a build.
type Report struct {
	Files []FileResult
}

// Failed returns the results that carry an error.
func (r *Report) Failed() []FileResult {
	var out []FileResult
	for _, f := range r.Files {
		if f.Err != nil {
			out = append(out, f)
		}
	}
	return out
}

// Built returns the number of files built without error.
func (r *Report) Built() int {
	n := 0
	for _, f := range r.Files {
		if f.Err == nil {
			n++
		}
	}
	return n
}

// Builder builds the file groups of a configuration.
type Builder struct {
	engine *engine.Engine
	fs     *filesystem.FS
	groups []config.FileGroup
	opts   Options
	logger zerolog.Logger
}

// New creates a Builder for cfg reading and writing through fsys (the OS
// filesystem when nil).
func New(cfg *config.Config, fsys afero.Fs, opts Options) (*Builder, error) {
	ruleSet, err := cfg.RuleSet()
	if err != nil {
		return nil, err
	}
	return NewWithRules(cfg, ruleSet, fsys, opts), nil
}

// NewWithRules is like New with an already compiled rule set.
func NewWithRules(cfg *config.Config, ruleSet *rules.RuleSet, fsys afero.Fs, opts Options) *Builder {
	wrapped := filesystem.New(fsys)
	if opts.Jobs <= 0 {
		opts.Jobs = runtime.NumCPU()
	}
	return &Builder{
		engine: engine.New(engine.Config{
			Rules:       ruleSet,
			MappedPaths: cfg.Presets.MappedPaths,
			Fs:          wrapped.Afero(),
			Root:        cfg.Dir,
		}),
		fs:     wrapped,
		groups: cfg.Files,
		opts:   opts,
		logger: logging.GetLogger("build"),
	}
}

// Engine returns the engine the builder dispatches through.
func (b *Builder) Engine() *engine.Engine { return b.engine }

// Plan lists the jobs of every file group, in group order.
func (b *Builder) Plan() ([]Job, error) {
	var jobs []Job
	for i, group := range b.groups {
		groupJobs, err := b.planGroup(i, group)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, groupJobs...)
	}
	return jobs, nil
}

func (b *Builder) planGroup(index int, group config.FileGroup) ([]Job, error) {
	info, err := b.fs.Stat(group.Input.Path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileNotFound, "input not found: %s", group.Input.Path).
			WithDetail("path", group.Input.Path).
			WithDetail("group", index)
	}

	if !info.IsDir() {
		name := group.Output.Filename
		if name == "" {
			name = filepath.Base(group.Input.Path)
		}
		return []Job{{
			Group:  index,
			Source: group.Input.Path,
			Output: filepath.Join(group.Output.Path, name),
		}}, nil
	}

	if group.Output.Filename != "" {
		b.logger.Warn().
			Int("group", index).
			Str("input", group.Input.Path).
			Msg("output.filename is ignored for directory inputs")
	}

	match := group.Input.Match
	if match == "" {
		match = config.DefaultMatch
	}
	pattern, err := rules.CompilePattern(match)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrInvalidInput, "invalid input match %q", match).
			WithDetail("group", index)
	}

	output := filepath.Clean(group.Output.Path)
	files, err := b.fs.Files(group.Input.Path, func(dir string) bool {
		return filepath.Clean(dir) == output
	})
	if err != nil {
		return nil, err
	}

	var jobs []Job
	for _, file := range files {
		rel, err := filepath.Rel(group.Input.Path, file)
		if err != nil {
			continue
		}
		if !pattern.Match(filepath.ToSlash(rel)) {
			continue
		}
		jobs = append(jobs, Job{
			Group:  index,
			Source: file,
			Output: filepath.Join(output, rel),
		})
	}
	return jobs, nil
}

// Run plans and builds every file. The returned error joins the failures of
// all files (or carries the first one with FailFast); the report is returned
// in both cases.
func (b *Builder) Run(ctx context.Context) (*Report, error) {
	done := logging.LogOperationStart(b.logger, "build")
	defer done()

	jobs, err := b.Plan()
	if err != nil {
		return nil, err
	}

	report := &Report{Files: make([]FileResult, len(jobs))}
	for i, job := range jobs {
		report.Files[i] = FileResult{Job: job}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.opts.Jobs)

	for i := range jobs {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				report.Files[i].Err = err
				return nil
			}
			res := b.buildOne(jobs[i])
			report.Files[i] = res
			if res.Err != nil && b.opts.FailFast {
				return res.Err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return report, err
	}
	if err := ctx.Err(); err != nil {
		return report, err
	}

	var failures []error
	for _, f := range report.Files {
		if f.Err != nil {
			failures = append(failures, f.Err)
		}
	}
	if len(failures) > 0 {
		return report, errors.Wrapf(stderrors.Join(failures...), errors.ErrBuildFailed,
			"%d of %d files failed", len(failures), len(jobs)).
			WithDetail("failed", len(failures))
	}

	b.logger.Info().
		Int("files", len(jobs)).
		Msg("Build finished")
	return report, nil
}

func (b *Builder) buildOne(job Job) FileResult {
	result := FileResult{Job: job}
	logger := logging.ForFile(b.logger, job.Source, "").With().
		Str("output", job.Output).
		Logger()

	res, err := b.engine.DispatchPath(job.Source, depgraph.New())
	if err != nil {
		logger.Error().Err(err).Msg("Failed to build file")
		result.Err = err
		return result
	}

	result.Rule = res.Rule
	result.Matched = res.Matched
	result.Dependencies = res.Dependencies
	result.Size = len(res.Content)

	if b.opts.DryRun {
		logger.Debug().Msg("Dry run, output not written")
		return result
	}

	if err := b.fs.WriteFile(job.Output, res.Content, 0644); err != nil {
		logger.Error().Err(err).Msg("Failed to write output")
		result.Err = err
		return result
	}

	logger.Debug().
		Str("rule", res.Rule).
		Bool("matched", res.Matched).
		Msg("File built")
	return result
}
