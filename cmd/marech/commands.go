package marech

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/guesant/marech/internal/version"
	"github.com/guesant/marech/pkg/build"
	"github.com/guesant/marech/pkg/config"
	"github.com/guesant/marech/pkg/depgraph"
	"github.com/guesant/marech/pkg/engine"
	"github.com/guesant/marech/pkg/errors"
	"github.com/guesant/marech/pkg/filesystem"
	"github.com/guesant/marech/pkg/logging"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	initTemplateFormatting()

	var (
		verbosity int
		dryRun    bool
	)

	rootCmd := &cobra.Command{
		Use:     "marech",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Setup(logging.Options{
				Verbosity: verbosity,
				Console:   cmd.ErrOrStderr(),
				NoColor:   !isTerminal(),
			})
			logging.LogCommand(cmd.Name(), args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand: show help but still fail
			_ = cmd.Help()
			return fmt.Errorf(MsgErrNoCommand)
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, MsgFlagDryRun)

	rootCmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "COMMANDS:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "misc",
		Title: "MISC:",
	})

	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	rootCmd.AddCommand(newBuildCmd())
	rootCmd.AddCommand(newRulesCmd())
	rootCmd.AddCommand(newResolveCmd())
	rootCmd.AddCommand(newInitCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())

	return rootCmd
}

// loadConfig loads the configuration at path, applying --set overrides.
func loadConfig(path string, sets []string) (*config.Config, error) {
	overrides, err := parseOverrides(sets)
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadWithOverrides(path, overrides)
	if err != nil {
		return nil, fmt.Errorf(MsgErrLoadConfig, err)
	}
	return cfg, nil
}

func parseOverrides(sets []string) (map[string]any, error) {
	if len(sets) == 0 {
		return nil, nil
	}
	overrides := make(map[string]any, len(sets))
	for _, s := range sets {
		key, value, ok := strings.Cut(s, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, errors.Newf(errors.ErrInvalidInput, MsgErrInvalidSet, s).
				WithDetail("flag", "set")
		}
		overrides[key] = value
	}
	return overrides, nil
}

func argOrDot(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}

func newBuildCmd() *cobra.Command {
	var (
		jobs     int
		failFast bool
		sets     []string
	)

	cmd := &cobra.Command{
		Use:     "build [config]",
		Short:   MsgBuildShort,
		Long:    MsgBuildLong,
		Example: MsgBuildExample,
		Args:    cobra.MaximumNArgs(1),
		GroupID: "core",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(argOrDot(args), sets)
			if err != nil {
				return err
			}

			dryRun, _ := cmd.Root().PersistentFlags().GetBool("dry-run")

			log.Info().
				Str("config", cfg.Path).
				Int("groups", len(cfg.Files)).
				Bool("dry_run", dryRun).
				Msg("Building")

			builder, err := build.New(cfg, nil, build.Options{
				Jobs:     jobs,
				FailFast: failFast,
				DryRun:   dryRun,
			})
			if err != nil {
				return err
			}

			report, err := builder.Run(cmd.Context())
			renderReport(cmd.OutOrStdout(), cfg.Dir, report, dryRun)
			return err
		},
	}

	cmd.Flags().IntVarP(&jobs, "jobs", "j", 0, MsgFlagJobs)
	cmd.Flags().BoolVar(&failFast, "fail-fast", false, MsgFlagFailFast)
	cmd.Flags().StringArrayVar(&sets, "set", nil, MsgFlagSet)

	return cmd
}

func newRulesCmd() *cobra.Command {
	var (
		output string
		sets   []string
	)

	cmd := &cobra.Command{
		Use:     "rules [config]",
		Short:   MsgRulesShort,
		Long:    MsgRulesLong,
		Args:    cobra.MaximumNArgs(1),
		GroupID: "core",
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != "text" && output != "yaml" {
				return errors.Newf(errors.ErrInvalidInput, MsgErrUnknownOutput, output).
					WithDetail("flag", "output")
			}

			cfg, err := loadConfig(argOrDot(args), sets)
			if err != nil {
				return err
			}
			list, err := cfg.BuildRules()
			if err != nil {
				return err
			}

			views := ruleViews(list, len(cfg.Rules))
			if output == "yaml" {
				enc := yaml.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent(2)
				if err := enc.Encode(views); err != nil {
					return err
				}
				return enc.Close()
			}
			renderRules(cmd.OutOrStdout(), cfg.Path, views)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "text", MsgFlagOutput)
	cmd.Flags().StringArrayVar(&sets, "set", nil, MsgFlagSet)

	return cmd
}

func newResolveCmd() *cobra.Command {
	var (
		configPath string
		deps       bool
		sets       []string
	)

	cmd := &cobra.Command{
		Use:     "resolve <file>",
		Short:   MsgResolveShort,
		Long:    MsgResolveLong,
		Example: MsgResolveExample,
		Args:    cobra.ExactArgs(1),
		GroupID: "core",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath, sets)
			if err != nil {
				return err
			}
			ruleSet, err := cfg.RuleSet()
			if err != nil {
				return err
			}

			target, err := filepath.Abs(args[0])
			if err != nil {
				return errors.Wrapf(err, errors.ErrInvalidInput, "invalid path %s", args[0])
			}

			eng := engine.New(engine.Config{
				Rules:       ruleSet,
				MappedPaths: cfg.Presets.MappedPaths,
				Root:        cfg.Dir,
			})
			result, err := eng.DispatchPath(target, depgraph.New())
			if err != nil {
				return err
			}
			if result.NoRuleMatched() {
				log.Warn().Msgf(MsgNoRuleMatched, eng.MatchPath(target))
			}

			out := cmd.OutOrStdout()
			if deps {
				for _, dep := range result.Dependencies {
					fmt.Fprintln(out, dep)
				}
				return nil
			}
			_, err = out.Write(result.Content)
			return err
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", ".", MsgFlagConfig)
	cmd.Flags().BoolVar(&deps, "deps", false, MsgFlagDeps)
	cmd.Flags().StringArrayVar(&sets, "set", nil, MsgFlagSet)

	return cmd
}

func newInitCmd() *cobra.Command {
	var (
		force  bool
		format string
	)

	cmd := &cobra.Command{
		Use:     "init [dir]",
		Short:   MsgInitShort,
		Long:    MsgInitLong,
		Args:    cobra.MaximumNArgs(1),
		GroupID: "core",
		RunE: func(cmd *cobra.Command, args []string) error {
			dryRun, _ := cmd.Root().PersistentFlags().GetBool("dry-run")
			fsys := filesystem.New(afero.NewOsFs())

			target, data, err := writeConfigTemplate(fsys, argOrDot(args), format, force, dryRun)
			if err != nil {
				return err
			}
			if dryRun {
				fmt.Fprintln(cmd.OutOrStdout(), MsgDryRunNotice)
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), MsgConfigCreated, target)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, MsgFlagForce)
	cmd.Flags().StringVar(&format, "format", "toml", MsgFlagFormat)

	return cmd
}

// writeConfigTemplate renders the starter configuration in format and writes
// it into dir, unless dryRun. It returns the target path and the rendered
// bytes.
func writeConfigTemplate(fsys *filesystem.FS, dir, format string, force, dryRun bool) (string, []byte, error) {
	var (
		name string
		data []byte
		err  error
	)
	tmpl := config.Template()
	switch format {
	case "toml":
		name = "marech.toml"
		data, err = config.Marshal(tmpl)
	case "yaml":
		name = "marech.yaml"
		data, err = yaml.Marshal(tmpl)
	default:
		return "", nil, errors.Newf(errors.ErrInvalidInput, MsgErrUnknownFormat, format).
			WithDetail("flag", "format")
	}
	if err != nil {
		return "", nil, errors.Wrap(err, errors.ErrInternal, "failed to encode configuration")
	}

	target := filepath.Join(dir, name)
	if _, err := fsys.Stat(target); err == nil && !force {
		return "", nil, errors.Newf(errors.ErrAlreadyExists, MsgErrConfigExists, target).
			WithDetail("path", target)
	}
	if dryRun {
		return target, data, nil
	}
	if err := fsys.WriteFile(target, data, 0644); err != nil {
		return "", nil, err
	}
	return target, data, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		Args:    cobra.NoArgs,
		GroupID: "misc",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), MsgVersionFormat, version.Version, version.Commit, version.Date)
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 MsgCompletionShort,
		Long:                  MsgCompletionLong,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		GroupID:               "misc",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
}
