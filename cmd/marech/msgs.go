package marech

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort       = "Transform files through ordered glob rules"
	MsgBuildShort      = "Build the file groups of a configuration"
	MsgRulesShort      = "List the rules in the order they are tried"
	MsgResolveShort    = "Run the rules on a single file"
	MsgInitShort       = "Create a starter configuration file"
	MsgVersionShort    = "Print version information"
	MsgCompletionShort = "Generate shell completion script"

	// Status messages
	MsgDryRunNotice     = "DRY RUN MODE - No files were written"
	MsgBuildSummary     = "%d built, %d failed, %d files\n"
	MsgNoFiles          = "No input files matched."
	MsgFileItem         = "%s %s -> %s"
	MsgNoRules          = "No rules configured."
	MsgRuleItem         = "%3d. %-16s %-22s %s"
	MsgConfigCreated    = "Created %s\n"
	MsgNoRuleMatched    = "no rule matched %s, content unchanged"
	MsgVersionFormat    = "marech %s (commit %s, built %s)\n"
	MsgRulesHeader      = "Rules from %s:"
	MsgRuleSourceConfig = "config"
	MsgRuleSourcePreset = "preset"

	// Error messages
	MsgErrNoCommand     = "no command specified"
	MsgErrLoadConfig    = "failed to load configuration: %w"
	MsgErrInvalidSet    = "invalid --set value %q, expected key=value"
	MsgErrConfigExists  = "%s already exists, use --force to overwrite"
	MsgErrUnknownOutput = "unknown output format %q, expected text or yaml"
	MsgErrUnknownFormat = "unknown config format %q, expected toml or yaml"

	// Flag descriptions
	MsgFlagVerbose  = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagDryRun   = "Transform files without writing them"
	MsgFlagJobs     = "Number of files built concurrently (default: number of CPUs)"
	MsgFlagFailFast = "Stop at the first failing file"
	MsgFlagSet      = "Override a configuration key (key=value, repeatable)"
	MsgFlagOutput   = "Output format (text, yaml)"
	MsgFlagConfig   = "Config file or directory containing it"
	MsgFlagDeps     = "List the files imported instead of printing the content"
	MsgFlagForce    = "Overwrite an existing configuration file"
	MsgFlagFormat   = "Config file format (toml, yaml)"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/build-long.txt
	msgBuildLongRaw string
	MsgBuildLong    = strings.TrimSpace(msgBuildLongRaw)

	//go:embed msgs/build-example.txt
	msgBuildExampleRaw string
	MsgBuildExample    = strings.TrimRight(msgBuildExampleRaw, "\n")

	//go:embed msgs/rules-long.txt
	msgRulesLongRaw string
	MsgRulesLong    = strings.TrimSpace(msgRulesLongRaw)

	//go:embed msgs/resolve-long.txt
	msgResolveLongRaw string
	MsgResolveLong    = strings.TrimSpace(msgResolveLongRaw)

	//go:embed msgs/resolve-example.txt
	msgResolveExampleRaw string
	MsgResolveExample    = strings.TrimRight(msgResolveExampleRaw, "\n")

	//go:embed msgs/init-long.txt
	msgInitLongRaw string
	MsgInitLong    = strings.TrimSpace(msgInitLongRaw)

	//go:embed msgs/completion-long.txt
	msgCompletionLongRaw string
	MsgCompletionLong    = strings.TrimSpace(msgCompletionLongRaw)

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw)
)
