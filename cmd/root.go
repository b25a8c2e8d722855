package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cf-pages-cli/internal/logger"
)

// These are injected at build time via -ldflags. Defaults are for dev builds.
var (
	buildVersion = "dev"
	buildCommit  = ""
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "cf-pages-cli",
	Short: "Manage environment variables of Cloudflare Pages projects",
	Long: "cf-pages-cli synchronizes environment variables between a local file and a " +
		"Cloudflare Pages project. Variables are downloaded into a reviewable JSON " +
		"document, edited locally, pushed back as a minimal patch, or converted into " +
		"dotenv format for local development.",
	Example: `  # Download variables of a project into a local file
  cf-pages-cli get-env-vars --project my-site --output env_vars.json

  # Review, edit, then push the changes back
  cf-pages-cli set-env-vars --project my-site --file env_vars.json

  # Turn the production section into a .env file
  cf-pages-cli to-env-file env_vars.json --environment production --output .env`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			logger.Build(true)
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command. The default logger is installed before
// parsing so even flag errors have somewhere to go.
func Execute() {
	logger.Build(false)

	// Show friendly suggestions for mistyped commands
	rootCmd.SuggestionsMinimumDistance = 1

	if err := rootCmd.Execute(); err != nil {
		zap.L().Fatal(err.Error())
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable debug logging on stderr")

	// Provide a version flag for packaging (Homebrew requires a simple version output)
	rootCmd.Version = buildVersion
	// Ensure default version flag is initialized so we can set shorthand
	rootCmd.InitDefaultVersionFlag()
	if f := rootCmd.Flags().Lookup("version"); f != nil {
		f.Shorthand = "v"
		f.Usage = "Show version information"
	}
	// Add an explicit `version` subcommand (e.g., `cf-pages-cli version`)
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("cf-pages-cli %s\nCommit: %s\nGo: %s\nOS/Arch: %s/%s\n", rootCmd.Version, buildCommit, runtime.Version(), runtime.GOOS, runtime.GOARCH)
			return nil
		},
	})

	// Enrich version output with commit, runtime and platform
	rootCmd.SetVersionTemplate(fmt.Sprintf(`cf-pages-cli %s
Commit: %s
Go: %s
OS/Arch: %s/%s
`, "{{.Version}}", buildCommit, runtime.Version(), runtime.GOOS, runtime.GOARCH))

	// Provide an informative help output with examples and environment info
	rootCmd.SetHelpTemplate(`{{with (or .Long .Short)}}{{. | trimTrailingWhitespaces}}{{end}}

Usage:
  {{.UseLine}}

{{if .HasAvailableSubCommands}}Available Commands:
{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}  {{rpad .Name .NamePadding}} {{.Short}}
{{end}}{{end}}{{end}}{{if .HasAvailableLocalFlags}}
Flags:
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasAvailableInheritedFlags}}
Global Flags:
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasHelpSubCommands}}
Additional help topics:
{{range .Commands}}{{if .IsAdditionalHelpTopicCommand}}  {{rpad .CommandPath .CommandPathPadding}} {{.Short}}
{{end}}{{end}}{{end}}{{if .Example}}
Examples:
{{.Example}}{{end}}

Environment:
  CLOUDFLARE_ACCOUNT        Cloudflare account ID
  CLOUDFLARE_TOKEN          API token used as the bearer credential
  CF_PAGES_PROJECT          Pages project name
  CF_PAGES_DEPLOYMENT       Deployment ID for get-env-vars
  CF_PAGES_FILE             Variables file for set-env-vars
  CF_PAGES_ENVIRONMENT      Environment for to-env-file (production|preview)
  CF_PAGES_OUTPUT           Output path (stdout when unset)
  CF_PAGES_EMPTY            Set to true to emit names only in to-env-file
  CLOUDFLARE_API_BASE_URL   Override API base URL (testing)

Flags take precedence over their environment variables.
`)

	// Ensure default help flag exists and set shorthand explicitly
	rootCmd.InitDefaultHelpFlag()
	if f := rootCmd.Flags().Lookup("help"); f != nil {
		f.Shorthand = "h"
		f.Usage = "Show help for command"
	}
	// Ensure a top-level 'help' command is available (e.g., `cf-pages-cli help`)
	rootCmd.InitDefaultHelpCmd()
}
