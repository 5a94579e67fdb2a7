package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/yildizm/domainslab/internal/config"
	"github.com/yildizm/domainslab/internal/emoji"
)

var (
	cfgFile   string
	envFile   string
	verbose   bool
	noColor   bool
	noEmoji   bool
	outputFmt string

	globalConfig *config.Config
)

// NewRootCommand creates the root command
func NewRootCommand(version, commit, date string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "domainslab",
		Short: "Upload domain lists and search their TXT records",
		Long: `domainslab is a terminal client for the Domains Lab service.

Upload a .txt or .csv list of domains, watch the server process it, search the
collected TXT records for a keyword and download the matching results.

Run without a subcommand to open the interactive shell.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Auto-disable emojis on Windows if not explicitly set
			if runtime.GOOS == "windows" && !cmd.Flag("no-emoji").Changed {
				noEmoji = true
			}
			emoji.SetEmojiDisabled(noEmoji)
			if noColor {
				color.NoColor = true
			}

			if err := loadEnvFile(envFile, cmd.Flag("env-file").Changed); err != nil {
				return err
			}

			if skipsConfig(cmd) {
				return nil
			}
			return loadGlobalConfig()
		},
		RunE: runTUI,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file with DOMAINS_LAB_API and DOMAINSLAB_* settings")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVar(&noEmoji, "no-emoji", false, "disable emoji output (useful for Windows terminals)")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "", "output format (text, json, csv); defaults to output.default_format")

	// Add subcommands
	rootCmd.AddCommand(newTUICommand())
	rootCmd.AddCommand(newLookupCommand())
	rootCmd.AddCommand(newDownloadCommand())
	rootCmd.AddCommand(newListCommand())
	rootCmd.AddCommand(newWatchCommand())
	rootCmd.AddCommand(newConfigCommand())
	rootCmd.AddCommand(newVersionCommand(version, commit, date))

	return rootCmd
}

func newVersionCommand(version, commit, date string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display version number, build commit, date, and runtime information",
		Run: func(cmd *cobra.Command, args []string) {
			displayVersion := version
			displayCommit := commit
			displayDate := date

			if version == "dev" || version == "" {
				displayVersion = "development"
			}
			if commit == "none" || commit == "" {
				displayCommit = "local-build"
			}
			if date == "unknown" || date == "" {
				displayDate = "local-build"
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "domainslab %s (%s) built on %s\n", displayVersion, displayCommit, displayDate)
			fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
			fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}

// skipsConfig reports whether cmd must run without a valid configuration
func skipsConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Name() == "version" || c.Name() == "config" {
			return true
		}
	}
	return false
}

// loadEnvFile loads a dotenv file without overriding variables that are
// already set. A missing default file is not an error.
func loadEnvFile(path string, explicit bool) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		if explicit {
			return fmt.Errorf("env file %s: %w", path, err)
		}
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

func loadGlobalConfig() error {
	cfg, err := config.NewLoader().LoadConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	globalConfig = cfg
	return nil
}

// GetGlobalConfig returns the loaded configuration, or defaults when the
// running command skipped loading
func GetGlobalConfig() *config.Config {
	if globalConfig == nil {
		return config.DefaultConfig()
	}
	return globalConfig
}

// Global helpers
func isVerbose() bool {
	return verbose || (globalConfig != nil && globalConfig.Output.Verbose)
}

func getOutputFormat() string {
	if outputFmt != "" {
		return outputFmt
	}
	return GetGlobalConfig().Output.DefaultFormat
}

func isColorEnabled() bool {
	if noColor {
		return false
	}
	switch GetGlobalConfig().Output.ColorMode {
	case "never":
		return false
	case "always":
		return true
	default:
		return !color.NoColor
	}
}

// reportedError marks an error the user has already been shown through a
// notifier, so it is not printed a second time on exit
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// IsReported reports whether err was already shown to the user
func IsReported(err error) bool {
	var r *reportedError
	return errors.As(err, &r)
}
