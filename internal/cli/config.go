package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/yildizm/domainslab/internal/config"
	"github.com/yildizm/domainslab/internal/emoji"
	"gopkg.in/yaml.v3"
)

const defaultConfigFile = ".domainslab.yaml"

// newConfigCommand creates the config command with subcommands
func newConfigCommand() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage domainslab configuration",
		Long: `Manage domainslab configuration files and settings.

The config command provides subcommands for initializing, viewing,
validating, and locating configuration files.`,
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigShowCommand())
	configCmd.AddCommand(newConfigValidateCommand())
	configCmd.AddCommand(newConfigPathCommand())

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var (
		outputPath string
		minimal    bool
		force      bool
	)

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new configuration file",
		Long: `Initialize a new domainslab configuration file with default values.

By default, creates a full configuration file with all options and comments.
Use --minimal for a compact configuration with only the API address.`,
		Example: `  # Create full config in current directory
  domainslab config init

  # Create minimal config
  domainslab config init --minimal

  # Create config at specific path
  domainslab config init --path ~/.config/domainslab/config.yaml

  # Overwrite existing config
  domainslab config init --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if outputPath == "" {
				outputPath = defaultConfigFile
			}
			outputPath = config.ExpandPath(outputPath)

			if !force && fileExists(outputPath) {
				return fmt.Errorf("config file already exists at %s (use --force to overwrite)", outputPath)
			}

			dir := filepath.Dir(outputPath)
			if dir != "." && dir != "/" {
				if err := os.MkdirAll(dir, 0o750); err != nil {
					return fmt.Errorf("failed to create directory %s: %w", dir, err)
				}
			}

			content := config.SampleConfig()
			if minimal {
				content = config.MinimalSampleConfig()
			}

			if err := os.WriteFile(outputPath, []byte(content), 0o600); err != nil {
				return fmt.Errorf("failed to write config file: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s Configuration file created at: %s\n", emoji.GetEmoji("success"), outputPath)
			if minimal {
				fmt.Fprintf(out, "%s Created minimal configuration with essential settings\n", emoji.GetEmoji("file"))
			} else {
				fmt.Fprintf(out, "%s Created full configuration with all options and documentation\n", emoji.GetEmoji("file"))
			}
			return nil
		},
	}

	initCmd.Flags().StringVarP(&outputPath, "path", "p", "", "where to write the config file (default: "+defaultConfigFile+")")
	initCmd.Flags().BoolVarP(&minimal, "minimal", "m", false, "create minimal configuration")
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite existing config file")

	return initCmd
}

func newConfigShowCommand() *cobra.Command {
	var format string

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		Long: `Display the effective configuration after merging defaults, config
files, the .env file and DOMAINSLAB_* environment variables.`,
		Example: `  # Show config in YAML format
  domainslab config show

  # Show config in JSON format
  domainslab config show --format json

  # Show config from specific file
  domainslab --config /path/to/config.yaml config show`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewLoader().LoadConfig(cfgFile)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			out := cmd.OutOrStdout()
			switch format {
			case "json":
				data, err := json.MarshalIndent(cfg, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal config to JSON: %w", err)
				}
				fmt.Fprintln(out, string(data))
			case "yaml":
				data, err := yaml.Marshal(cfg)
				if err != nil {
					return fmt.Errorf("failed to marshal config to YAML: %w", err)
				}
				fmt.Fprint(out, string(data))
			default:
				return fmt.Errorf("unsupported format: %s (use json or yaml)", format)
			}
			return nil
		},
	}

	showCmd.Flags().StringVarP(&format, "format", "f", "yaml", "output format (yaml, json)")

	return showCmd
}

func newConfigValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		Long: `Validate the domainslab configuration for syntax and semantic errors.

Checks for:
- Valid YAML syntax
- An http or https API base URL
- Valid values for enums
- Non-negative timeouts and log rotation limits`,
		Example: `  # Validate current config
  domainslab config validate

  # Validate specific config file
  domainslab --config /path/to/config.yaml config validate`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			cfg, err := config.NewLoader().LoadConfig(cfgFile)
			if err != nil {
				fmt.Fprintf(out, "%s Configuration validation failed:\n", emoji.GetEmoji("error"))
				fmt.Fprintf(out, "   %v\n", err)
				return &reportedError{err: err}
			}

			fmt.Fprintf(out, "%s Configuration is valid\n", emoji.GetEmoji("success"))
			fmt.Fprintf(out, "%s Configuration summary:\n", emoji.GetEmoji("records"))
			fmt.Fprintf(out, "   Version: %s\n", cfg.Version)
			fmt.Fprintf(out, "   API Base URL: %s\n", cfg.API.BaseURL)
			fmt.Fprintf(out, "   Allowed Extensions: %v\n", cfg.Upload.AllowedExtensions)
			fmt.Fprintf(out, "   Download Directory: %s\n", cfg.Download.OutputDir)
			fmt.Fprintf(out, "   Output Format: %s\n", cfg.Output.DefaultFormat)
			return nil
		},
	}
}

func newConfigPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show configuration file search paths",
		Long: `Display the list of paths domainslab searches for configuration files.

Shows the search order and indicates which files exist.`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s Configuration file search paths (in priority order):\n\n", emoji.GetEmoji("folder"))

			priority := []string{"Highest", "Medium", "Lowest"}
			for i, path := range config.GetConfigPaths() {
				exists := " (not found)"
				if fileExists(path) {
					exists = " (exists)"
				}
				fmt.Fprintf(out, "  %d. %s%s\n", i+1, path, exists)
				if i < len(priority) {
					fmt.Fprintf(out, "     Priority: %s\n", priority[i])
				}
				fmt.Fprintln(out)
			}

			if current, found := config.FindConfigFile(); found {
				fmt.Fprintf(out, "Current config file: %s\n", current)
			} else {
				fmt.Fprintln(out, "No config file found, using defaults")
			}

			fmt.Fprintln(out)
			fmt.Fprintf(out, "%s DOMAINS_LAB_API and DOMAINSLAB_* environment variables (or %s) override file settings\n",
				emoji.GetEmoji("info"), envFile)
		},
	}
}

func fileExists(filename string) bool {
	_, err := os.Stat(filename)
	return err == nil
}
