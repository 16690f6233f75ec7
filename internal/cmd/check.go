package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/renameio/v2"
	"github.com/spf13/cobra"

	"github.com/oarkflow/apkconf"
	"github.com/oarkflow/apkconf/internal/config"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check the input files",
	Long: `Check the project file, the keystore properties and local.properties.

This validates:
  - YAML syntax and values of the project file
  - key=value syntax of both properties files
  - Dependency coordinates
  - Whether the release signing config is complete`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := loadInputs()
		if err != nil {
			return err
		}

		if _, err := config.ResolveAppConfig(in.environment(0)); err != nil {
			return fmt.Errorf("failed to resolve config: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "✓ Project %s is valid\n", in.project.ApplicationID)

		signing := config.ResolveSigningConfig(in.keystore)
		switch {
		case signing.Complete():
			fmt.Fprintf(out, "✓ Release signing config loaded from %s\n", in.keystorePath)
		case signing.Empty():
			fmt.Fprintf(out, "! No release signing config (%s not found or empty)\n", in.keystorePath)
		default:
			fmt.Fprintf(out, "! Release signing config is missing: %s\n", strings.Join(signing.Missing(), ", "))
		}
		return nil
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new project file",
	Long: `Initialize a new .apkconf.yaml project file.

This creates a project file with the built-in defaults that you can
customize.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath := projectPath()

		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("config file already exists: %s", configPath)
		}

		if err := renameio.WriteFile(configPath, []byte(config.DefaultTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}

		log.Info("Created project file", "path", configPath)
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Created %s\n", configPath)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit, and build date of apkconf.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "apkconf %s\n", apkconf.Version)
		if apkconf.GitCommit != "" {
			fmt.Fprintf(out, "  Commit: %s\n", apkconf.GitCommit)
		}
		if apkconf.BuildDate != "" {
			fmt.Fprintf(out, "  Built:  %s\n", apkconf.BuildDate)
		}
	},
}
