package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/oarkflow/apkconf/internal/schema"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "JSON Schema utilities",
	Long: `Generate and validate JSON Schema for the apkconf project file.

This command provides utilities for working with the JSON Schema
that defines the structure of .apkconf.yaml files.`,
}

var schemaGenerateCmd = &cobra.Command{
	Use:   "generate [output]",
	Short: "Generate JSON Schema",
	Long: `Generate the JSON Schema for the project file.

If no output file is specified, the schema is written to stdout.

Examples:
  apkconf schema generate
  apkconf schema generate apkconf.schema.json
`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			if err := schema.WriteSchema(args[0]); err != nil {
				return fmt.Errorf("failed to write schema: %w", err)
			}
			log.Info("Schema written", "path", args[0])
			return nil
		}

		data, err := json.MarshalIndent(schema.GenerateSchema(), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal schema: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var schemaValidateCmd = &cobra.Command{
	Use:   "validate [config]",
	Short: "Validate a project file against the schema",
	Long: `Validate a project file against the JSON Schema.

Examples:
  apkconf schema validate
  apkconf schema validate path/to/.apkconf.yaml
`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath := projectPath()
		if len(args) > 0 {
			configPath = args[0]
		}

		result := schema.ValidateConfig(configPath)
		if !result.Valid {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "\nValidation failed with %d error(s):\n\n", len(result.Errors))
			for i, err := range result.Errors {
				fmt.Fprintf(out, "  %d. %s: %s\n", i+1, err.Path, err.Message)
			}
			return fmt.Errorf("configuration is invalid")
		}

		log.Info("Configuration is valid", "path", configPath)
		return nil
	},
}

func init() {
	schemaCmd.AddCommand(schemaGenerateCmd)
	schemaCmd.AddCommand(schemaValidateCmd)
	rootCmd.AddCommand(schemaCmd)
}
