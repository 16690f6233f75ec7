/*
Package cmd provides the CLI commands for apkconf.
*/
package cmd

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	cfgFile             string
	propertiesFile      string
	localPropertiesFile string
	verbose             bool
	debug               bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "apkconf",
	Short: "Resolve the Android build configuration",
	Long: `apkconf resolves the Android build configuration of a Flutter app.

It reads the optional keystore properties file, the values the Flutter
tool records in local.properties and an optional project file, and
produces the application identifiers, SDK bounds, version fields,
signing configuration and the release/debug build types.

Example:
  apkconf resolve                 # Print the resolved configuration
  apkconf resolve -o build.json   # Write it to a file
  apkconf check                   # Check the input files
  apkconf sign app-release.apk    # Sign with the release credentials`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "project file (default is .apkconf.yaml)")
	rootCmd.PersistentFlags().StringVar(&propertiesFile, "properties", "", "keystore properties file (default from the project file)")
	rootCmd.PersistentFlags().StringVar(&localPropertiesFile, "local-properties", "local.properties", "Flutter local.properties file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")

	// Add subcommands
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(signCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	log.SetOutput(os.Stderr)
	if debug {
		log.SetLevel(log.DebugLevel)
	} else if verbose {
		log.SetLevel(log.InfoLevel)
	} else {
		log.SetLevel(log.WarnLevel)
	}
}
