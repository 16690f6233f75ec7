package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/google/renameio/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/oarkflow/apkconf/internal/config"
	"github.com/oarkflow/apkconf/internal/watch"
)

var (
	outputFormat string
	outputFile   string
	minSdk       int
	watchInputs  bool
	redact       bool
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve the build configuration",
	Long: `Resolve the build configuration and print it.

minSdk comes from flutter.minSdkVersion in local.properties (21 when
unset) unless --min-sdk is given. A missing keystore properties file
leaves the release signing config empty.

Examples:
  apkconf resolve
  apkconf resolve --format yaml
  apkconf resolve --output build/app-config.json --watch`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if outputFormat != "json" && outputFormat != "yaml" {
			return fmt.Errorf("unsupported format %q (use json or yaml)", outputFormat)
		}

		in, err := resolveOnce(cmd.OutOrStdout())
		if err != nil {
			return err
		}
		if !watchInputs {
			return nil
		}

		return watchAndResolve(cmd.Context(), cmd.OutOrStdout(), in.files())
	},
}

func init() {
	resolveCmd.Flags().StringVarP(&outputFormat, "format", "f", "json", "output format (json, yaml)")
	resolveCmd.Flags().StringVarP(&outputFile, "output", "o", "", "write to file instead of stdout")
	resolveCmd.Flags().IntVar(&minSdk, "min-sdk", 0, "override the framework minSdk")
	resolveCmd.Flags().BoolVarP(&watchInputs, "watch", "w", false, "re-resolve when the inputs change")
	resolveCmd.Flags().BoolVar(&redact, "redact", false, "mask keystore passwords in the output")
}

func resolveOnce(stdout io.Writer) (*inputs, error) {
	in, err := loadInputs()
	if err != nil {
		return nil, err
	}

	cfg, err := config.ResolveAppConfig(in.environment(minSdk))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config: %w", err)
	}
	if redact {
		for name, sc := range cfg.SigningConfigs {
			cfg.SigningConfigs[name] = sc.Redacted()
		}
	}

	data, err := encode(cfg, outputFormat)
	if err != nil {
		return nil, err
	}

	if outputFile == "" {
		_, err = stdout.Write(data)
		return in, err
	}

	if err := renameio.WriteFile(outputFile, data, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", outputFile, err)
	}
	log.Info("Configuration written", "path", outputFile)
	return in, nil
}

// watchAndResolve re-resolves whenever an input changes. A pass that moves
// an input (for example a new keystore_properties) restarts the watcher on
// the new set of files.
func watchAndResolve(ctx context.Context, stdout io.Writer, files []string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	for {
		watchCtx, cancel := context.WithCancel(ctx)
		var next []string

		w, err := watch.New(files, watch.DefaultDebounce, func() {
			in, err := resolveOnce(stdout)
			if err != nil {
				log.Error("Resolve failed", "err", err)
				return
			}
			if changed := in.files(); !slices.Equal(changed, files) {
				next = changed
				cancel()
			}
		})
		if err != nil {
			cancel()
			return err
		}

		log.Info("Watching inputs", "files", files)
		err = w.Run(watchCtx)
		cancel()
		if err != nil || next == nil {
			return err
		}
		files = next
	}
}

// encode renders the configuration. Both encodings are deterministic.
func encode(cfg *config.AppConfig, format string) ([]byte, error) {
	switch format {
	case "yaml":
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return nil, fmt.Errorf("failed to encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode json: %w", err)
		}
		return append(data, '\n'), nil
	}
}
