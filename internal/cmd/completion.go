package cmd

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
	"github.com/spf13/cobra"
)

var completionShells = []string{"bash", "zsh", "fish", "powershell"}

// completionCmd generates shell completions
var completionCmd = &cobra.Command{
	Use:   "completion [shell]",
	Short: "Generate shell completions",
	Long: `Generate shell completion scripts.

Bash:
  source <(apkconf completion bash)

Zsh:
  apkconf completion zsh > "${fpath[1]}/_apkconf"

Fish:
  apkconf completion fish | source

PowerShell:
  apkconf completion powershell | Out-String | Invoke-Expression
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             completionShells,
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		return genCompletion(cmd.Root(), args[0], cmd.OutOrStdout())
	},
}

// completionInstallCmd installs shell completions
var completionInstallCmd = &cobra.Command{
	Use:   "install [shell]",
	Short: "Install shell completions",
	Long: `Install the completion script into the per-user completion directory
of the given shell.`,
	ValidArgs: completionShells,
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}

		path, err := installCompletion(cmd.Root(), args[0], home)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Completion script installed to: %s\n", path)
		return nil
	},
}

func init() {
	completionCmd.AddCommand(completionInstallCmd)
	rootCmd.AddCommand(completionCmd)
}

func genCompletion(root *cobra.Command, shell string, w io.Writer) error {
	switch shell {
	case "bash":
		return root.GenBashCompletion(w)
	case "zsh":
		return root.GenZshCompletion(w)
	case "fish":
		return root.GenFishCompletion(w, true)
	case "powershell":
		return root.GenPowerShellCompletionWithDesc(w)
	}
	return fmt.Errorf("unsupported shell: %s", shell)
}

// completionPath returns the per-user completion file for shell
func completionPath(shell, home string) (string, error) {
	switch shell {
	case "bash":
		return filepath.Join(home, ".local/share/bash-completion/completions/apkconf"), nil
	case "zsh":
		return filepath.Join(home, ".zsh/completions/_apkconf"), nil
	case "fish":
		return filepath.Join(home, ".config/fish/completions/apkconf.fish"), nil
	case "powershell":
		return filepath.Join(home, ".config/powershell/apkconf.ps1"), nil
	}
	return "", fmt.Errorf("unsupported shell: %s", shell)
}

// installCompletion writes the completion script below home
func installCompletion(root *cobra.Command, shell, home string) (string, error) {
	path, err := completionPath(shell, home)
	if err != nil {
		return "", err
	}

	var content bytes.Buffer
	if err := genCompletion(root, shell, &content); err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create completion directory: %w", err)
	}
	if err := renameio.WriteFile(path, content.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("failed to write completion file: %w", err)
	}
	return path, nil
}
