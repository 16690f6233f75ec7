package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oarkflow/apkconf/internal/config"
	"github.com/oarkflow/apkconf/internal/sign"
)

var (
	signerCmd  string
	signOutput string
	signVerify bool
)

var signCmd = &cobra.Command{
	Use:   "sign APK",
	Short: "Sign an APK with the release signing config",
	Long: `Sign an APK with apksigner using the release signing config.

Credentials come from the keystore properties file. Missing keys are not
rejected here; apksigner reports them.

Examples:
  apkconf sign build/app/outputs/apk/release/app-release.apk
  apkconf sign app-release.apk --out app-signed.apk --verify`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := loadInputs()
		if err != nil {
			return err
		}

		cfg, err := config.ResolveAppConfig(in.environment(0))
		if err != nil {
			return fmt.Errorf("failed to resolve config: %w", err)
		}

		signing, _ := cfg.SigningConfigFor(cfg.BuildTypes.Release)
		signer := sign.NewSigner(signing, sign.WithCommand(signerCmd), sign.WithOutput(verbose || debug))

		if err := signer.Sign(cmd.Context(), args[0], signOutput); err != nil {
			return err
		}

		if signVerify {
			target := args[0]
			if signOutput != "" {
				target = signOutput
			}
			return signer.Verify(cmd.Context(), target)
		}
		return nil
	},
}

func init() {
	signCmd.Flags().StringVar(&signerCmd, "signer", sign.DefaultCmd, "signer binary")
	signCmd.Flags().StringVar(&signOutput, "out", "", "write the signed APK here instead of in place")
	signCmd.Flags().BoolVar(&signVerify, "verify", false, "verify the signature afterwards")
}
