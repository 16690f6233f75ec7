/*
Package sign hands the resolved release credentials to the external APK
signer. Signing itself is done by apksigner; this package only builds the
invocation.
*/
package sign

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/charmbracelet/log"

	"github.com/oarkflow/apkconf/internal/config"
)

// Environment variables used to hand passwords to apksigner
const (
	EnvKeystorePass = "APKCONF_KS_PASS"
	EnvKeyPass      = "APKCONF_KEY_PASS"
)

// DefaultCmd is the signer binary from the Android build tools
const DefaultCmd = "apksigner"

// Signer runs the external signer with a signing config
type Signer struct {
	cfg    config.SigningConfig
	cmd    string
	output bool
}

// Option configures a Signer
type Option func(*Signer)

// WithCommand overrides the signer binary
func WithCommand(cmd string) Option {
	return func(s *Signer) { s.cmd = cmd }
}

// WithOutput streams the signer output to the terminal
func WithOutput(output bool) Option {
	return func(s *Signer) { s.output = output }
}

// NewSigner creates a new signer
func NewSigner(cfg config.SigningConfig, opts ...Option) *Signer {
	s := &Signer{cfg: cfg, cmd: DefaultCmd}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Args returns the apksigner arguments for signing apk. Nil credentials are
// left out and reported by apksigner itself. Passwords are referenced
// through environment variables so they never show up in the process list.
func Args(cfg config.SigningConfig, apk, out string) []string {
	args := []string{"sign"}
	if cfg.StoreFile != nil {
		args = append(args, "--ks", *cfg.StoreFile)
	}
	if cfg.KeyAlias != nil {
		args = append(args, "--ks-key-alias", *cfg.KeyAlias)
	}
	if cfg.StorePassword != nil {
		args = append(args, "--ks-pass", "env:"+EnvKeystorePass)
	}
	if cfg.KeyPassword != nil {
		args = append(args, "--key-pass", "env:"+EnvKeyPass)
	}
	if out != "" {
		args = append(args, "--out", out)
	}
	return append(args, apk)
}

// Env returns the password variables for the signer process
func Env(cfg config.SigningConfig) []string {
	var env []string
	if cfg.StorePassword != nil {
		env = append(env, EnvKeystorePass+"="+*cfg.StorePassword)
	}
	if cfg.KeyPassword != nil {
		env = append(env, EnvKeyPass+"="+*cfg.KeyPassword)
	}
	return env
}

// Sign signs apk in place, or into out when it is set
func (s *Signer) Sign(ctx context.Context, apk, out string) error {
	if _, err := os.Stat(apk); err != nil {
		return fmt.Errorf("apk not found: %w", err)
	}

	if missing := s.cfg.Missing(); len(missing) > 0 {
		log.Warn("Signing with incomplete credentials", "missing", missing)
	}

	log.Info("Signing APK", "apk", apk)
	return s.run(ctx, Args(s.cfg, apk, out), Env(s.cfg))
}

// Verify checks the signature of apk
func (s *Signer) Verify(ctx context.Context, apk string) error {
	log.Info("Verifying APK", "apk", apk)
	return s.run(ctx, []string{"verify", "--print-certs", apk}, nil)
}

func (s *Signer) run(ctx context.Context, args, extraEnv []string) error {
	log.Debug("Running sign command", "cmd", s.cmd, "args", args)
	execCmd := exec.CommandContext(ctx, s.cmd, args...)
	execCmd.Env = append(os.Environ(), extraEnv...)

	var stderr bytes.Buffer
	if s.output {
		execCmd.Stdout = os.Stdout
		execCmd.Stderr = os.Stderr
	} else {
		execCmd.Stderr = &stderr
	}

	if err := execCmd.Run(); err != nil {
		return fmt.Errorf("%s %s failed: %w\n%s", s.cmd, args[0], err, stderr.String())
	}
	return nil
}
