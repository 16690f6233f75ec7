package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/oarkflow/apkconf/internal/config"
	"github.com/oarkflow/apkconf/internal/sign"
)

func resetFlags() {
	cfgFile = ""
	propertiesFile = ""
	localPropertiesFile = "local.properties"
	verbose = false
	debug = false
	outputFormat = "json"
	outputFile = ""
	minSdk = 0
	watchInputs = false
	redact = false
	signerCmd = sign.DefaultCmd
	signOutput = ""
	signVerify = false
}

// run executes the CLI inside dir and returns what it printed
func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	t.Chdir(dir)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	err := rootCmd.Execute()
	return out.String(), err
}

func write(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func decode(t *testing.T, out string) config.AppConfig {
	t.Helper()
	var cfg config.AppConfig
	require.NoError(t, json.Unmarshal([]byte(out), &cfg))
	return cfg
}

func TestResolveWithoutInputs(t *testing.T) {
	out, err := run(t, t.TempDir(), "resolve")
	require.NoError(t, err)

	cfg := decode(t, out)
	assert.Equal(t, "com.medify.app", cfg.ApplicationID)
	assert.Equal(t, 21, cfg.MinSdk)
	assert.True(t, cfg.SigningConfigs[config.BuildTypeRelease].Empty())
	assert.True(t, cfg.BuildTypes.Release.MinifyEnabled)
	assert.False(t, cfg.BuildTypes.Debug.MinifyEnabled)
	assert.Contains(t, out, `"keyAlias": null`)
}

func TestResolveWithInputs(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "key.properties", "keyAlias=release\nkeyPassword=pw123\nstoreFile=/keys/release.jks\nstorePassword=spw456")
	write(t, dir, "local.properties", "flutter.minSdkVersion=24\nflutter.versionCode=12\nflutter.versionName=1.4.0\n")

	out, err := run(t, dir, "resolve")
	require.NoError(t, err)

	cfg := decode(t, out)
	assert.Equal(t, 24, cfg.MinSdk)
	// flutter_version is off by default
	assert.Equal(t, 1, cfg.VersionCode)

	sc := cfg.SigningConfigs[config.BuildTypeRelease]
	require.True(t, sc.Complete())
	assert.Equal(t, "release", *sc.KeyAlias)
	assert.Equal(t, "pw123", *sc.KeyPassword)
	assert.Equal(t, "/keys/release.jks", *sc.StoreFile)
	assert.Equal(t, "spw456", *sc.StorePassword)
}

func TestResolveFlutterVersion(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, config.DefaultFile, "flutter_version: true\n")
	write(t, dir, "local.properties", "flutter.versionCode=12\nflutter.versionName=1.4.0\n")

	out, err := run(t, dir, "resolve", "--min-sdk", "26")
	require.NoError(t, err)

	cfg := decode(t, out)
	assert.Equal(t, 26, cfg.MinSdk)
	assert.Equal(t, 12, cfg.VersionCode)
	assert.Equal(t, "1.4.0", cfg.VersionName)
}

func TestResolveIsDeterministic(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "key.properties", "keyAlias=release\nkeyPassword=pw123\n")

	first, err := run(t, dir, "resolve")
	require.NoError(t, err)
	second, err := run(t, dir, "resolve")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestResolveRedact(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "key.properties", "keyAlias=release\nkeyPassword=pw123\nstorePassword=spw456\n")

	out, err := run(t, dir, "resolve", "--redact")
	require.NoError(t, err)
	assert.NotContains(t, out, "pw123")
	assert.NotContains(t, out, "spw456")

	sc := decode(t, out).SigningConfigs[config.BuildTypeRelease]
	assert.Equal(t, "release", *sc.KeyAlias)
	assert.Equal(t, "********", *sc.KeyPassword)
}

func TestResolveYAML(t *testing.T) {
	out, err := run(t, t.TempDir(), "resolve", "--format", "yaml")
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "com.medify.app", doc["applicationId"])
	assert.Equal(t, 36, doc["compileSdk"])
}

func TestResolveToFile(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "app-config.json")

	out, err := run(t, dir, "resolve", "-o", target)
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "com.medify.app", decode(t, string(data)).Namespace)
}

func TestResolveErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, dir, "resolve", "--format", "toml")
	assert.ErrorContains(t, err, "unsupported format")

	write(t, dir, "key.properties", "keyAlias release\n")
	_, err = run(t, dir, "resolve")
	assert.ErrorContains(t, err, "key.properties:1")

	bad := t.TempDir()
	write(t, bad, config.DefaultFile, "target_sdk: 40\n")
	_, err = run(t, bad, "resolve")
	assert.ErrorContains(t, err, "config validation failed")
}

func TestResolveCustomPropertiesPath(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "upload.properties", "keyAlias=upload\n")

	out, err := run(t, dir, "resolve", "--properties", "upload.properties")
	require.NoError(t, err)

	sc := decode(t, out).SigningConfigs[config.BuildTypeRelease]
	require.NotNil(t, sc.KeyAlias)
	assert.Equal(t, "upload", *sc.KeyAlias)
	assert.Nil(t, sc.StoreFile)
}

func TestWatchFollowsMovedKeystore(t *testing.T) {
	dir := t.TempDir()
	resetFlags()
	t.Chdir(dir)
	outputFile = "app-config.json"

	write(t, dir, config.DefaultFile, "keystore_properties: a.properties\n")
	write(t, dir, "a.properties", "keyAlias=a\n")
	write(t, dir, "b.properties", "keyAlias=b\n")

	in, err := resolveOnce(io.Discard)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- watchAndResolve(ctx, io.Discard, in.files()) }()
	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-done)
	})
	time.Sleep(100 * time.Millisecond)

	alias := func() string {
		data, err := os.ReadFile(filepath.Join(dir, outputFile))
		if err != nil {
			return ""
		}
		var cfg config.AppConfig
		if json.Unmarshal(data, &cfg) != nil {
			return ""
		}
		if sc := cfg.SigningConfigs[config.BuildTypeRelease]; sc.KeyAlias != nil {
			return *sc.KeyAlias
		}
		return ""
	}
	require.Equal(t, "a", alias())

	write(t, dir, config.DefaultFile, "keystore_properties: b.properties\n")
	require.Eventually(t, func() bool { return alias() == "b" }, 5*time.Second, 50*time.Millisecond)

	// The tick is longer than the debounce so each rewrite gets resolved.
	require.Eventually(t, func() bool {
		_ = os.WriteFile(filepath.Join(dir, "b.properties"), []byte("keyAlias=c\n"), 0o600)
		return alias() == "c"
	}, 5*time.Second, 500*time.Millisecond)
}

func TestCheck(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, dir, "check")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Project com.medify.app is valid")
	assert.Contains(t, out, "No release signing config")

	write(t, dir, "key.properties", "keyAlias=release\nstoreFile=release.jks\n")
	out, err = run(t, dir, "check")
	require.NoError(t, err)
	assert.Contains(t, out, "missing: keyPassword, storePassword")

	write(t, dir, "key.properties", "keyAlias=a\nkeyPassword=b\nstoreFile=c\nstorePassword=d\n")
	out, err = run(t, dir, "check")
	require.NoError(t, err)
	assert.Contains(t, out, "Release signing config loaded")
}

func TestInit(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, dir, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Created "+config.DefaultFile)

	p, err := config.Load(filepath.Join(dir, config.DefaultFile))
	require.NoError(t, err)
	assert.NoError(t, p.Validate())

	_, err = run(t, dir, "init")
	assert.ErrorContains(t, err, "already exists")
}

func TestInitCustomConfig(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, dir, "init", "--config", "custom.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "Created custom.yaml")
	assert.NoFileExists(t, filepath.Join(dir, config.DefaultFile))

	p, err := config.Load(filepath.Join(dir, "custom.yaml"))
	require.NoError(t, err)
	assert.NoError(t, p.Validate())

	out, err = run(t, dir, "resolve", "--config", "custom.yaml")
	require.NoError(t, err)
	assert.Equal(t, "com.medify.app", decode(t, out).ApplicationID)
}

func TestMissingCustomConfigIsAnError(t *testing.T) {
	_, err := run(t, t.TempDir(), "resolve", "--config", "missing.yaml")
	assert.ErrorContains(t, err, "failed to load config")
}

func TestVersion(t *testing.T) {
	out, err := run(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Contains(t, out, "apkconf 1.0.0")
}

func TestSchemaValidate(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, config.DefaultFile, config.DefaultTemplate())
	_, err := run(t, dir, "schema", "validate")
	require.NoError(t, err)

	write(t, dir, config.DefaultFile, "minify: true\n")
	out, err := run(t, dir, "schema", "validate")
	require.Error(t, err)
	assert.Contains(t, out, "minify: unknown field")
}

func TestSchemaGenerate(t *testing.T) {
	out, err := run(t, t.TempDir(), "schema", "generate")
	require.NoError(t, err)
	assert.Contains(t, out, `"application_id"`)
}

func TestCompletionInstall(t *testing.T) {
	home := t.TempDir()
	for _, shell := range completionShells {
		path, err := installCompletion(rootCmd, shell, home)
		require.NoError(t, err, shell)
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}

	_, err := completionPath("tcsh", home)
	assert.Error(t, err)
}
