/*
Package config provides project file loading and build configuration
resolution for apkconf.
*/
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"dario.cat/mergo"
	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/oarkflow/apkconf/internal/deps"
)

// DefaultFile is the project file looked up when --config is not given
const DefaultFile = ".apkconf.yaml"

// Project represents the optional .apkconf.yaml file. Every field falls back
// to DefaultProject when left empty.
type Project struct {
	// Version of the configuration schema
	Version int `yaml:"version,omitempty"`

	// Namespace is the Kotlin/Java namespace of the generated R class
	Namespace string `yaml:"namespace,omitempty"`

	// ApplicationID is the package name published to the store
	ApplicationID string `yaml:"application_id,omitempty"`

	// SDK bounds. minSdk is supplied by the framework, not by this file.
	CompileSdk int `yaml:"compile_sdk,omitempty"`
	TargetSdk  int `yaml:"target_sdk,omitempty"`

	// NdkVersion pins the NDK side-by-side version
	NdkVersion string `yaml:"ndk_version,omitempty"`

	// Version fields
	VersionCode int    `yaml:"version_code,omitempty"`
	VersionName string `yaml:"version_name,omitempty"`

	// FlutterVersion takes versionCode/versionName from local.properties
	// when the Flutter tool recorded them
	FlutterVersion bool `yaml:"flutter_version,omitempty"`

	// JavaVersion used for source/target compatibility and jvmTarget
	JavaVersion string `yaml:"java_version,omitempty"`

	// FlutterSource is the Flutter project root relative to the app module
	FlutterSource string `yaml:"flutter_source,omitempty"`

	// KeystoreProperties is the keystore properties file. Relative paths are
	// taken from the project file directory.
	KeystoreProperties string `yaml:"keystore_properties,omitempty"`

	// Plugins applied to the app module, in order
	Plugins []string `yaml:"plugins,omitempty"`

	// ProguardFiles added to the release build after the SDK default file
	ProguardFiles []string `yaml:"proguard_files,omitempty"`

	// DefaultProguardFile is the SDK-provided rule file
	DefaultProguardFile string `yaml:"default_proguard_file,omitempty"`

	// Dependencies passed through to the dependency resolver
	Dependencies []deps.Dependency `yaml:"dependencies,omitempty"`

	// Include other project files
	Includes []string `yaml:"includes,omitempty"`
}

// DefaultProject returns the built-in values of the app module
func DefaultProject() *Project {
	return &Project{
		Version:             1,
		Namespace:           "com.medify.app",
		ApplicationID:       "com.medify.app",
		CompileSdk:          36,
		TargetSdk:           36,
		NdkVersion:          "28.0.12433566",
		VersionCode:         1,
		VersionName:         "1.0.0",
		JavaVersion:         "11",
		FlutterSource:       "../..",
		KeystoreProperties:  "key.properties",
		DefaultProguardFile: "proguard-android-optimize.txt",
		Plugins: []string{
			"com.android.application",
			"kotlin-android",
			// The Flutter plugin must come after the Android and Kotlin plugins.
			"dev.flutter.flutter-gradle-plugin",
		},
		ProguardFiles: []string{"proguard-rules.pro"},
		Dependencies: []deps.Dependency{
			{Configuration: deps.ConfigCoreLibraryDesugaring, Notation: "com.android.tools:desugar_jdk_libs:2.1.4"},
		},
	}
}

// Load loads a project file and fills unset fields from DefaultProject
func Load(path string) (*Project, error) {
	p, err := load(path, make(map[string]bool))
	if err != nil {
		return nil, err
	}

	if err := mergo.Merge(p, DefaultProject()); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}

	if !filepath.IsAbs(p.KeystoreProperties) {
		p.KeystoreProperties = filepath.Join(filepath.Dir(path), p.KeystoreProperties)
	}

	return p, nil
}

// LoadOrDefault loads path when it exists and returns DefaultProject otherwise
func LoadOrDefault(path string) (*Project, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultProject(), nil
	}
	return Load(path)
}

// load reads path and merges its includes. visited holds the absolute paths
// already loaded; a file is merged at most once, which also breaks cycles
// and globs that match the including file.
func load(path string, visited map[string]bool) (*Project, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("invalid config path %s: %w", path, err)
	}
	visited[abs] = true

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables
	data = []byte(os.ExpandEnv(string(data)))

	var p Project
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Process includes
	baseDir := filepath.Dir(path)
	for _, include := range p.Includes {
		includePath := include
		if !filepath.IsAbs(includePath) {
			includePath = filepath.Join(baseDir, include)
		}

		// Support glob patterns
		matches, err := filepath.Glob(includePath)
		if err != nil {
			return nil, fmt.Errorf("invalid include pattern %s: %w", include, err)
		}

		for _, match := range matches {
			matchAbs, err := filepath.Abs(match)
			if err != nil {
				return nil, fmt.Errorf("invalid include path %s: %w", match, err)
			}
			if visited[matchAbs] {
				log.Debug("Skipping already loaded include", "path", match)
				continue
			}

			included, err := load(match, visited)
			if err != nil {
				return nil, fmt.Errorf("failed to load include %s: %w", match, err)
			}

			if err := mergo.Merge(&p, included, mergo.WithAppendSlice); err != nil {
				return nil, fmt.Errorf("failed to merge include %s: %w", match, err)
			}
		}
	}

	return &p, nil
}

var (
	identifierRe = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*(\.[a-zA-Z][a-zA-Z0-9_]*)+$`)
	javaVersions = map[string]bool{"1.8": true, "8": true, "11": true, "17": true, "21": true}
)

// Validate validates the project values
func (p *Project) Validate() error {
	if !identifierRe.MatchString(p.Namespace) {
		return fmt.Errorf("namespace %q is not a valid package name", p.Namespace)
	}
	if !identifierRe.MatchString(p.ApplicationID) {
		return fmt.Errorf("application_id %q is not a valid package name", p.ApplicationID)
	}

	if p.CompileSdk <= 0 {
		return fmt.Errorf("compile_sdk must be positive")
	}
	if p.TargetSdk <= 0 {
		return fmt.Errorf("target_sdk must be positive")
	}
	if p.TargetSdk > p.CompileSdk {
		return fmt.Errorf("target_sdk %d exceeds compile_sdk %d", p.TargetSdk, p.CompileSdk)
	}

	if p.VersionCode <= 0 {
		return fmt.Errorf("version_code must be positive")
	}
	if p.VersionName == "" {
		return fmt.Errorf("version_name is required")
	}

	if !javaVersions[p.JavaVersion] {
		return fmt.Errorf("unsupported java_version %q", p.JavaVersion)
	}

	seen := make(map[string]bool)
	for _, plugin := range p.Plugins {
		if seen[plugin] {
			return fmt.Errorf("duplicate plugin: %s", plugin)
		}
		seen[plugin] = true
	}

	return deps.Validate(p.Dependencies)
}

// DefaultTemplate returns the default project file
func DefaultTemplate() string {
	return `# apkconf project file
# Every value below is optional; unset values use the built-in defaults.

version: 1

namespace: com.medify.app
application_id: com.medify.app

compile_sdk: 36
target_sdk: 36
ndk_version: "28.0.12433566"

version_code: 1
version_name: "1.0.0"
# Use flutter.versionCode/flutter.versionName from local.properties
flutter_version: false

java_version: "11"
flutter_source: "../.."

# Keystore credentials (keyAlias, keyPassword, storeFile, storePassword)
keystore_properties: key.properties

plugins:
  - com.android.application
  - kotlin-android
  - dev.flutter.flutter-gradle-plugin

default_proguard_file: proguard-android-optimize.txt
proguard_files:
  - proguard-rules.pro

dependencies:
  - configuration: coreLibraryDesugaring
    notation: com.android.tools:desugar_jdk_libs:2.1.4
`
}
