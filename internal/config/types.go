package config

import (
	"github.com/oarkflow/apkconf/internal/deps"
)

// Build type names
const (
	BuildTypeRelease = "release"
	BuildTypeDebug   = "debug"
)

// Keystore property keys read into the release signing config
const (
	KeyAlias         = "keyAlias"
	KeyPassword      = "keyPassword"
	KeyStoreFile     = "storeFile"
	KeyStorePassword = "storePassword"
)

// AppConfig is the resolved configuration handed to the external build tool
type AppConfig struct {
	Namespace      string                   `json:"namespace" yaml:"namespace"`
	ApplicationID  string                   `json:"applicationId" yaml:"applicationId"`
	CompileSdk     int                      `json:"compileSdk" yaml:"compileSdk"`
	MinSdk         int                      `json:"minSdk" yaml:"minSdk"`
	TargetSdk      int                      `json:"targetSdk" yaml:"targetSdk"`
	NdkVersion     string                   `json:"ndkVersion,omitempty" yaml:"ndkVersion,omitempty"`
	VersionCode    int                      `json:"versionCode" yaml:"versionCode"`
	VersionName    string                   `json:"versionName" yaml:"versionName"`
	Plugins        []string                 `json:"plugins" yaml:"plugins"`
	CompileOptions CompileOptions           `json:"compileOptions" yaml:"compileOptions"`
	KotlinOptions  KotlinOptions            `json:"kotlinOptions" yaml:"kotlinOptions"`
	SigningConfigs map[string]SigningConfig `json:"signingConfigs" yaml:"signingConfigs"`
	BuildTypes     BuildTypes               `json:"buildTypes" yaml:"buildTypes"`
	FlutterSource  string                   `json:"flutterSource" yaml:"flutterSource"`
	Dependencies   []deps.Dependency        `json:"dependencies" yaml:"dependencies"`
}

// CompileOptions mirrors the Java compile options block
type CompileOptions struct {
	SourceCompatibility          string `json:"sourceCompatibility" yaml:"sourceCompatibility"`
	TargetCompatibility          string `json:"targetCompatibility" yaml:"targetCompatibility"`
	CoreLibraryDesugaringEnabled bool   `json:"coreLibraryDesugaringEnabled" yaml:"coreLibraryDesugaringEnabled"`
}

// KotlinOptions mirrors the Kotlin compile options block
type KotlinOptions struct {
	JvmTarget string `json:"jvmTarget" yaml:"jvmTarget"`
}

// SigningConfig holds the release signing credentials.
// Each field is nil when the properties file or the key is missing.
// Partially filled configs are passed through as-is.
type SigningConfig struct {
	KeyAlias      *string `json:"keyAlias" yaml:"keyAlias"`
	KeyPassword   *string `json:"keyPassword" yaml:"keyPassword"`
	StoreFile     *string `json:"storeFile" yaml:"storeFile"`
	StorePassword *string `json:"storePassword" yaml:"storePassword"`
}

// BuildTypes holds the two fixed build variants
type BuildTypes struct {
	Release BuildType `json:"release" yaml:"release"`
	Debug   BuildType `json:"debug" yaml:"debug"`
}

// BuildType is a single build variant
type BuildType struct {
	Name            string `json:"name" yaml:"name"`
	MinifyEnabled   bool   `json:"minifyEnabled" yaml:"minifyEnabled"`
	ShrinkResources bool   `json:"shrinkResources" yaml:"shrinkResources"`

	// SigningConfig names an entry of AppConfig.SigningConfigs
	SigningConfig string `json:"signingConfig,omitempty" yaml:"signingConfig,omitempty"`

	ProguardFiles []ProguardFile `json:"proguardFiles,omitempty" yaml:"proguardFiles,omitempty"`
}

// ProguardFile is an obfuscation rule file. Default files ship with the
// Android SDK and are located by the build tool.
type ProguardFile struct {
	Path    string `json:"path" yaml:"path"`
	Default bool   `json:"default,omitempty" yaml:"default,omitempty"`
}

// Complete reports whether all four credentials are set
func (s SigningConfig) Complete() bool {
	return len(s.Missing()) == 0
}

// Empty reports whether no credential is set
func (s SigningConfig) Empty() bool {
	return len(s.Missing()) == 4
}

// Missing returns the property keys that were not set
func (s SigningConfig) Missing() []string {
	var missing []string
	if s.KeyAlias == nil {
		missing = append(missing, KeyAlias)
	}
	if s.KeyPassword == nil {
		missing = append(missing, KeyPassword)
	}
	if s.StoreFile == nil {
		missing = append(missing, KeyStoreFile)
	}
	if s.StorePassword == nil {
		missing = append(missing, KeyStorePassword)
	}
	return missing
}

// Redacted returns a copy with the passwords masked, for logs
func (s SigningConfig) Redacted() SigningConfig {
	mask := func(v *string) *string {
		if v == nil {
			return nil
		}
		m := "********"
		return &m
	}
	s.KeyPassword = mask(s.KeyPassword)
	s.StorePassword = mask(s.StorePassword)
	return s
}

// SigningConfigFor returns the signing config referenced by a build type
func (c *AppConfig) SigningConfigFor(bt BuildType) (SigningConfig, bool) {
	if bt.SigningConfig == "" {
		return SigningConfig{}, false
	}
	sc, ok := c.SigningConfigs[bt.SigningConfig]
	return sc, ok
}

// BuildType returns the variant with the given name
func (c *AppConfig) BuildType(name string) (BuildType, bool) {
	switch name {
	case BuildTypeRelease:
		return c.BuildTypes.Release, true
	case BuildTypeDebug:
		return c.BuildTypes.Debug, true
	}
	return BuildType{}, false
}
