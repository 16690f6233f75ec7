package config

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/oarkflow/apkconf/internal/deps"
	"github.com/oarkflow/apkconf/internal/properties"
)

// Environment carries the inputs of a resolution pass. Values owned by the
// framework are injected here instead of being read from global state.
type Environment struct {
	// Project holds the static identifiers; nil means DefaultProject
	Project *Project

	// Properties is the keystore mapping; nil is treated as empty
	Properties *properties.Properties

	// MinSdk is the framework-provided flutter.minSdkVersion. It must be
	// positive: ResolveAppConfig returns an error for zero or a negative
	// value instead of emitting a record with an invalid minSdk.
	MinSdk int

	// VersionCode and VersionName override the project values when set
	VersionCode int
	VersionName string

	// ResolveDependency receives every declared dependency unchanged
	ResolveDependency deps.Resolver
}

// ResolveSigningConfig reads the release credentials from props.
// Missing keys yield nil fields; nothing is trimmed or transformed.
func ResolveSigningConfig(props *properties.Properties) SigningConfig {
	return SigningConfig{
		KeyAlias:      props.Lookup(KeyAlias),
		KeyPassword:   props.Lookup(KeyPassword),
		StoreFile:     props.Lookup(KeyStoreFile),
		StorePassword: props.Lookup(KeyStorePassword),
	}
}

// ResolveAppConfig combines the project identifiers, the injected framework
// values and the keystore properties into an AppConfig
func ResolveAppConfig(env Environment) (*AppConfig, error) {
	p := env.Project
	if p == nil {
		p = DefaultProject()
	}

	if env.MinSdk <= 0 {
		return nil, fmt.Errorf("minSdk must be positive, got %d", env.MinSdk)
	}

	versionCode := p.VersionCode
	if env.VersionCode > 0 {
		versionCode = env.VersionCode
	}
	versionName := p.VersionName
	if env.VersionName != "" {
		versionName = env.VersionName
	}

	signing := ResolveSigningConfig(env.Properties)
	if !signing.Empty() && !signing.Complete() {
		log.Warn("Release signing config is incomplete", "missing", signing.Missing())
	}

	cfg := &AppConfig{
		Namespace:     p.Namespace,
		ApplicationID: p.ApplicationID,
		CompileSdk:    p.CompileSdk,
		MinSdk:        env.MinSdk,
		TargetSdk:     p.TargetSdk,
		NdkVersion:    p.NdkVersion,
		VersionCode:   versionCode,
		VersionName:   versionName,
		Plugins:       append([]string{}, p.Plugins...),
		CompileOptions: CompileOptions{
			SourceCompatibility:          p.JavaVersion,
			TargetCompatibility:          p.JavaVersion,
			CoreLibraryDesugaringEnabled: hasDesugaring(p.Dependencies),
		},
		KotlinOptions: KotlinOptions{JvmTarget: p.JavaVersion},
		SigningConfigs: map[string]SigningConfig{
			BuildTypeRelease: signing,
		},
		BuildTypes: BuildTypes{
			Release: releaseBuildType(p),
			Debug:   debugBuildType(),
		},
		FlutterSource: p.FlutterSource,
		Dependencies:  append([]deps.Dependency{}, p.Dependencies...),
	}

	if err := deps.PassThrough(cfg.Dependencies, env.ResolveDependency); err != nil {
		return nil, err
	}

	log.Debug("Resolved app config",
		"applicationId", cfg.ApplicationID,
		"minSdk", cfg.MinSdk,
		"targetSdk", cfg.TargetSdk,
		"versionCode", cfg.VersionCode,
		"versionName", cfg.VersionName)

	return cfg, nil
}

func releaseBuildType(p *Project) BuildType {
	var files []ProguardFile
	if p.DefaultProguardFile != "" {
		files = append(files, ProguardFile{Path: p.DefaultProguardFile, Default: true})
	}
	for _, f := range p.ProguardFiles {
		files = append(files, ProguardFile{Path: f})
	}

	return BuildType{
		Name:            BuildTypeRelease,
		MinifyEnabled:   true,
		ShrinkResources: true,
		SigningConfig:   BuildTypeRelease,
		ProguardFiles:   files,
	}
}

func debugBuildType() BuildType {
	return BuildType{
		Name:            BuildTypeDebug,
		MinifyEnabled:   false,
		ShrinkResources: false,
	}
}

// hasDesugaring reports whether a desugaring library is declared. The
// Android plugin rejects coreLibraryDesugaring without the compile option.
func hasDesugaring(list []deps.Dependency) bool {
	for _, d := range list {
		if d.Configuration == deps.ConfigCoreLibraryDesugaring {
			return true
		}
	}
	return false
}
