package cmd

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/oarkflow/apkconf/internal/config"
	"github.com/oarkflow/apkconf/internal/deps"
	"github.com/oarkflow/apkconf/internal/flutter"
	"github.com/oarkflow/apkconf/internal/properties"
)

// inputs are the files a resolution pass reads
type inputs struct {
	projectPath  string
	keystorePath string
	localPath    string
	project      *config.Project
	keystore     *properties.Properties
	local        *flutter.Local
}

func projectPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.DefaultFile
}

// loadInputs reads the project file, the keystore properties and Flutter's
// local.properties. Missing files fall back to defaults.
func loadInputs() (*inputs, error) {
	in := &inputs{projectPath: projectPath(), localPath: localPropertiesFile}

	// An explicit --config has to exist; the default file is optional.
	load := config.LoadOrDefault
	if cfgFile != "" {
		load = config.Load
	}
	project, err := load(in.projectPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := project.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	in.project = project

	in.keystorePath = project.KeystoreProperties
	if propertiesFile != "" {
		in.keystorePath = propertiesFile
	}
	in.keystore, err = properties.Load(in.keystorePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load keystore properties: %w", err)
	}

	in.local, err = flutter.LoadLocalFile(in.localPath)
	if err != nil {
		return nil, err
	}

	log.Debug("Loaded inputs",
		"project", in.projectPath,
		"keystore", in.keystorePath,
		"local", in.localPath)

	return in, nil
}

// environment builds the resolver input. minSdk overrides the framework
// value when positive.
func (in *inputs) environment(minSdk int) config.Environment {
	env := config.Environment{
		Project:    in.project,
		Properties: in.keystore,
		MinSdk:     in.local.MinSdkVersion(),
		ResolveDependency: func(d deps.Dependency) error {
			log.Debug("Declared dependency", "configuration", d.Configuration, "notation", d.Notation)
			return nil
		},
	}
	if minSdk > 0 {
		env.MinSdk = minSdk
	}

	if in.project.FlutterVersion {
		if code, ok := in.local.VersionCode(); ok {
			env.VersionCode = code
		}
		if name, ok := in.local.VersionName(); ok {
			env.VersionName = name
		}
	}

	return env
}

// files returns the paths a watcher has to follow
func (in *inputs) files() []string {
	return []string{in.projectPath, in.keystorePath, in.localPath}
}
