// Package flutter reads the values the Flutter tool writes into
// local.properties and exposes them the way the Flutter Gradle plugin does.
package flutter

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/oarkflow/apkconf/internal/properties"
)

// DefaultMinSdkVersion is flutter.minSdkVersion when local.properties
// does not override it
const DefaultMinSdkVersion = 21

// LocalPropertiesFile is the file name the Flutter tool generates
const LocalPropertiesFile = "local.properties"

const (
	keySDK           = "flutter.sdk"
	keyMinSdkVersion = "flutter.minSdkVersion"
	keyVersionCode   = "flutter.versionCode"
	keyVersionName   = "flutter.versionName"
)

// Local holds the framework values read from local.properties
type Local struct {
	props *properties.Properties
}

// LoadLocal reads local.properties from dir. A missing file yields
// framework defaults.
func LoadLocal(dir string) (*Local, error) {
	return LoadLocalFile(filepath.Join(dir, LocalPropertiesFile))
}

// LoadLocalFile reads the given local.properties file
func LoadLocalFile(path string) (*Local, error) {
	props, err := properties.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load flutter local properties: %w", err)
	}
	return &Local{props: props}, nil
}

// SDK returns the Flutter SDK path, if recorded
func (l *Local) SDK() string {
	v, _ := l.props.Get(keySDK)
	return v
}

// MinSdkVersion returns flutter.minSdkVersion, falling back to the framework
// default when it is absent or not a positive integer
func (l *Local) MinSdkVersion() int {
	n, ok := l.intValue(keyMinSdkVersion)
	if !ok {
		return DefaultMinSdkVersion
	}
	return n
}

// VersionCode returns flutter.versionCode when set
func (l *Local) VersionCode() (int, bool) {
	return l.intValue(keyVersionCode)
}

// VersionName returns flutter.versionName when set
func (l *Local) VersionName() (string, bool) {
	v, ok := l.props.Get(keyVersionName)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func (l *Local) intValue(key string) (int, bool) {
	raw, ok := l.props.Get(key)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		log.Warn("Ignoring invalid flutter property", "key", key, "value", raw)
		return 0, false
	}
	return n, true
}
