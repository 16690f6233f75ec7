/*
Package apkconf resolves the Android build configuration of a Flutter
application into a single record consumed by the external build tool.

Apkconf reads:
  - an optional keystore properties file (key.properties)
  - Flutter's local.properties for framework-provided values such as minSdk
  - an optional project file (.apkconf.yaml) overriding static identifiers

and produces the application identifiers, SDK bounds, version fields, signing
configuration and the release/debug build types.

# Usage

	apkconf resolve               # Print the resolved configuration as JSON
	apkconf resolve --format yaml # Print it as YAML
	apkconf resolve --watch       # Re-resolve when inputs change
	apkconf check                 # Check the input files
	apkconf sign app-release.apk  # Sign an APK with the resolved credentials
*/
package apkconf

// Version is the current version of apkconf
const Version = "1.0.0"

// BuildDate is set at build time
var BuildDate string

// GitCommit is set at build time
var GitCommit string
