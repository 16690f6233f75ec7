/*
Package deps provides dependency declarations for the Android build.
Declarations are passed through unchanged to the external dependency
resolver; this package only parses and carries them.
*/
package deps

import (
	"fmt"
	"strings"
)

// Configuration names understood by the Android Gradle plugin
const (
	ConfigImplementation            = "implementation"
	ConfigCoreLibraryDesugaring     = "coreLibraryDesugaring"
	ConfigTestImplementation        = "testImplementation"
	ConfigAndroidTestImplementation = "androidTestImplementation"
)

// Coordinate is a group:name:version library coordinate
type Coordinate struct {
	Group   string `json:"group" yaml:"group"`
	Name    string `json:"name" yaml:"name"`
	Version string `json:"version" yaml:"version"`
}

// ParseCoordinate parses a "group:name:version" string
func ParseCoordinate(s string) (Coordinate, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return Coordinate{}, fmt.Errorf("invalid coordinate %q: expected group:name:version", s)
	}
	for i, part := range parts {
		if part == "" {
			return Coordinate{}, fmt.Errorf("invalid coordinate %q: empty %s", s, [...]string{"group", "name", "version"}[i])
		}
	}
	return Coordinate{Group: parts[0], Name: parts[1], Version: parts[2]}, nil
}

// String returns the coordinate in group:name:version form
func (c Coordinate) String() string {
	return c.Group + ":" + c.Name + ":" + c.Version
}

// Dependency is a coordinate declared under a configuration
type Dependency struct {
	Configuration string `json:"configuration" yaml:"configuration"`
	Notation      string `json:"notation" yaml:"notation"`
}

// Coordinate parses the dependency notation
func (d Dependency) Coordinate() (Coordinate, error) {
	return ParseCoordinate(d.Notation)
}

func (d Dependency) String() string {
	return fmt.Sprintf("%s(%q)", d.Configuration, d.Notation)
}

// Resolver receives each declared dependency. It is supplied by the
// external build tool; a nil Resolver means nothing is resolved.
type Resolver func(Dependency) error

// Validate checks that every dependency has a configuration and a
// well-formed notation
func Validate(list []Dependency) error {
	for i, d := range list {
		if d.Configuration == "" {
			return fmt.Errorf("dependencies[%d]: configuration is required", i)
		}
		if _, err := d.Coordinate(); err != nil {
			return fmt.Errorf("dependencies[%d]: %w", i, err)
		}
	}
	return nil
}

// PassThrough hands every dependency to resolve in declaration order.
// The first error stops the walk.
func PassThrough(list []Dependency, resolve Resolver) error {
	if resolve == nil {
		return nil
	}
	for _, d := range list {
		if err := resolve(d); err != nil {
			return fmt.Errorf("failed to resolve %s: %w", d, err)
		}
	}
	return nil
}
