package schema

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oarkflow/apkconf/internal/config"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultTemplateIsValid(t *testing.T) {
	path := writeFile(t, ".apkconf.yaml", config.DefaultTemplate())

	result := ValidateConfig(path)
	assert.True(t, result.Valid, "errors: %v", result.Errors)
}

func TestEmptyFileIsValid(t *testing.T) {
	result := ValidateConfig(writeFile(t, ".apkconf.yaml", "# nothing set\n"))
	assert.True(t, result.Valid)
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name     string
		yaml     string
		wantPath string
	}{
		{name: "bad package name", yaml: "application_id: medify\n", wantPath: "application_id"},
		{name: "wrong type", yaml: "compile_sdk: thirty-six\n", wantPath: "compile_sdk"},
		{name: "sdk below minimum", yaml: "target_sdk: 0\n", wantPath: "target_sdk"},
		{name: "unknown field", yaml: "minify: true\n", wantPath: "minify"},
		{name: "java enum", yaml: "java_version: \"9\"\n", wantPath: "java_version"},
		{name: "dependency missing notation", yaml: "dependencies:\n  - configuration: implementation\n", wantPath: "dependencies[0].notation"},
		{name: "dependency bad notation", yaml: "dependencies:\n  - configuration: implementation\n    notation: a:b\n", wantPath: "dependencies[0].notation"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateConfig(writeFile(t, ".apkconf.yaml", tt.yaml))
			require.False(t, result.Valid)
			require.NotEmpty(t, result.Errors)
			assert.Equal(t, tt.wantPath, result.Errors[0].Path)
		})
	}
}

func TestValidateVersionEnum(t *testing.T) {
	tests := []struct {
		name  string
		file  string
		body  string
		valid bool
	}{
		{name: "yaml", file: ".apkconf.yaml", body: "version: 1\n", valid: true},
		{name: "json", file: "apkconf.json", body: `{"version": 1, "compile_sdk": 36}`, valid: true},
		{name: "json unknown version", file: "apkconf.json", body: `{"version": 2}`},
		{name: "string version", file: ".apkconf.yaml", body: "version: \"1\"\n"},
	}

	v := NewValidator(GenerateSchema())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := v.ValidateFile(writeFile(t, tt.file, tt.body))
			assert.Equal(t, tt.valid, result.Valid, "errors: %v", result.Errors)
		})
	}
}

func TestValidateFileErrors(t *testing.T) {
	v := NewValidator(GenerateSchema())

	result := v.ValidateFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.False(t, result.Valid)

	result = v.ValidateFile(writeFile(t, "broken.json", "{"))
	require.False(t, result.Valid)
	assert.Contains(t, result.Errors[0].Message, "invalid JSON")
}

func TestWriteSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "apkconf.schema.json")
	require.NoError(t, WriteSchema(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var s Schema
	require.NoError(t, json.Unmarshal(data, &s))
	assert.Equal(t, "object", s.Type)
	assert.Contains(t, s.Properties, "application_id")
	assert.Contains(t, s.Defs, "dependency")
}
