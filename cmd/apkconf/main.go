/*
Package main provides the CLI entry point for apkconf.
*/
package main

import (
	"os"

	"github.com/oarkflow/apkconf/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
