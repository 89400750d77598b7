// Package main is the animaltrack command-line client.
package main

import "github.com/atinyakov/animaltrack/internal/client/cli"

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	cli.Execute(version, buildDate)
}
