package main

import (
	"os"

	"github.com/Conceptual-Machines/scribe-api/internal/cli"
)

// releaseVersion is set via ldflags during build
var releaseVersion = "dev"

// GetVersion returns the current release version
func GetVersion() string {
	return releaseVersion
}

func main() {
	if err := cli.Execute(GetVersion()); err != nil {
		os.Exit(1)
	}
}
