//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Harvest groups targets that run the CLI against the live service.
type Harvest mg.Namespace

// Org harvests the organization named by $ORG into results/, with metrics in
// metrics/.
func (Harvest) Org() error {
	mg.Deps(Build, Init)

	org := os.Getenv("ORG")
	if org == "" {
		return fmt.Errorf("set ORG to a research organization ID (e.g. ORG=grid.214458.e)")
	}
	return sh.RunV(filepath.Join(binDir, binName), "harvest",
		"--org", org,
		"--researchers",
		"--metrics-file", filepath.Join("metrics", "grant-harvester.prom"),
	)
}

// Count prints the number of grants reported for $ORG.
func (Harvest) Count() error {
	mg.Deps(Build)

	org := os.Getenv("ORG")
	if org == "" {
		return fmt.Errorf("set ORG to a research organization ID")
	}
	return sh.RunV(filepath.Join(binDir, binName), "count", "--org", org)
}
