// Where: cmd/funcwire/cli.go
// What: CLI dependency wiring helpers.
// Why: Centralize construction for testability.
package main

import (
	"fmt"
	"os"

	"github.com/funcwire/funcwire/internal/app"
	"github.com/funcwire/funcwire/internal/deployer"
	"github.com/funcwire/funcwire/internal/manifest"
)

var getwd = os.Getwd

// buildDependencies constructs all runtime dependencies required by the CLI.
// The provider client factory is left nil here: the deploy handler builds it
// from the parsed profile/region flags.
func buildDependencies() (app.Dependencies, error) {
	projectDir, err := getwd()
	if err != nil {
		return app.Dependencies{}, err
	}

	deps := app.Dependencies{
		ProjectDir: projectDir,
		Out:        os.Stdout,
		Deploy: app.DeployDeps{
			Deployer: deployer.RecordDeployer{
				LoadPolicy: deployer.LoadDefaultPolicy,
				Warn:       warnf,
			},
			LoadDescriptor: manifest.Load,
		},
	}
	return deps, nil
}

// warnf writes a warning message to stderr.
func warnf(message string) {
	fmt.Fprintln(os.Stderr, message)
}
