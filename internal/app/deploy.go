// Where: internal/app/deploy.go
// What: Deploy and plan command handlers.
// Why: Resolve inputs, obtain the function identity, run the reconciler.
package app

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/funcwire/funcwire/internal/deployer"
	"github.com/funcwire/funcwire/internal/manifest"
	"github.com/funcwire/funcwire/internal/reconciler"
	"github.com/funcwire/funcwire/internal/ui"
)

// runDeploy wires the declared triggers to the deployed function.
func runDeploy(cli CLI, deps Dependencies, out io.Writer) int {
	request := deployRequest{
		Path:       cli.Deploy.Path,
		Descriptor: cli.Deploy.Descriptor,
		DryRun:     cli.Deploy.DryRun,
	}
	if err := executeDeploy(context.Background(), cli, deps, out, request); err != nil {
		return exitWithError(out, err)
	}
	return 0
}

// runPlan is deploy with dry-run forced: compute and print everything,
// mutate nothing.
func runPlan(cli CLI, deps Dependencies, out io.Writer) int {
	request := deployRequest{
		Path:       cli.Plan.Path,
		Descriptor: cli.Plan.Descriptor,
		DryRun:     true,
	}
	if err := executeDeploy(context.Background(), cli, deps, out, request); err != nil {
		return exitWithError(out, err)
	}
	return 0
}

type deployRequest struct {
	Path       string
	Descriptor string
	DryRun     bool
}

func executeDeploy(ctx context.Context, cli CLI, deps Dependencies, out io.Writer, request deployRequest) error {
	projectDir := strings.TrimSpace(request.Path)
	if projectDir == "" {
		projectDir = deps.ProjectDir
	}
	if projectDir == "" {
		projectDir = "."
	}

	descriptorPath := strings.TrimSpace(request.Descriptor)
	if descriptorPath == "" {
		descriptorPath = filepath.Join(projectDir, manifest.DefaultFileName)
	}

	loadDescriptor := deps.Deploy.LoadDescriptor
	if loadDescriptor == nil {
		loadDescriptor = manifest.Load
	}
	desc, err := loadDescriptor(descriptorPath)
	if err != nil {
		return err
	}

	console := ui.New(out)
	console.Header("🚀", fmt.Sprintf("Deploying %s", desc.Function.Name))
	console.Item("Descriptor", descriptorPath)
	console.Item("Bindings", desc.BindingCount())
	if request.DryRun {
		console.Warn("dry run: no provider calls will be issued")
	}

	fn, err := resolveIdentity(ctx, deps, projectDir, desc, request.DryRun)
	if err != nil {
		return err
	}
	console.Item("Function", fn)

	runner := &reconciler.Runner{
		Out:     out,
		Clients: deps.Deploy.Clients,
		DryRun:  request.DryRun,
		Debug:   cli.Debug,
	}
	if runner.Clients == nil && !request.DryRun {
		runner.Clients = reconciler.AWSClientFactory{Profile: cli.Profile, Region: cli.Region}
	}
	if err := runner.Apply(ctx, fn, desc); err != nil {
		return err
	}

	fmt.Fprintln(out)
	if request.DryRun {
		console.Success("Plan complete")
	} else {
		console.Success("Deploy complete")
	}
	return nil
}

// resolveIdentity obtains the function identity: the placeholder for dry
// runs, otherwise whatever the external deploy collaborator produced.
func resolveIdentity(
	ctx context.Context,
	deps Dependencies,
	projectDir string,
	desc manifest.Descriptor,
	dryRun bool,
) (reconciler.FunctionIdentity, error) {
	if dryRun {
		return deployer.PlaceholderIdentity(desc.Function.Name), nil
	}
	target := deps.Deploy.Deployer
	if target == nil {
		return "", fmt.Errorf("deployer is not configured")
	}
	fn, err := target.BuildAndDeploy(ctx, projectDir)
	if err != nil {
		return "", err
	}
	return fn, nil
}
