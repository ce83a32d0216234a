// Where: internal/app/app.go
// What: CLI entrypoint logic.
// Why: Provide a testable command dispatcher.
package app

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/funcwire/funcwire/internal/deployer"
	"github.com/funcwire/funcwire/internal/manifest"
	"github.com/funcwire/funcwire/internal/reconciler"
	"github.com/funcwire/funcwire/internal/version"
)

// Dependencies holds all injected dependencies required for CLI command
// execution. This structure enables dependency injection for testing and
// allows swapping implementations of the collaborating subsystems.
type Dependencies struct {
	ProjectDir string
	Out        io.Writer
	Deploy     DeployDeps
}

// DeployDeps are the collaborators of the deploy command.
type DeployDeps struct {
	// Deployer produces the function identity (the external framework seam).
	Deployer deployer.Deployer
	// Clients builds provider clients for the reconciler.
	Clients reconciler.ClientFactory
	// LoadDescriptor parses the application descriptor.
	LoadDescriptor func(path string) (manifest.Descriptor, error)
}

// CLI defines the command-line interface structure parsed by Kong.
// It contains global flags and all subcommand definitions.
type CLI struct {
	Profile string     `help:"AWS shared config profile"`
	Region  string     `help:"AWS region override"`
	Debug   bool       `help:"Enable verbose output"`
	EnvFile string     `name:"env-file" help:"Path to .env file"`
	Deploy  DeployCmd  `cmd:"" help:"Wire declared triggers to the deployed function"`
	Plan    PlanCmd    `cmd:"" help:"Preview the deploy plan without touching the provider"`
	Version VersionCmd `cmd:"" help:"Show version information"`
}

type DeployCmd struct {
	Path       string `arg:"" optional:"" help:"Project directory (default: current directory)"`
	Descriptor string `help:"Path to descriptor file (default: funcwire.yml in project dir)"`
	DryRun     bool   `name:"dry-run" help:"Print the plan without issuing provider calls"`
}

type PlanCmd struct {
	Path       string `arg:"" optional:"" help:"Project directory (default: current directory)"`
	Descriptor string `help:"Path to descriptor file (default: funcwire.yml in project dir)"`
}

type VersionCmd struct{}

// Run is the main entry point for CLI command execution.
// It parses the command-line arguments, identifies the requested command,
// and dispatches to the appropriate handler. Returns 0 on success, 1 on error.
func Run(args []string, deps Dependencies) int {
	out := deps.Out
	if out == nil {
		out = os.Stdout
	}

	cli := CLI{}
	parser, err := kong.New(&cli)
	if err != nil {
		return exitWithError(out, err)
	}

	ctx, err := parser.Parse(args)
	if err != nil {
		return exitWithError(out, err)
	}

	// Load environment file if provided or if .env exists in current directory
	if cli.EnvFile != "" {
		if err := godotenv.Load(cli.EnvFile); err != nil {
			fmt.Fprintf(out, "Warning: failed to load env file %s: %v\n", cli.EnvFile, err)
		}
	} else if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			fmt.Fprintf(out, "Warning: failed to load .env: %v\n", err)
		}
	}

	command := ctx.Command()
	if exitCode, handled := dispatchCommand(command, cli, deps, out); handled {
		return exitCode
	}

	fmt.Fprintln(out, "unknown command")
	return 1
}

type commandHandler func(CLI, Dependencies, io.Writer) int

func dispatchCommand(command string, cli CLI, deps Dependencies, out io.Writer) (int, bool) {
	exactHandlers := map[string]commandHandler{
		"deploy":  runDeploy,
		"plan":    runPlan,
		"version": func(_ CLI, _ Dependencies, out io.Writer) int { return runVersion(out) },
	}
	if handler, ok := exactHandlers[command]; ok {
		return handler(cli, deps, out), true
	}

	prefixHandlers := []struct {
		prefix  string
		handler commandHandler
	}{
		{prefix: "deploy ", handler: runDeploy},
		{prefix: "plan ", handler: runPlan},
	}
	for _, entry := range prefixHandlers {
		if strings.HasPrefix(command, entry.prefix) {
			return entry.handler(cli, deps, out), true
		}
	}

	return 1, false
}

// runVersion prints the version information of the CLI.
func runVersion(out io.Writer) int {
	fmt.Fprintln(out, version.GetVersion())
	return 0
}

func exitWithError(out io.Writer, err error) int {
	fmt.Fprintf(out, "Error: %v\n", err)
	return 1
}
