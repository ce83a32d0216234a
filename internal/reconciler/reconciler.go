// Where: internal/reconciler/reconciler.go
// What: Trigger reconciler entrypoint.
// Why: Apply declared event-source bindings to a deployed function.
package reconciler

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/funcwire/funcwire/internal/manifest"
	"github.com/funcwire/funcwire/internal/ui"
)

// FunctionIdentity is the opaque handle (an ARN) identifying the deployed
// compute target. It is produced once per run and never changes during it.
type FunctionIdentity string

// Runner walks the declared binding catalogs and issues the provider calls
// needed to reach the desired state. Bindings within a category are applied
// in declared order; the categories themselves are independent.
//
// Execution is strictly sequential and stops at the first fatal error. The
// only tolerated provider error is a duplicate permission grant, which is
// reported and treated as success. Removed triggers are never reconciled:
// this runner only adds or updates, it does not delete.
type Runner struct {
	Out     io.Writer
	Clients ClientFactory
	DryRun  bool
	Debug   bool
}

// New constructs a Runner backed by real provider clients.
func New(factory ClientFactory) *Runner {
	return &Runner{
		Out:     os.Stdout,
		Clients: factory,
	}
}

// Apply grants invoke permission to every trigger-originating service and
// registers each declared binding against fn. In dry-run mode no mutating
// provider call is issued; the full plan is still printed.
func (r *Runner) Apply(ctx context.Context, fn FunctionIdentity, desc manifest.Descriptor) error {
	if r == nil {
		return fmt.Errorf("reconciler is nil")
	}
	out := r.Out
	if out == nil {
		out = os.Stdout
	}
	console := ui.New(out)
	if r.Clients == nil && !r.DryRun {
		return fmt.Errorf("client factory not configured")
	}

	if err := r.applyGrants(ctx, console, fn); err != nil {
		return err
	}
	if err := r.applySchedules(ctx, console, fn, desc.Schedules); err != nil {
		return err
	}
	if err := r.applyTopics(ctx, console, fn, desc.Topics); err != nil {
		return err
	}
	if err := r.applyStorage(ctx, console, fn, desc.Buckets); err != nil {
		return err
	}
	return nil
}

func (r *Runner) functionAPI(ctx context.Context) (FunctionAPI, error) {
	if r.DryRun {
		return nil, nil
	}
	return r.Clients.Function(ctx)
}

func (r *Runner) eventsAPI(ctx context.Context) (EventsAPI, error) {
	if r.DryRun {
		return nil, nil
	}
	return r.Clients.Events(ctx)
}

func (r *Runner) topicsAPI(ctx context.Context) (TopicsAPI, error) {
	if r.DryRun {
		return nil, nil
	}
	return r.Clients.Topics(ctx)
}

func (r *Runner) storageAPI(ctx context.Context) (StorageAPI, error) {
	if r.DryRun {
		return nil, nil
	}
	return r.Clients.Storage(ctx)
}

// planPrefix marks simulated operations in dry-run output.
func (r *Runner) planPrefix() string {
	if r.DryRun {
		return "(dry-run) "
	}
	return ""
}
