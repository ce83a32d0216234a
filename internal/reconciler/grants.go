// Where: internal/reconciler/grants.go
// What: Invoke-permission grants for trigger services.
// Why: Allow each event-source service to call the deployed function.
package reconciler

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/funcwire/funcwire/internal/ui"
)

// ErrGrantExists reports that the provider already holds an identical
// permission statement. Adapters map the provider's conflict error to this
// sentinel so re-runs are treated as success.
var ErrGrantExists = errors.New("permission grant already exists")

const (
	grantAction     = "lambda:InvokeFunction"
	statementPrefix = "funcwire-"
)

// triggerPrincipals are the service principals that may originate an
// invocation: the scheduler, the pub/sub service, the storage-event service,
// and the API gateway placeholder.
var triggerPrincipals = []string{
	"events.amazonaws.com",
	"sns.amazonaws.com",
	"s3.amazonaws.com",
	"apigateway.amazonaws.com",
}

// GrantInput describes a single permission-grant call.
type GrantInput struct {
	FunctionName string
	StatementID  string
	Principal    string
	Action       string
}

// FunctionAPI is the provider surface needed to grant invoke permission.
type FunctionAPI interface {
	AddPermission(ctx context.Context, input GrantInput) error
}

// StatementID derives the deterministic statement identifier for a
// (function, principal) pair: a fixed namespace tag plus the first 8 hex
// characters of the MD5 of the canonical JSON encoding of the grant.
// Identical inputs always yield the same id, which is what makes grant
// issuance idempotent across runs.
func StatementID(fn FunctionIdentity, principal string) string {
	// json.Marshal sorts map keys, which keeps the encoding canonical.
	payload, _ := json.Marshal(map[string]string{
		"Action":       grantAction,
		"FunctionName": string(fn),
		"Principal":    principal,
	})
	sum := md5.Sum(payload)
	return statementPrefix + hex.EncodeToString(sum[:])[:8]
}

func (r *Runner) applyGrants(ctx context.Context, console *ui.Console, fn FunctionIdentity) error {
	console.BlockStart("🔐", "Invoke permissions")
	api, err := r.functionAPI(ctx)
	if err != nil {
		return fmt.Errorf("build function client: %w", err)
	}

	for _, principal := range triggerPrincipals {
		sid := StatementID(fn, principal)
		if r.Debug {
			console.Item(principal, sid)
		}
		if r.DryRun {
			console.ItemPlain(fmt.Sprintf("%sgrant invoke to %s (%s)", r.planPrefix(), principal, sid))
			continue
		}

		// Not scoped to a source ARN: every resource of the service may
		// invoke the function. Broader than necessary, kept for parity with
		// prior deployments.
		err := api.AddPermission(ctx, GrantInput{
			FunctionName: string(fn),
			StatementID:  sid,
			Principal:    principal,
			Action:       grantAction,
		})
		switch {
		case errors.Is(err, ErrGrantExists):
			console.ItemPlain(fmt.Sprintf("grant for %s already in place (%s)", principal, sid))
		case err != nil:
			return fmt.Errorf("grant invoke to %s: %w", principal, err)
		default:
			console.ItemPlain(fmt.Sprintf("granted invoke to %s (%s)", principal, sid))
		}
	}
	return nil
}
