// Where: internal/deployer/deployer.go
// What: External deploy collaborator seam.
// Why: Keep packaging and function deployment injectable, not imported.
package deployer

import (
	"context"
	"fmt"

	"github.com/funcwire/funcwire/internal/reconciler"
)

// Deployer produces the function identity the reconciler wires triggers to.
// Packaging, policy management, and the function deploy itself belong to an
// external framework; implementations of this interface only surface its
// result.
type Deployer interface {
	BuildAndDeploy(ctx context.Context, projectDir string) (reconciler.FunctionIdentity, error)
}

// PlaceholderIdentity returns the stand-in identity used for dry runs, when
// no deploy has happened and none should.
func PlaceholderIdentity(functionName string) reconciler.FunctionIdentity {
	if functionName == "" {
		functionName = "function"
	}
	return reconciler.FunctionIdentity(
		fmt.Sprintf("arn:aws:lambda:dry-run:000000000000:function:%s", functionName),
	)
}
