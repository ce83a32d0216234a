// Where: internal/deployer/record.go
// What: Deployment record reading.
// Why: Surface the function identity the external framework recorded.
package deployer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/funcwire/funcwire/internal/reconciler"
)

// RecordDirName is the project-relative directory the external framework
// writes its deployment record into.
const RecordDirName = ".funcwire"

// recordFileName is the deployment record inside RecordDirName.
const recordFileName = "record.json"

// Record is the deployment record written by the external framework after a
// successful deploy. This tool only ever reads it.
type Record struct {
	FunctionName string          `json:"function_name"`
	FunctionArn  string          `json:"function_arn"`
	DeployedAt   string          `json:"deployed_at,omitempty"`
	Policy       json.RawMessage `json:"policy,omitempty"`
}

// ErrNoRecord reports that no deployment record exists yet.
var ErrNoRecord = errors.New("no deployment record found")

// RecordDeployer resolves the function identity from the deployment record
// on disk. It satisfies Deployer without re-running the external framework:
// the record is the framework's contract with this tool.
type RecordDeployer struct {
	// LoadPolicy loads the default access policy; consulted only when the
	// record carries no policy yet. Optional.
	LoadPolicy func(projectDir string) (PolicyDocument, error)
	// Warn receives non-fatal notices about the record. Optional.
	Warn func(msg string)
}

// BuildAndDeploy returns the recorded function identity for projectDir.
// A missing or incomplete record is fatal: the external deploy must have run
// before triggers can be wired.
func (d RecordDeployer) BuildAndDeploy(ctx context.Context, projectDir string) (reconciler.FunctionIdentity, error) {
	record, err := LoadRecord(projectDir)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(record.FunctionArn) == "" {
		return "", fmt.Errorf("deployment record has no function identity")
	}

	if len(record.Policy) == 0 && d.LoadPolicy != nil {
		policy, err := d.LoadPolicy(projectDir)
		if err != nil {
			return "", fmt.Errorf("load default policy: %w", err)
		}
		if d.Warn != nil && policy != nil {
			d.Warn(fmt.Sprintf("record has no policy; default policy applies (%d statement(s))",
				policy.StatementCount()))
		}
	}
	return reconciler.FunctionIdentity(record.FunctionArn), nil
}

// LoadRecord reads the deployment record under projectDir.
func LoadRecord(projectDir string) (Record, error) {
	path := RecordPath(projectDir)
	payload, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Record{}, fmt.Errorf("%w at %s (run the framework deploy first)", ErrNoRecord, path)
		}
		return Record{}, fmt.Errorf("read deployment record: %w", err)
	}
	var record Record
	if err := json.Unmarshal(payload, &record); err != nil {
		return Record{}, fmt.Errorf("parse deployment record %s: %w", path, err)
	}
	return record, nil
}

// RecordPath returns the deployment record location for projectDir.
func RecordPath(projectDir string) string {
	return filepath.Join(projectDir, RecordDirName, recordFileName)
}
