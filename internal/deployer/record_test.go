// Where: internal/deployer/record_test.go
// What: Tests for deployment record reading.
// Why: The recorded identity is the only bridge to the external framework.
package deployer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeRecord(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Join(dir, RecordDirName), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	path := RecordPath(dir)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write record: %v", err)
	}
}

func TestBuildAndDeployReturnsRecordedIdentity(t *testing.T) {
	dir := t.TempDir()
	writeRecord(t, dir, `{
  "function_name": "app",
  "function_arn": "arn:aws:lambda:us-east-1:123456789012:function:app",
  "policy": {"Statement": []}
}`)

	fn, err := RecordDeployer{}.BuildAndDeploy(context.Background(), dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(fn) != "arn:aws:lambda:us-east-1:123456789012:function:app" {
		t.Fatalf("unexpected identity: %s", fn)
	}
}

func TestBuildAndDeployFailsWithoutRecord(t *testing.T) {
	_, err := RecordDeployer{}.BuildAndDeploy(context.Background(), t.TempDir())
	if !errors.Is(err, ErrNoRecord) {
		t.Fatalf("expected ErrNoRecord, got %v", err)
	}
}

func TestBuildAndDeployFailsWithoutIdentity(t *testing.T) {
	dir := t.TempDir()
	writeRecord(t, dir, `{"function_name": "app"}`)

	_, err := RecordDeployer{}.BuildAndDeploy(context.Background(), dir)
	if err == nil || !strings.Contains(err.Error(), "no function identity") {
		t.Fatalf("expected identity error, got %v", err)
	}
}

func TestBuildAndDeployLoadsDefaultPolicyWhenRecordHasNone(t *testing.T) {
	dir := t.TempDir()
	writeRecord(t, dir, `{"function_arn": "arn:aws:lambda:us-east-1:123456789012:function:app"}`)

	var warned []string
	loaded := 0
	target := RecordDeployer{
		LoadPolicy: func(projectDir string) (PolicyDocument, error) {
			loaded++
			if projectDir != dir {
				t.Fatalf("unexpected project dir: %s", projectDir)
			}
			return PolicyDocument{"Statement": []any{map[string]any{}}}, nil
		},
		Warn: func(msg string) { warned = append(warned, msg) },
	}

	if _, err := target.BuildAndDeploy(context.Background(), dir); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loaded != 1 {
		t.Fatalf("expected one policy load, got %d", loaded)
	}
	if len(warned) != 1 || !strings.Contains(warned[0], "default policy applies") {
		t.Fatalf("expected a policy notice, got %v", warned)
	}
}

func TestBuildAndDeploySkipsPolicyWhenRecorded(t *testing.T) {
	dir := t.TempDir()
	writeRecord(t, dir, `{
  "function_arn": "arn:aws:lambda:us-east-1:123456789012:function:app",
  "policy": {"Statement": []}
}`)

	target := RecordDeployer{
		LoadPolicy: func(string) (PolicyDocument, error) {
			t.Fatalf("policy must not be loaded when the record has one")
			return nil, nil
		},
	}
	if _, err := target.BuildAndDeploy(context.Background(), dir); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPlaceholderIdentity(t *testing.T) {
	fn := PlaceholderIdentity("app")
	if string(fn) != "arn:aws:lambda:dry-run:000000000000:function:app" {
		t.Fatalf("unexpected placeholder: %s", fn)
	}
	if got := PlaceholderIdentity(""); !strings.HasSuffix(string(got), ":function:function") {
		t.Fatalf("unexpected fallback placeholder: %s", got)
	}
}
