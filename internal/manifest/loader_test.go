// Where: internal/manifest/loader_test.go
// What: Tests for descriptor loading and parsing.
// Why: Binding order, templating, and validation must be reliable.
package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeDescriptor(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultFileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write descriptor: %v", err)
	}
	return path
}

func TestLoadFullDescriptor(t *testing.T) {
	path := writeDescriptor(t, `
function:
  name: app
schedules:
  daily:
    schedule: rate(1 day)
  on-release:
    pattern:
      source: ["aws.codedeploy"]
topics:
  alerts: handlers.alerts
  metrics:
    handler: handlers.metrics
buckets:
  uploads:
    events: ["s3:ObjectCreated:*"]
    prefix: in/
    suffix: .csv
`)
	desc, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if desc.Function.Name != "app" {
		t.Fatalf("unexpected function: %+v", desc.Function)
	}
	if len(desc.Schedules) != 2 || desc.Schedules[0].Name != "daily" {
		t.Fatalf("unexpected schedules: %+v", desc.Schedules)
	}
	if desc.Schedules[0].Schedule != "rate(1 day)" {
		t.Fatalf("unexpected schedule expression: %+v", desc.Schedules[0])
	}
	if !strings.Contains(desc.Schedules[1].Pattern, `"aws.codedeploy"`) {
		t.Fatalf("pattern not normalized to JSON: %+v", desc.Schedules[1])
	}
	if len(desc.Topics) != 2 || desc.Topics[0].Handler != "handlers.alerts" ||
		desc.Topics[1].Handler != "handlers.metrics" {
		t.Fatalf("unexpected topics: %+v", desc.Topics)
	}
	if len(desc.Buckets) != 1 {
		t.Fatalf("unexpected buckets: %+v", desc.Buckets)
	}
	bucket := desc.Buckets[0]
	if bucket.Bucket != "uploads" || bucket.Prefix != "in/" || bucket.Suffix != ".csv" {
		t.Fatalf("unexpected bucket: %+v", bucket)
	}
	if desc.BindingCount() != 5 {
		t.Fatalf("unexpected binding count: %d", desc.BindingCount())
	}
}

func TestLoadPreservesDeclaredOrder(t *testing.T) {
	path := writeDescriptor(t, `
function:
  name: app
topics:
  zeta: z
  alpha: a
  mid: m
`)
	desc, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	names := []string{desc.Topics[0].Name, desc.Topics[1].Name, desc.Topics[2].Name}
	want := []string{"zeta", "alpha", "mid"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("declared order not preserved: %v", names)
		}
	}
}

func TestLoadRendersTemplates(t *testing.T) {
	t.Setenv("DEPLOY_STAGE", "prod")
	path := writeDescriptor(t, `
function:
  name: app-{{ env "DEPLOY_STAGE" }}
topics:
  '{{ env "DEPLOY_STAGE" }}-alerts': handlers.alerts
`)
	desc, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if desc.Function.Name != "app-prod" {
		t.Fatalf("template not rendered: %+v", desc.Function)
	}
	if desc.Topics[0].Name != "prod-alerts" {
		t.Fatalf("template not rendered in keys: %+v", desc.Topics)
	}
}

func TestLoadAllowsScheduleWithoutExpression(t *testing.T) {
	path := writeDescriptor(t, `
function:
  name: app
schedules:
  inert:
`)
	desc, err := Load(path)
	if err != nil {
		t.Fatalf("inert schedule must be legal: %v", err)
	}
	if len(desc.Schedules) != 1 || desc.Schedules[0].Name != "inert" {
		t.Fatalf("unexpected schedules: %+v", desc.Schedules)
	}
	if desc.Schedules[0].Schedule != "" || desc.Schedules[0].Pattern != "" {
		t.Fatalf("expected empty binding fields: %+v", desc.Schedules[0])
	}
}

func TestLoadRejectsMissingFunctionName(t *testing.T) {
	path := writeDescriptor(t, `
topics:
  alerts: handlers.alerts
`)
	if _, err := Load(path); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestLoadRejectsBucketWithoutEvents(t *testing.T) {
	path := writeDescriptor(t, `
function:
  name: app
buckets:
  uploads:
    prefix: in/
`)
	if _, err := Load(path); err == nil {
		t.Fatalf("expected validation error for missing events")
	}
}

func TestLoadRejectsUnknownTopLevelKey(t *testing.T) {
	path := writeDescriptor(t, `
function:
  name: app
queues:
  jobs: {}
`)
	if _, err := Load(path); err == nil {
		t.Fatalf("expected validation error for unknown key")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yml")); err == nil {
		t.Fatalf("expected error for missing descriptor")
	}
}
