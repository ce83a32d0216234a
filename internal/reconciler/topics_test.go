// Where: internal/reconciler/topics_test.go
// What: Tests for topic subscription registration.
// Why: Each declared topic must exist and feed the function endpoint.
package reconciler

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/funcwire/funcwire/internal/manifest"
)

func topicOnly(bindings ...manifest.TopicBinding) manifest.Descriptor {
	return manifest.Descriptor{
		Function: manifest.FunctionSpec{Name: "app"},
		Topics:   bindings,
	}
}

func TestTopicRegistrationCreatesAndSubscribes(t *testing.T) {
	factory := newFakeFactory()
	runner := &Runner{Out: &bytes.Buffer{}, Clients: factory}
	desc := topicOnly(manifest.TopicBinding{Name: "alerts", Handler: "handlers.alerts"})

	if err := runner.Apply(context.Background(), testIdentity, desc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(factory.topics.created) != 1 || factory.topics.created[0] != "alerts" {
		t.Fatalf("unexpected topics: %v", factory.topics.created)
	}
	topicArn := "arn:aws:sns:us-east-1:123456789012:alerts"
	if endpoint := factory.topics.subscribed[topicArn]; endpoint != string(testIdentity) {
		t.Fatalf("expected subscription endpoint %s, got %s", testIdentity, endpoint)
	}
}

func TestTopicRegistrationPreservesDeclaredOrder(t *testing.T) {
	factory := newFakeFactory()
	runner := &Runner{Out: &bytes.Buffer{}, Clients: factory}
	desc := topicOnly(
		manifest.TopicBinding{Name: "zeta"},
		manifest.TopicBinding{Name: "alpha"},
	)

	if err := runner.Apply(context.Background(), testIdentity, desc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if factory.topics.created[0] != "zeta" || factory.topics.created[1] != "alpha" {
		t.Fatalf("declared order not preserved: %v", factory.topics.created)
	}
}

func TestTopicSubscribeFailureIsFatal(t *testing.T) {
	factory := newFakeFactory()
	factory.topics.subscribeErr = errors.New("authorization error")
	runner := &Runner{Out: &bytes.Buffer{}, Clients: factory}

	err := runner.Apply(context.Background(), testIdentity, topicOnly(manifest.TopicBinding{Name: "alerts"}))
	if err == nil {
		t.Fatalf("expected fatal error")
	}
}
