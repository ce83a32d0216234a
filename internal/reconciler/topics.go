// Where: internal/reconciler/topics.go
// What: Pub/sub topic subscription registration.
// Why: Ensure each declared topic exists and feeds the function.
package reconciler

import (
	"context"
	"fmt"

	"github.com/funcwire/funcwire/internal/manifest"
	"github.com/funcwire/funcwire/internal/ui"
)

// TopicsAPI is the provider surface for pub/sub topics. CreateTopic returns
// the existing topic when the name is already taken, and Subscribe is
// idempotent for an identical (topic, protocol, endpoint) triple, so re-runs
// do not accumulate duplicates.
type TopicsAPI interface {
	CreateTopic(ctx context.Context, name string) (string, error)
	Subscribe(ctx context.Context, topicArn string, endpoint string) (string, error)
}

func (r *Runner) applyTopics(
	ctx context.Context,
	console *ui.Console,
	fn FunctionIdentity,
	bindings []manifest.TopicBinding,
) error {
	if len(bindings) == 0 {
		return nil
	}
	console.BlockStart("📣", "Topics")
	api, err := r.topicsAPI(ctx)
	if err != nil {
		return fmt.Errorf("build topics client: %w", err)
	}

	for _, binding := range bindings {
		label := binding.Name
		if binding.Handler != "" {
			label = fmt.Sprintf("%s -> %s", binding.Name, binding.Handler)
		}
		if r.DryRun {
			console.ItemPlain(fmt.Sprintf("%screate topic %s and subscribe %s",
				r.planPrefix(), label, fn))
			continue
		}

		topicArn, err := api.CreateTopic(ctx, binding.Name)
		if err != nil {
			return fmt.Errorf("create topic %s: %w", binding.Name, err)
		}
		subscriptionArn, err := api.Subscribe(ctx, topicArn, string(fn))
		if err != nil {
			return fmt.Errorf("subscribe %s to %s: %w", fn, binding.Name, err)
		}
		console.ItemPlain(fmt.Sprintf("subscribed to topic %s", label))
		if r.Debug {
			console.Item(binding.Name, subscriptionArn)
		}
	}
	return nil
}
