// Where: internal/reconciler/schedules.go
// What: Scheduler rule registration.
// Why: Create or update rules and attach the function as their target.
package reconciler

import (
	"context"
	"fmt"

	"github.com/funcwire/funcwire/internal/manifest"
	"github.com/funcwire/funcwire/internal/ui"
)

// RuleInput describes a create-or-update scheduler rule call. Calling again
// with the same name overwrites the existing rule definition.
type RuleInput struct {
	Name               string
	ScheduleExpression string
	EventPattern       string
}

// TargetInput attaches a single invocation target to a rule. The transform
// reshapes the raw trigger event before it reaches the function.
type TargetInput struct {
	Rule          string
	TargetID      string
	TargetArn     string
	InputPathsMap map[string]string
	InputTemplate string
}

// EventsAPI is the provider surface for scheduler rules.
type EventsAPI interface {
	PutRule(ctx context.Context, input RuleInput) (string, error)
	PutTargets(ctx context.Context, input TargetInput) error
}

// scheduleTarget builds the payload transform for a rule: the original event
// is mapped to the "event" key and the literal task name is injected, so the
// function receives {"task_name": <name>, "event": <original event>}.
func scheduleTarget(fn FunctionIdentity, binding manifest.ScheduleBinding) TargetInput {
	return TargetInput{
		Rule:          binding.Name,
		TargetID:      binding.Name,
		TargetArn:     string(fn),
		InputPathsMap: map[string]string{"event": "$"},
		InputTemplate: fmt.Sprintf(`{"task_name": "%s", "event": <event>}`, binding.Name),
	}
}

func (r *Runner) applySchedules(
	ctx context.Context,
	console *ui.Console,
	fn FunctionIdentity,
	bindings []manifest.ScheduleBinding,
) error {
	if len(bindings) == 0 {
		return nil
	}
	console.BlockStart("⏰", "Schedules")
	api, err := r.eventsAPI(ctx)
	if err != nil {
		return fmt.Errorf("build events client: %w", err)
	}

	for _, binding := range bindings {
		if binding.Schedule == "" && binding.Pattern == "" {
			// Legal but inert: the rule is still registered with whatever
			// fields are present and will simply never fire.
			console.Warn(fmt.Sprintf("schedule %s has no expression or pattern", binding.Name))
		}
		if r.DryRun {
			console.ItemPlain(fmt.Sprintf("%sput rule %s and attach target %s",
				r.planPrefix(), binding.Name, fn))
			continue
		}

		ruleArn, err := api.PutRule(ctx, RuleInput{
			Name:               binding.Name,
			ScheduleExpression: binding.Schedule,
			EventPattern:       binding.Pattern,
		})
		if err != nil {
			return fmt.Errorf("put rule %s: %w", binding.Name, err)
		}
		// No rollback if attaching the target fails: the rule is left in
		// place and the error surfaces as fatal.
		if err := api.PutTargets(ctx, scheduleTarget(fn, binding)); err != nil {
			return fmt.Errorf("put targets for rule %s: %w", binding.Name, err)
		}
		console.ItemPlain(fmt.Sprintf("registered schedule %s", binding.Name))
		if r.Debug {
			console.Item(binding.Name, ruleArn)
		}
	}
	return nil
}
