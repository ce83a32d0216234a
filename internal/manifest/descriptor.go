// Where: internal/manifest/descriptor.go
// What: Declarative application descriptor types.
// Why: Define the desired event-source bindings consumed by the reconciler.
package manifest

// Descriptor is the declarative application descriptor: one compute target
// plus the event-source bindings that should invoke it.
//
// NOTE: Keep this package free of provider-specific dependencies.
// The loader maps the external YAML schema here; the reconciler only reads
// these types.
type Descriptor struct {
	Function  FunctionSpec
	Schedules []ScheduleBinding
	Topics    []TopicBinding
	Buckets   []StorageBinding
}

// FunctionSpec names the compute target the bindings attach to.
type FunctionSpec struct {
	Name string
}

// ScheduleBinding declares a scheduler rule. At least one of Schedule or
// Pattern is expected for the rule to ever fire, but neither is required:
// an empty rule is registered as-is and the provider decides what to do
// with it.
type ScheduleBinding struct {
	// Name is the unique rule name.
	Name string
	// Schedule is a cron/rate expression, e.g. "rate(1 day)".
	Schedule string
	// Pattern is a structured event-pattern filter, serialized as JSON.
	Pattern string
}

// TopicBinding declares a pub/sub topic subscription.
type TopicBinding struct {
	// Name is the unique topic name.
	Name string
	// Handler is an opaque handler descriptor, used only for display.
	Handler string
}

// StorageBinding declares an object-storage notification trigger.
type StorageBinding struct {
	// Bucket is the unique bucket name.
	Bucket string
	// Events lists the event types to route, in declared order.
	Events []string
	// Prefix and Suffix optionally filter object keys.
	Prefix string
	Suffix string
}

// BindingCount returns the total number of declared bindings across all
// categories.
func (d Descriptor) BindingCount() int {
	return len(d.Schedules) + len(d.Topics) + len(d.Buckets)
}
