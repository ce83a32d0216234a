// Where: internal/reconciler/storage.go
// What: Object-storage notification registration.
// Why: Route bucket events to the function, filtered by key prefix/suffix.
package reconciler

import (
	"context"
	"fmt"

	"github.com/funcwire/funcwire/internal/manifest"
	"github.com/funcwire/funcwire/internal/ui"
)

// NotificationInput is the single notification entry installed on a bucket.
type NotificationInput struct {
	Bucket      string
	FunctionArn string
	Events      []string
	Prefix      string
	Suffix      string
}

// StorageAPI is the provider surface for bucket notifications.
//
// PutBucketNotification REPLACES the bucket's entire notification
// configuration with the given entry. Any configuration previously installed
// on the bucket, including entries owned by other functions, is dropped.
// Operators must treat each bucket as single-owner; the CLI warns about this
// on every registration.
type StorageAPI interface {
	PutBucketNotification(ctx context.Context, input NotificationInput) error
}

func (r *Runner) applyStorage(
	ctx context.Context,
	console *ui.Console,
	fn FunctionIdentity,
	bindings []manifest.StorageBinding,
) error {
	if len(bindings) == 0 {
		return nil
	}
	console.BlockStart("🪣", "Bucket notifications")
	api, err := r.storageAPI(ctx)
	if err != nil {
		return fmt.Errorf("build storage client: %w", err)
	}

	for _, binding := range bindings {
		if r.DryRun {
			console.ItemPlain(fmt.Sprintf("%sput notification configuration on %s (%d event types)",
				r.planPrefix(), binding.Bucket, len(binding.Events)))
			continue
		}

		err := api.PutBucketNotification(ctx, NotificationInput{
			Bucket:      binding.Bucket,
			FunctionArn: string(fn),
			Events:      binding.Events,
			Prefix:      binding.Prefix,
			Suffix:      binding.Suffix,
		})
		if err != nil {
			return fmt.Errorf("put notification configuration on %s: %w", binding.Bucket, err)
		}
		console.ItemPlain(fmt.Sprintf("registered notifications on bucket %s", binding.Bucket))
		console.Warn(fmt.Sprintf("bucket %s: prior notification configuration, if any, was replaced", binding.Bucket))
	}
	return nil
}
