package events

import "context"

type Publisher interface {
	PublishEntitlementGranted(ctx context.Context, e EntitlementGranted) error
}
