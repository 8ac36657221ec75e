package events

import "context"

type NoopPublisher struct{}

func (NoopPublisher) PublishEntitlementGranted(context.Context, EntitlementGranted) error {
	return nil
}

var _ Publisher = (*NoopPublisher)(nil)
