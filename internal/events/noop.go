package events

import "context"

// NoopPublisher stands in when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishPostPublished(context.Context, PostPublished) error {
	return nil
}

var _ Publisher = (*NoopPublisher)(nil)
