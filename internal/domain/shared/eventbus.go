package shared

import "context"

// EventHandler consumes domain events. EventTypes names the subscriptions;
// an empty slice subscribes the handler to every event.
type EventHandler interface {
	Handle(ctx context.Context, event DomainEvent) error
	EventTypes() []string
}

// EventPublisher is the side services see: publish after commit, fire and
// forget.
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventSubscriber manages handler registrations
type EventSubscriber interface {
	Subscribe(handler EventHandler, eventTypes ...string)
	Unsubscribe(handler EventHandler)
}

// EventBus combines both sides
type EventBus interface {
	EventPublisher
	EventSubscriber
}
