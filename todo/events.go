package todo

import (
	"context"
	"log/slog"
)

// Event is something that happened to a todo entity.
type Event interface {
	EventName() string
}

// ItemCompleted is published when an item is marked as done.
type ItemCompleted struct {
	ItemID uint64 `json:"itemId"`
	ListID uint64 `json:"listId"`
	Title  string `json:"title"`
}

// EventName implements Event.
func (ItemCompleted) EventName() string { return "TodoItemCompleted" }

// Publisher delivers events to interested parties.
type Publisher interface {
	Publish(ctx context.Context, event Event)
}

// LogPublisher writes every event to a logger.
type LogPublisher struct {
	Logger *slog.Logger
}

// Publish implements Publisher.
func (p LogPublisher) Publish(ctx context.Context, event Event) {
	p.Logger.InfoContext(ctx, "Todo Domain Event", "event", event.EventName(), "data", event)
}
