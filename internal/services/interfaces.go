package services

import (
	"context"

	"founderpulse/internal/llm"
)

// Completer is the slice of the LLM client the services need.
type Completer interface {
	Complete(ctx context.Context, messages []llm.Message) (string, error)
	Model() string
}

// Sender is the slice of the mailer the services need.
type Sender interface {
	Send(ctx context.Context, to, subject, html string) (string, error)
}

// Broadcaster pushes server events to connected websocket clients.
type Broadcaster interface {
	Broadcast(eventType string, data any)
}
