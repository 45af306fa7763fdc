package server

import (
	"context"
	"log/slog"

	"github.com/alfredjeanlab/refdata/internal/events"
	"github.com/alfredjeanlab/refdata/internal/schema"
	"github.com/alfredjeanlab/refdata/internal/store"
)

// RegistryServer coordinates record mutations: every write runs inside a
// single store transaction that validates, persists, and bumps the global
// version counter together.
type RegistryServer struct {
	store     store.Store
	schemas   *schema.Registry
	publisher events.Publisher
}

// NewRegistryServer returns a RegistryServer backed by the given store,
// rule-set registry, and event publisher.
func NewRegistryServer(s store.Store, r *schema.Registry, p events.Publisher) *RegistryServer {
	return &RegistryServer{
		store:     s,
		schemas:   r,
		publisher: p,
	}
}

// publish sends a mutation event to NATS after a committed transaction.
// Best-effort; failures are logged but never surfaced to the caller.
func (s *RegistryServer) publish(ctx context.Context, topic string, event any) {
	if err := s.publisher.Publish(ctx, topic, event); err != nil {
		slog.Warn("failed to publish event", "topic", topic, "error", err)
	}
}

// inputError indicates invalid user input.
// Transport layers map this to 400.
type inputError string

func (e inputError) Error() string { return string(e) }
