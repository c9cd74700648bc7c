// Copyright (c) 2026 BVK Chaitanya

package events

import (
	"context"
	"fmt"
	"os"
	"slices"
	"sync"

	"github.com/bvk/hashes/hashes"
)

// Handler processes the new jobs pushed over the websocket.
type Handler interface {
	Handle(ctx context.Context, msg *hashes.WebsocketMessage) error
}

type HandlerFunc func(ctx context.Context, msg *hashes.WebsocketMessage) error

func (f HandlerFunc) Handle(ctx context.Context, msg *hashes.WebsocketMessage) error {
	return f(ctx, msg)
}

// Registry maps handler names to handlers.
type Registry struct {
	mu sync.Mutex

	handlerMap map[string]Handler
}

func NewRegistry() *Registry {
	return &Registry{handlerMap: make(map[string]Handler)}
}

// Register adds a handler with the name. Names must be unique.
func (r *Registry) Register(name string, h Handler) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(name) == 0 || h == nil {
		return fmt.Errorf("handler name and value cannot be empty: %w", os.ErrInvalid)
	}
	if _, ok := r.handlerMap[name]; ok {
		return fmt.Errorf("handler %q is already registered: %w", name, os.ErrExist)
	}
	r.handlerMap[name] = h
	return nil
}

// Lookup returns the handler registered with the name.
func (r *Registry) Lookup(name string) (Handler, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.handlerMap[name]
	if !ok {
		return nil, fmt.Errorf("handler %q is not registered: %w", name, os.ErrNotExist)
	}
	return h, nil
}

// Names returns the registered handler names in sorted order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var names []string
	for name := range r.handlerMap {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Chain returns a handler that invokes all input handlers in order. Errors
// from one handler do not stop the others.
func Chain(hs ...Handler) Handler {
	return HandlerFunc(func(ctx context.Context, msg *hashes.WebsocketMessage) error {
		var errs []error
		for _, h := range hs {
			if err := h.Handle(ctx, msg); err != nil {
				errs = append(errs, err)
			}
		}
		if len(errs) != 0 {
			return fmt.Errorf("%d of %d handlers failed: %w", len(errs), len(hs), errs[0])
		}
		return nil
	})
}
