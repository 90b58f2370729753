// Package gqlctx implements the Resolver Context: the per-request
// dependency container every Effect runs against, and the typed slot
// store threaded down the resolver hierarchy (spec's Resolver Context
// component).
package gqlctx

import (
	"context"
	"fmt"
	"sync"
)

// Container is the per-request dependency container every resolver
// Effect runs against ("per-request dependency injection" in the design
// notes). It is seeded once per request from a DependencySpec and is
// otherwise read-mostly from a resolver's point of view — Bind is
// normally only called by the engine while preparing a request.
type Container struct {
	mu       sync.RWMutex
	services map[string]any
}

// DependencySpec supplies the services a request's Container should
// start with; built once at server startup and reused for every
// request (a DB pool, an upstream API client, a cache handle, ...).
type DependencySpec map[string]any

// NewContainer seeds a Container from spec. spec is copied, not
// retained, so later mutation of the caller's map can't race a
// concurrently-running request.
func NewContainer(spec DependencySpec) *Container {
	c := &Container{services: make(map[string]any, len(spec))}
	for k, v := range spec {
		c.services[k] = v
	}
	return c
}

// Bind adds or replaces a service binding.
func (c *Container) Bind(name string, service any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.services[name] = service
}

// Get returns the service bound under name, or an error if nothing was
// bound.
func (c *Container) Get(name string) (any, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.services[name]
	if !ok {
		return nil, fmt.Errorf("gqlctx: service %q not bound in container", name)
	}
	return v, nil
}

// MustGet is Get, panicking on a missing binding. Resolvers should
// prefer Get and surface a typed failure instead; MustGet is meant for
// engine-internal wiring where a missing binding is a programmer error.
func (c *Container) MustGet(name string) any {
	v, err := c.Get(name)
	if err != nil {
		panic(err)
	}
	return v
}

// Has reports whether name is bound.
func (c *Container) Has(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.services[name]
	return ok
}

type containerKey struct{}

// WithContainer attaches container to ctx.
func WithContainer(ctx context.Context, container *Container) context.Context {
	return context.WithValue(ctx, containerKey{}, container)
}

// ContainerFrom retrieves the Container attached by WithContainer, or
// nil if none was attached.
func ContainerFrom(ctx context.Context) *Container {
	c, _ := ctx.Value(containerKey{}).(*Container)
	return c
}
