package cache

import "context"

// Noop disables caching; every lookup misses.
type Noop struct{}

func (Noop) Get(context.Context, string) ([]byte, bool) { return nil, false }

func (Noop) Set(context.Context, string, []byte, ...string) {}

func (Noop) Invalidate(context.Context, ...string) error { return nil }

func (Noop) Version(context.Context, string) (uint64, error) { return 0, nil }
