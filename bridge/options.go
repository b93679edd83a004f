package bridge

import (
	"go.uber.org/zap"

	"github.com/DarkerMinecraft/Gravix/handle"
	"github.com/DarkerMinecraft/Gravix/registry"
)

// Option configures a Bridge.
type Option func(*Bridge)

func WithLogger(l *zap.Logger) Option {
	return func(b *Bridge) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithPolicy selects how overloaded methods are resolved.
func WithPolicy(p registry.Policy) Option {
	return func(b *Bridge) {
		b.resolver.Policy = p
	}
}

// WithMaxStringLen bounds the length of string arguments read from host
// memory.
func WithMaxStringLen(n uint32) Option {
	return func(b *Bridge) {
		if n > 0 {
			b.marshaler.MaxStringLen = n
		}
	}
}

// WithObserver subscribes o to handle lifecycle events.
func WithObserver(o handle.Observer) Option {
	return func(b *Bridge) {
		b.table.Subscribe(o)
	}
}
