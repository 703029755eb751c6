package runtime

import (
	"io"
	"log/slog"

	"github.com/aretw0/arbor/pkg/domain"
)

type settings struct {
	logger *slog.Logger
	hooks  domain.LifecycleHooks
}

// Option configures the runtime components.
type Option func(*settings)

// WithLogger sets the structured logger used for debug traces.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(s *settings) {
		s.hooks = hooks
	}
}

func newSettings(opts []Option) settings {
	s := settings{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}
