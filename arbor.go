package arbor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/aretw0/arbor/internal/runtime"
	"github.com/aretw0/arbor/pkg/adapters/sqlite"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
)

// Engine is the high-level entry point for the Arbor library.
// It wraps the internal runtime and provides a simplified API for consumers.
type Engine struct {
	source   ports.Dataset
	closer   io.Closer
	explorer *runtime.Explorer
	inspect  *runtime.Inspector
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	Name     string
}

var _ ports.Explorer = (*Engine)(nil)

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithSource injects a custom dataset, bypassing the default SQLite database.
func WithSource(source ports.Dataset) Option {
	return func(e *Engine) {
		e.source = source
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New initializes a new Arbor Engine.
// By default, it opens the SQLite dialogue database at dbPath read-only.
// If WithSource is provided, dbPath can be empty and is only used as a label.
func New(dbPath string, opts ...Option) (*Engine, error) {
	eng := &Engine{}

	for _, opt := range opts {
		opt(eng)
	}

	if eng.source == nil {
		if dbPath == "" {
			return nil, fmt.Errorf("dbPath is required when no custom source is provided")
		}
		db, err := sqlite.Open(dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open dialogue database: %w", err)
		}
		eng.source = db
		eng.closer = db
	}
	if dbPath != "" {
		eng.Name = filepath.Base(dbPath)
	}

	if eng.logger == nil {
		eng.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if eng.Name != "" {
		eng.logger = eng.logger.With("dataset", eng.Name)
	}

	runtimeOpts := []runtime.Option{
		runtime.WithLogger(eng.logger),
		runtime.WithLifecycleHooks(eng.hooks),
	}
	eng.explorer = runtime.NewExplorer(eng.source, runtimeOpts...)
	eng.inspect = runtime.NewInspector(eng.source, runtime.NewOutcomeResolver(eng.source, runtimeOpts...))

	return eng, nil
}

// Close releases the database opened by New. Injected sources are left alone.
func (e *Engine) Close() error {
	if e.closer == nil {
		return nil
	}
	return e.closer.Close()
}

// Source returns the dataset the engine reads from.
func (e *Engine) Source() ports.Dataset {
	return e.source
}

// Explore returns the branching tree rooted at key, bounded by maxDepth.
func (e *Engine) Explore(ctx context.Context, key domain.NodeKey, maxDepth int) (*domain.TreeNode, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	tree, err := e.explorer.Explore(ctx, key, maxDepth)
	if err != nil {
		return nil, e.fail("explore", key, err)
	}
	if tree == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrNodeNotFound, key)
	}
	return tree, nil
}

// Connections returns the flat view of the entry at key.
func (e *Engine) Connections(ctx context.Context, key domain.NodeKey) (*domain.Connections, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	view, err := e.inspect.Connections(ctx, key)
	if err != nil {
		return nil, e.fail("connections", key, err)
	}
	if view == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrNodeNotFound, key)
	}
	return view, nil
}

// Outcomes resolves the outcomes of the check attached to key.
// An entry without a check yields an empty list.
func (e *Engine) Outcomes(ctx context.Context, key domain.NodeKey) ([]domain.Outcome, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	node, err := e.source.GetNode(ctx, key)
	if err != nil {
		return nil, e.fail("outcomes", key, err)
	}
	if node == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrNodeNotFound, key)
	}
	outcomes, err := e.inspect.Outcomes(ctx, key)
	if err != nil {
		return nil, e.fail("outcomes", key, err)
	}
	return outcomes, nil
}

// ListActors returns the distinct speaker names.
func (e *Engine) ListActors(ctx context.Context) ([]string, error) {
	actors, err := e.source.ListActors(ctx)
	if err != nil {
		return nil, e.fail("list actors", domain.NodeKey{}, err)
	}
	if actors == nil {
		actors = []string{}
	}
	return actors, nil
}

// SearchDialogues returns the lines containing keyword, optionally for one actor.
func (e *Engine) SearchDialogues(ctx context.Context, actor, keyword string) ([]domain.DialogueMatch, error) {
	matches, err := e.source.SearchDialogues(ctx, actor, keyword)
	if err != nil {
		return nil, e.fail("search", domain.NodeKey{}, err)
	}
	if matches == nil {
		matches = []domain.DialogueMatch{}
	}
	return matches, nil
}

// fail logs a failed request and makes sure source failures carry ErrSourceUnavailable.
func (e *Engine) fail(op string, key domain.NodeKey, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	e.logger.Error("Dataset request failed", "op", op, "key", key.String(), "err", err)
	if errors.Is(err, domain.ErrSourceUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrSourceUnavailable, err)
}
