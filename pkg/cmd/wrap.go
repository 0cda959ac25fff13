package cmd

import "context"

// Unwrappable exposes the command a middleware wrapped.
type Unwrappable interface {
	Command
	Unwrap() Command
}

type wrapped struct {
	inner Command
	run   func(ctx context.Context, inv *Invocation) error
}

func (w *wrapped) Name() string        { return w.inner.Name() }
func (w *wrapped) Description() string { return w.inner.Description() }
func (w *wrapped) Unwrap() Command     { return w.inner }

func (w *wrapped) Run(ctx context.Context, inv *Invocation) error {
	if w.run == nil {
		return w.inner.Run(ctx, inv)
	}
	return w.run(ctx, inv)
}

// Wrap returns c with its Run replaced by run. Name, description and the
// optional interfaces of c stay reachable through Root.
func Wrap(c Command, run func(ctx context.Context, inv *Invocation) error) Command {
	return &wrapped{inner: c, run: run}
}

// Root peels every middleware layer off c.
func Root(c Command) Command {
	for {
		u, ok := c.(Unwrappable)
		if !ok {
			return c
		}
		c = u.Unwrap()
	}
}
