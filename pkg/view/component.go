// Package view renders the dashboard as server-side HTML components.
package view

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
)

// Component renders part of the page. A panic or a returned error during Render is a
// render fault and propagates to the nearest enclosing fault boundary.
type Component interface {
	Render(ctx context.Context, w io.Writer) error
}

// ComponentFunc adapts a function to Component
type ComponentFunc func(ctx context.Context, w io.Writer) error

func (f ComponentFunc) Render(ctx context.Context, w io.Writer) error {
	return f(ctx, w)
}

// RenderError is a render fault annotated with the component path where it happened
type RenderError struct {
	// Path is the component chain, outermost first
	Path []string
	// Cause is the recovered panic value or the returned error
	Cause any
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render fault in %v: %v", e.Path, e.Cause)
}

func (e *RenderError) Unwrap() error {
	if err, ok := e.Cause.(error); ok {
		return err
	}
	return nil
}

type pathKey struct{}

// WithPath appends name to the component path carried by ctx
func WithPath(ctx context.Context, name string) context.Context {
	parent := Path(ctx)
	path := make([]string, len(parent), len(parent)+1)
	copy(path, parent)
	return context.WithValue(ctx, pathKey{}, append(path, name))
}

// Path returns a copy of the component path carried by ctx
func Path(ctx context.Context) []string {
	path, _ := ctx.Value(pathKey{}).([]string)
	return slices.Clone(path)
}

type named struct {
	name  string
	child Component
}

// Named wraps c so that it appears as name in the component path. A fault inside c is
// returned as *RenderError unless a deeper Named already annotated it.
func Named(name string, c Component) Component {
	return &named{name: name, child: c}
}

func (n *named) Render(ctx context.Context, w io.Writer) (err error) {
	ctx = WithPath(ctx, n.name)

	defer func() {
		if r := recover(); r != nil {
			if re, ok := r.(*RenderError); ok {
				err = re
				return
			}
			err = &RenderError{Path: Path(ctx), Cause: r}
		}
	}()

	if err := n.child.Render(ctx, w); err != nil {
		var re *RenderError
		if errors.As(err, &re) {
			return err
		}
		return &RenderError{Path: Path(ctx), Cause: err}
	}
	return nil
}

// Sequence renders components in order and stops at the first fault
func Sequence(components ...Component) Component {
	return ComponentFunc(func(ctx context.Context, w io.Writer) error {
		for _, c := range components {
			if err := c.Render(ctx, w); err != nil {
				return err
			}
		}
		return nil
	})
}

// Text writes s verbatim
func Text(s string) Component {
	return ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, s)
		return err
	})
}
