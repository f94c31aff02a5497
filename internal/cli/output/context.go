package output

import "context"

// rendererKey is used to store renderer in context.
type rendererKey struct{}

// WithRenderer stores r in ctx.
func WithRenderer(ctx context.Context, r *Renderer) context.Context {
	return context.WithValue(ctx, rendererKey{}, r)
}

// FromContext retrieves the renderer from the command context.
func FromContext(ctx context.Context) (*Renderer, bool) {
	r, ok := ctx.Value(rendererKey{}).(*Renderer)
	return r, ok
}
