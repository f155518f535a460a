package node

import "context"

type frameKey struct{}

// WithFrame attaches the current animation frame to ctx.
func WithFrame(ctx context.Context, frame int) context.Context {
	return context.WithValue(ctx, frameKey{}, frame)
}

// Frame returns the animation frame carried by ctx.
func Frame(ctx context.Context) (int, bool) {
	frame, ok := ctx.Value(frameKey{}).(int)
	return frame, ok
}
