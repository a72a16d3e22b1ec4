package service

import "context"

type controllerKey struct{}

// WithController marks ctx as acting on behalf of the signed-in
// controller id. Journal entries written under ctx record it.
func WithController(ctx context.Context, id int) context.Context {
	return context.WithValue(ctx, controllerKey{}, id)
}

// ControllerFromContext returns the controller set by WithController.
func ControllerFromContext(ctx context.Context) (int, bool) {
	id, ok := ctx.Value(controllerKey{}).(int)
	return id, ok
}
