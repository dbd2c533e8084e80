package otel

import "context"

type activationKey struct{}

// WithActivation tags ctx with the route activation id, so events emitted
// deeper in the call tree can be correlated with the navigation that
// started them.
func WithActivation(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, activationKey{}, id)
}

// ActivationID returns the id set by WithActivation, or "".
func ActivationID(ctx context.Context) string {
	id, _ := ctx.Value(activationKey{}).(string)
	return id
}
