package ports

import "context"

// HealthChecker is used to probe dependencies.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Pusher delivers a push notification to a set of device tokens.
// Implementations are best-effort; callers must not fail on push errors.
type Pusher interface {
	Push(ctx context.Context, tokens []string, title, body string) error
}
