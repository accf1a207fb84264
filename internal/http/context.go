package http

import (
	"context"
	"log/slog"

	"github.com/example/timetrack/internal/application"
	"github.com/example/timetrack/internal/logging"
)

type contextKey string

const (
	principalContextKey      contextKey = "principal"
	registrationIDContextKey contextKey = "registration_id"
	workerIDContextKey       contextKey = "worker_id"
)

// ContextWithPrincipal returns a derived context containing the authenticated principal.
func ContextWithPrincipal(ctx context.Context, principal application.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, principal)
}

// PrincipalFromContext extracts the authenticated principal from context if available.
func PrincipalFromContext(ctx context.Context) (application.Principal, bool) {
	principal, ok := ctx.Value(principalContextKey).(application.Principal)
	return principal, ok
}

// ContextWithRegistrationID injects the registration identifier resolved from the request path.
func ContextWithRegistrationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, registrationIDContextKey, id)
}

// RegistrationIDFromContext extracts a registration identifier previously associated with the context.
func RegistrationIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(registrationIDContextKey).(string)
	return id, ok
}

// ContextWithWorkerID injects the worker identifier resolved from the request path.
func ContextWithWorkerID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, workerIDContextKey, id)
}

// WorkerIDFromContext extracts a worker identifier previously associated with the context.
func WorkerIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(workerIDContextKey).(string)
	return id, ok
}

// ContextWithLogger attaches a request-scoped logger to the context.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return logging.ContextWithLogger(ctx, logger)
}

// LoggerFromContext extracts a request-scoped logger from the context.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx)
}
