// Package context carries request-scoped correlation values used by logs and traces.
package context

import (
	"context"
	"strings"
)

type requestIDKey struct{}
type actorKey struct{}
type clientKey struct{}

type actorValue struct {
	Type string
	ID   string
}

type clientValue struct {
	IPAddress string
	UserAgent string
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, strings.TrimSpace(requestID))
}

func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(requestIDKey{}).(string)
	return value
}

func WithActor(ctx context.Context, actorType, actorID string) context.Context {
	return context.WithValue(ctx, actorKey{}, actorValue{
		Type: strings.TrimSpace(actorType),
		ID:   strings.TrimSpace(actorID),
	})
}

func ActorFromContext(ctx context.Context) (string, string) {
	if ctx == nil {
		return "", ""
	}
	value, ok := ctx.Value(actorKey{}).(actorValue)
	if !ok {
		return "", ""
	}
	return value.Type, value.ID
}

func WithClient(ctx context.Context, ipAddress, userAgent string) context.Context {
	return context.WithValue(ctx, clientKey{}, clientValue{
		IPAddress: strings.TrimSpace(ipAddress),
		UserAgent: strings.TrimSpace(userAgent),
	})
}

func ClientFromContext(ctx context.Context) (string, string) {
	if ctx == nil {
		return "", ""
	}
	value, ok := ctx.Value(clientKey{}).(clientValue)
	if !ok {
		return "", ""
	}
	return value.IPAddress, value.UserAgent
}
