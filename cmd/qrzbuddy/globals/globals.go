package globals

import (
	"context"

	"qrzbuddy/internal/components/telemetry"
	"qrzbuddy/internal/keychain"
	"qrzbuddy/internal/lookup"
)

type key struct{}

type Value struct {
	Tel          telemetry.API
	Store        *keychain.Store
	Orchestrator *lookup.Orchestrator
	Telemetry    telemetry.Telemetry
}

func Set(ctx context.Context, value *Value) context.Context {
	return context.WithValue(ctx, key{}, value)
}

func Get(ctx context.Context) *Value {
	return ctx.Value(key{}).(*Value)
}
