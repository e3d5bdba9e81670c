package observability

import (
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/fx"
)

var Module = fx.Module("observability",
	fx.Provide(
		NewTracerProvider,
		NewHTTPMetrics,
	),
	fx.Invoke(ensureTracerProvider),
)

func ensureTracerProvider(_ *sdktrace.TracerProvider) {}
