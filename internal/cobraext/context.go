package cobraext

import (
	"context"
	"log/slog"

	"github.com/avivsinai/rustlator/internal/config"
	"github.com/avivsinai/rustlator/internal/output"
)

type contextKey string

const appContextKey contextKey = "rustlator-app"

// App holds per-invocation state bound to Cobra commands.
type App struct {
	Store   *config.Store
	Config  *config.Document
	Printer *output.Printer
	Logger  *slog.Logger
}

// WithApp attaches application state to a context.Context.
func WithApp(ctx context.Context, app *App) context.Context {
	return context.WithValue(ctx, appContextKey, app)
}

// From extracts the App from context.
func From(ctx context.Context) (*App, bool) {
	val := ctx.Value(appContextKey)
	if val == nil {
		return nil, false
	}
	app, ok := val.(*App)
	return app, ok
}
