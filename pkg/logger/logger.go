// Package logger provides a structured, levelled logger built on log/slog.
//
// The key extension over plain slog is WithCtx: middleware stores a logger
// pre-tagged with the request ID and visitor in the request context, so
// every line from a handler or service is correlated:
//
//	log := logger.WithCtx(ctx)
//	log.Info("order paid", "order_id", order.ID, "amount", order.Amount)
//	// → time=... level=INFO msg="order paid" request_id=a1b2 visitor=9f0c order_id=ORD17... amount=2498
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/shashiranjanraj/bloomthread/config"
)

var L *slog.Logger

func init() {
	L = slog.New(consoleHandler(os.Stdout, config.IsProduction()))
	slog.SetDefault(L)
}

// consoleHandler is JSON in production (for log aggregators) and text
// everywhere else.
func consoleHandler(w io.Writer, production bool) slog.Handler {
	if production {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	return slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
}

// Setup installs the process logger. When LOG_MONGO_URI is set, records
// are also shipped to MongoDB; the returned func flushes and disconnects
// that sink and must be called on shutdown. A Mongo connection failure is
// logged and the console logger is kept.
func Setup() (closeFn func()) {
	console := consoleHandler(os.Stdout, config.IsProduction())
	closeFn = func() {}

	handler := console
	if uri := config.LogMongoURI(); uri != "" {
		mongo, err := NewMongoHandler(uri, config.LogMongoDatabase(), config.LogMongoCollection())
		if err != nil {
			slog.New(console).Warn("logger: mongo sink disabled", "error", err)
		} else {
			handler = NewMultiHandler(console, mongo)
			closeFn = mongo.Close
		}
	}

	L = slog.New(handler).With("app", config.AppName())
	slog.SetDefault(L)
	return closeFn
}

// ctxKey is the unexported key used to store a per-request *slog.Logger.
type ctxKey struct{}

// WithCtx returns the logger stored in ctx by the request middleware, or
// the base logger when there is none.
func WithCtx(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return L
	}
	if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && log != nil {
		return log
	}
	return L
}

// InjectLogger stores log in ctx. Called by middleware, not usually needed
// in application code.
func InjectLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

// Debug logs at DEBUG level.
func Debug(msg string, args ...any) { L.Debug(msg, args...) }

// Info logs at INFO level.
func Info(msg string, args ...any) { L.Info(msg, args...) }

// Warn logs at WARN level.
func Warn(msg string, args ...any) { L.Warn(msg, args...) }

// Error logs at ERROR level.
func Error(msg string, args ...any) { L.Error(msg, args...) }
