package logger

import (
	"context"
	"time"

	"github.com/TheZeroSlave/zapsentry"
	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// log discards everything until Initialize or Replace is called
	log          = zap.NewNop()
	sentryClient *sentry.Client
)

// Config holds logger configuration
type Config struct {
	Debug bool
	// Environment is reported to sentry and added as a field, e.g. "production"
	Environment     string
	SentryDSN       string
	SentryClient    *sentry.Client
	BreadcrumbLevel zapcore.Level
	Tags            map[string]string
}

// Initialize builds the global logger. Errors and above are also sent to sentry
// when a DSN or a client is configured.
func Initialize(cfg Config) error {
	base, err := buildZap(cfg)
	if err != nil {
		return err
	}

	client, err := newSentryClient(cfg)
	if err != nil {
		return err
	}
	if client == nil {
		log = base
		return nil
	}

	tags := make(map[string]string, len(cfg.Tags)+1)
	for k, v := range cfg.Tags {
		tags[k] = v
	}
	if cfg.Environment != "" {
		tags["environment"] = cfg.Environment
	}

	breadcrumbs := cfg.BreadcrumbLevel
	if breadcrumbs == zapcore.InvalidLevel {
		breadcrumbs = zapcore.InfoLevel
	}

	core, err := zapsentry.NewCore(zapsentry.Configuration{
		Level:             zapcore.ErrorLevel,
		EnableBreadcrumbs: true,
		BreadcrumbLevel:   breadcrumbs,
		Tags:              tags,
	}, zapsentry.NewSentryClientFromClient(client))
	if err != nil {
		return err
	}

	sentryClient = client
	log = zapsentry.AttachCoreToLogger(core, base)
	return nil
}

func buildZap(cfg Config) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.Debug {
		zc = zap.NewDevelopmentConfig()
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	fields := make([]zap.Field, 0, len(cfg.Tags)+1)
	for k, v := range cfg.Tags {
		fields = append(fields, zap.String(k, v))
	}
	if cfg.Environment != "" {
		fields = append(fields, zap.String("environment", cfg.Environment))
	}

	return zc.Build(zap.Fields(fields...))
}

func newSentryClient(cfg Config) (*sentry.Client, error) {
	if cfg.SentryClient != nil {
		return cfg.SentryClient, nil
	}
	if cfg.SentryDSN == "" {
		return nil, nil
	}
	return sentry.NewClient(sentry.ClientOptions{
		Dsn:         cfg.SentryDSN,
		Debug:       cfg.Debug,
		Environment: cfg.Environment,
	})
}

// Replace swaps the global logger and returns a function restoring the previous one
func Replace(l *zap.Logger) func() {
	prev := log
	log = l
	return func() { log = prev }
}

// Flush syncs zap and waits up to timeout for pending sentry events
func Flush(timeout time.Duration) {
	_ = log.Sync()
	if sentryClient != nil {
		sentryClient.Flush(timeout)
	}
}

// FromContext returns the global logger bound to the sentry hub of ctx, if any
func FromContext(ctx context.Context) *zap.Logger {
	if ctx == nil {
		return log
	}
	return log.With(zapsentry.Context(ctx))
}

func Default() *zap.Logger {
	return log
}

// Named returns a child logger for a component
func Named(component string) *zap.Logger {
	return log.Named(component)
}

func Debug(msg string, fields ...zap.Field) { log.Debug(msg, fields...) }
func Info(msg string, fields ...zap.Field)  { log.Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { log.Warn(msg, fields...) }
func Fatal(msg string, fields ...zap.Field) { log.Fatal(msg, fields...) }

// Error logs err with its message as the log message
func Error(err error, fields ...zap.Field) {
	log.Error(errorMessage(err), fields...)
}

func DebugCtx(ctx context.Context, msg string, fields ...zap.Field) {
	FromContext(ctx).Debug(msg, fields...)
}

func InfoCtx(ctx context.Context, msg string, fields ...zap.Field) {
	FromContext(ctx).Info(msg, fields...)
}

func WarnCtx(ctx context.Context, msg string, fields ...zap.Field) {
	FromContext(ctx).Warn(msg, fields...)
}

func ErrorCtx(ctx context.Context, err error, fields ...zap.Field) {
	FromContext(ctx).Error(errorMessage(err), fields...)
}

func FatalCtx(ctx context.Context, msg string, fields ...zap.Field) {
	FromContext(ctx).Fatal(msg, fields...)
}

func errorMessage(err error) string {
	if err == nil {
		return "error occurred"
	}
	return err.Error()
}
