package logger

import (
	"context"
	"fmt"
	"os"

	"github.com/KretovDmitry/order-management-service/internal/config"
	"github.com/go-chi/chi/v5/middleware"
	sqldblogger "github.com/simukti/sqldb-logger"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is a logger that supports log levels, context and structured logging.
type Logger interface {
	// With returns a logger based off the root logger and decorates it with
	// the given context and arguments.
	With(ctx context.Context, args ...interface{}) Logger

	// Debug uses fmt.Sprint to construct and log a message at DEBUG level.
	Debug(args ...interface{})
	// Info uses fmt.Sprint to construct and log a message at INFO level.
	Info(args ...interface{})
	// Warn uses fmt.Sprint to construct and log a message at WARN level.
	Warn(args ...interface{})
	// Error uses fmt.Sprint to construct and log a message at ERROR level.
	Error(args ...interface{})

	// Debugf uses fmt.Sprintf to construct and log a message at DEBUG level.
	Debugf(format string, args ...interface{})
	// Infof uses fmt.Sprintf to construct and log a message at INFO level.
	Infof(format string, args ...interface{})
	// Warnf uses fmt.Sprintf to construct and log a message at WARN level.
	Warnf(format string, args ...interface{})
	// Errorf uses fmt.Sprintf to construct and log a message at ERROR level.
	Errorf(format string, args ...interface{})

	// Log satisfies sqldblogger.Logger, so database queries are logged too.
	Log(ctx context.Context, level sqldblogger.Level, msg string, data map[string]interface{})
	// Output satisfies the mgo driver logger.
	Output(calldepth int, s string) error

	// Sync flushes any buffered log entries.
	Sync() error
}

type logger struct {
	*zap.SugaredLogger
}

var _ Logger = (*logger)(nil)

// New creates a new logger using the application configuration.
// Log entries go to a rotated file when a path is configured, to stdout otherwise.
func New(cfg *config.Config) Logger {
	level := zapcore.InfoLevel
	if cfg.Logger.Level != "" {
		if l, err := zapcore.ParseLevel(cfg.Logger.Level); err == nil {
			level = l
		}
	}

	var sink zapcore.WriteSyncer = zapcore.AddSync(os.Stdout)
	if cfg.Logger.Path != "" {
		sink = zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.Logger.Path,
			MaxSize:    cfg.Logger.MaxSizeMB,
			MaxBackups: cfg.Logger.MaxBackups,
			MaxAge:     cfg.Logger.MaxAgeDays,
			Compress:   true,
		})
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), sink, level)

	return NewWithZap(zap.New(core, zap.AddCaller()))
}

// NewWithZap creates a new logger using the preconfigured zap logger.
func NewWithZap(l *zap.Logger) Logger {
	return &logger{l.Sugar()}
}

// NewForTest returns a new logger and the corresponding observed logs
// which can be used in unit tests to verify log entries.
func NewForTest() (Logger, *observer.ObservedLogs) {
	core, recorded := observer.New(zapcore.DebugLevel)
	return NewWithZap(zap.New(core)), recorded
}

// With returns a logger based off the root logger and decorates it with
// the given context and arguments.
//
// If the context contains a request ID, it will be added
// to every log message generated by the new logger.
func (l *logger) With(ctx context.Context, args ...interface{}) Logger {
	if ctx != nil {
		if id := middleware.GetReqID(ctx); id != "" {
			args = append(args, zap.String("request_id", id))
		}
	}
	if len(args) > 0 {
		return &logger{l.SugaredLogger.With(args...)}
	}
	return l
}

func (l *logger) Log(_ context.Context, level sqldblogger.Level, msg string, data map[string]interface{}) {
	fields := make([]interface{}, 0, len(data)*2)
	for k, v := range data {
		fields = append(fields, k, v)
	}

	switch level {
	case sqldblogger.LevelError:
		l.Errorw(msg, fields...)
	case sqldblogger.LevelInfo:
		l.Infow(msg, fields...)
	default:
		l.Debugw(msg, fields...)
	}
}

func (l *logger) Output(_ int, s string) error {
	l.Debugw(s, "component", "mgo")
	return nil
}

func (l *logger) Sync() error {
	if err := l.SugaredLogger.Sync(); err != nil {
		return fmt.Errorf("sync logger: %w", err)
	}
	return nil
}
