package logger

import (
	"context"
	"os"

	"github.com/KretovDmitry/storefront/internal/config"
	"github.com/go-chi/chi/v5/middleware"
	sqldblogger "github.com/simukti/sqldb-logger"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is a logger that supports log levels, context and structured logging.
// It also serves as the sink for database query logs.
type Logger interface {
	// With returns a logger based off the root logger and decorates it with
	// the given context and arguments.
	With(ctx context.Context, args ...interface{}) Logger

	// Debug uses fmt.Sprint to construct and log a message at DEBUG level.
	Debug(args ...interface{})
	// Info uses fmt.Sprint to construct and log a message at INFO level.
	Info(args ...interface{})
	// Error uses fmt.Sprint to construct and log a message at ERROR level.
	Error(args ...interface{})

	// Debugf uses fmt.Sprintf to construct and log a message at DEBUG level.
	Debugf(format string, args ...interface{})
	// Infof uses fmt.Sprintf to construct and log a message at INFO level.
	Infof(format string, args ...interface{})
	// Errorf uses fmt.Sprintf to construct and log a message at ERROR level.
	Errorf(format string, args ...interface{})

	// Sync flushes any buffered log entries.
	Sync() error

	sqldblogger.Logger
}

type logger struct {
	*zap.SugaredLogger
}

var _ Logger = (*logger)(nil)

// New creates a new logger using the application configuration.
// Logs go to stdout unless a file path is configured,
// in which case files are rotated by lumberjack.
func New(cfg *config.Config) Logger {
	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(cfg.Logger.Level)); err != nil {
		level.SetLevel(zapcore.InfoLevel)
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var sink zapcore.WriteSyncer = zapcore.AddSync(os.Stdout)
	if cfg.Logger.Path != "" {
		sink = zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.Logger.Path,
			MaxSize:    cfg.Logger.MaxSizeMB,
			MaxBackups: cfg.Logger.MaxBackups,
			MaxAge:     cfg.Logger.MaxAgeDays,
		})
	}

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), sink, level)

	return NewWithZap(zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)))
}

// NewWithZap creates a new logger using the preconfigured zap logger.
func NewWithZap(l *zap.Logger) Logger {
	return &logger{l.Sugar()}
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

// Log implements sqldblogger.Logger.
func (l *logger) Log(ctx context.Context, level sqldblogger.Level, msg string, data map[string]interface{}) {
	fields := make([]interface{}, 0, len(data)*2)
	for k, v := range data {
		fields = append(fields, k, v)
	}

	log := l.With(ctx).(*logger).SugaredLogger

	switch level {
	case sqldblogger.LevelError:
		log.Errorw(msg, fields...)
	case sqldblogger.LevelInfo:
		log.Infow(msg, fields...)
	default:
		log.Debugw(msg, fields...)
	}
}
