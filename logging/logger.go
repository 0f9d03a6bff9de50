// Package logging provides structured logging for the client with
// console and rotating-file output and automatic redaction of
// credential-looking values.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap.Logger and provides structured logging with automatic
// sensitive data redaction.
//
// Example:
//
//	logger, err := NewLogger(true, "client.log")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer logger.Sync()
//
//	logger.Info("view mounted", zap.String("endpoint", endpoint))
type Logger struct {
	zap   *zap.Logger
	sugar *zap.SugaredLogger

	// isDevelopment selects colored console output and debug level
	isDevelopment bool

	// logFilePath is the path to the rotating log file
	logFilePath string
}

// NewLogger creates a Logger configured for the given environment.
//
// When isDevelopment is true the console gets colored human-readable output
// at debug level; otherwise both outputs are JSON at info level. The file
// output rotates automatically (100MB max, 5 backups, 30 days, compressed).
func NewLogger(isDevelopment bool, logFilePath string) (*Logger, error) {
	var level zapcore.Level
	if isDevelopment {
		level = zapcore.DebugLevel
	} else {
		level = zapcore.InfoLevel
	}

	core, err := NewMultiCore(level, logFilePath, isDevelopment)
	if err != nil {
		return nil, fmt.Errorf("failed to create log core: %w", err)
	}

	zapLogger := zap.New(core,
		zap.AddCaller(),
		zap.AddCallerSkip(1), // Skip this wrapper layer
	)

	return &Logger{
		zap:           zapLogger,
		sugar:         zapLogger.Sugar(),
		isDevelopment: isDevelopment,
		logFilePath:   logFilePath,
	}, nil
}

// NewLoggerWithWriters creates a Logger over explicit writers.
// Useful for tests that want to capture output.
func NewLoggerWithWriters(level zapcore.Level, consoleWriter, fileWriter zapcore.WriteSyncer, isDevelopment bool) *Logger {
	core := NewMultiCoreWithWriters(level, consoleWriter, fileWriter, isDevelopment)

	zapLogger := zap.New(core,
		zap.AddCaller(),
		zap.AddCallerSkip(1),
	)

	return &Logger{
		zap:           zapLogger,
		sugar:         zapLogger.Sugar(),
		isDevelopment: isDevelopment,
	}
}

// Nop returns a Logger that discards everything. Useful as a default in
// constructors that accept an optional logger.
func Nop() *Logger {
	zapLogger := zap.NewNop()
	return &Logger{
		zap:   zapLogger,
		sugar: zapLogger.Sugar(),
	}
}

// Sync flushes any buffered log entries.
// Applications should call Sync before exiting.
func (l *Logger) Sync() error {
	if l == nil || l.zap == nil {
		return nil
	}
	return l.zap.Sync()
}

// Debug logs a message at DebugLevel with optional structured fields.
func (l *Logger) Debug(msg string, fields ...zap.Field) {
	l.zap.Debug(msg, l.redactFields(fields)...)
}

// Info logs a message at InfoLevel with optional structured fields.
func (l *Logger) Info(msg string, fields ...zap.Field) {
	l.zap.Info(msg, l.redactFields(fields)...)
}

// Warn logs a message at WarnLevel with optional structured fields.
func (l *Logger) Warn(msg string, fields ...zap.Field) {
	l.zap.Warn(msg, l.redactFields(fields)...)
}

// Error logs a message at ErrorLevel with optional structured fields.
func (l *Logger) Error(msg string, fields ...zap.Field) {
	l.zap.Error(msg, l.redactFields(fields)...)
}

// Fatal logs a message at FatalLevel then calls os.Exit(1).
func (l *Logger) Fatal(msg string, fields ...zap.Field) {
	l.zap.Fatal(msg, l.redactFields(fields)...)
}

// Infow logs a message at InfoLevel with loosely-typed key-value pairs.
//
// Example:
//
//	logger.Infow("page requested", "page", 3, "page_size", 10)
func (l *Logger) Infow(msg string, keysAndValues ...interface{}) {
	l.sugar.Infow(msg, l.redactKeysAndValues(keysAndValues)...)
}

// Warnw logs a message at WarnLevel with loosely-typed key-value pairs.
func (l *Logger) Warnw(msg string, keysAndValues ...interface{}) {
	l.sugar.Warnw(msg, l.redactKeysAndValues(keysAndValues)...)
}

// Errorw logs a message at ErrorLevel with loosely-typed key-value pairs.
func (l *Logger) Errorw(msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, l.redactKeysAndValues(keysAndValues)...)
}

// Debugf logs a formatted message at DebugLevel.
func (l *Logger) Debugf(template string, args ...interface{}) {
	l.sugar.Debugf(template, args...)
}

// Infof logs a formatted message at InfoLevel.
func (l *Logger) Infof(template string, args ...interface{}) {
	l.sugar.Infof(template, args...)
}

// redactFields returns a copy of fields with sensitive string values redacted.
func (l *Logger) redactFields(fields []zap.Field) []zap.Field {
	result := make([]zap.Field, len(fields))
	for i, f := range fields {
		if f.Type == zapcore.StringType {
			result[i] = zap.String(f.Key, RedactField(f.Key, f.String))
		} else {
			result[i] = f
		}
	}
	return result
}

// redactKeysAndValues redacts string values in sugared key-value pairs.
func (l *Logger) redactKeysAndValues(kvs []interface{}) []interface{} {
	result := make([]interface{}, len(kvs))
	copy(result, kvs)

	for i := 0; i+1 < len(result); i += 2 {
		key, keyOK := result[i].(string)
		val, valOK := result[i+1].(string)
		if keyOK && valOK {
			result[i+1] = RedactField(key, val)
		}
	}
	return result
}
