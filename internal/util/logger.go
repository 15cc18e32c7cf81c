package util

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the process-wide structured logger. It is a no-op until InitLogger runs,
// so packages can log from tests without setup.
var Logger = zap.NewNop()

// InitLogger builds a production logger at the given level and installs it as the
// zap global as well, so middleware using zap.L() shares the same sink.
func InitLogger(logLevel string) {
	config := zap.NewProductionConfig()
	level, err := zapcore.ParseLevel(logLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}
	config.Level.SetLevel(level)
	logger, err := config.Build()
	if err != nil {
		return
	}
	Logger = logger
	zap.ReplaceGlobals(logger)
}

// Error returns a zap.Field carrying err.
func Error(err error) zap.Field {
	return zap.Error(err)
}

// PostID returns the field used to tag log lines with a post identifier.
func PostID(id string) zap.Field {
	return zap.String("post_id", id)
}

// UserID returns the field used to tag log lines with a user identifier.
func UserID(id string) zap.Field {
	return zap.String("user_id", id)
}
