package middleware

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vocab-trainer/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var appLogger = zap.NewNop().Sugar()

// InitLogger builds the application logger. Logs go to stdout and to a
// rotated app-YYYY-MM-DD.log file in cfg.Dir.
func InitLogger(cfg config.LogConfig) (*zap.SugaredLogger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	sinks := []zapcore.WriteSyncer{zapcore.Lock(os.Stdout)}
	if cfg.Dir != "" {
		absLogDir, err := filepath.Abs(cfg.Dir)
		if err != nil {
			absLogDir = cfg.Dir
		}
		if err := os.MkdirAll(absLogDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory %s: %w", absLogDir, err)
		}
		sinks = append(sinks, zapcore.AddSync(&lumberjack.Logger{
			Filename:   filepath.Join(absLogDir, fmt.Sprintf("app-%s.log", time.Now().Format("2006-01-02"))),
			MaxSize:    10, // MB
			MaxBackups: 30,
			MaxAge:     30, // days
			Compress:   true,
			LocalTime:  true,
		}))
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.NewMultiWriteSyncer(sinks...), level)

	logger := zap.New(core, zap.AddCaller()).Sugar()
	SetLogger(logger)
	logger.Infow("logger initialized", "dir", cfg.Dir, "level", cfg.Level)
	return logger, nil
}

// SetLogger replaces the package logger
func SetLogger(l *zap.SugaredLogger) {
	if l == nil {
		l = zap.NewNop().Sugar()
	}
	appLogger = l
}

// LogInfo logs info level messages
func LogInfo(format string, v ...interface{}) {
	appLogger.Infof(format, v...)
}

// LogError logs error level messages
func LogError(format string, v ...interface{}) {
	appLogger.Errorf(format, v...)
}

// LogDebug logs debug level messages
func LogDebug(format string, v ...interface{}) {
	appLogger.Debugf(format, v...)
}

// RequestLoggerMiddleware logs every request with its status and latency
func RequestLoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		fullURL := c.Request.URL.Path
		if c.Request.URL.RawQuery != "" {
			fullURL = fullURL + "?" + c.Request.URL.RawQuery
		}

		c.Next()

		latency := time.Since(startTime)
		statusCode := c.Writer.Status()

		// Log format: METHOD URL | status | latency | request id
		if statusCode >= 400 {
			LogError("%s %s | status=%d | latency=%v | request_id=%s",
				c.Request.Method, fullURL, statusCode, latency, GetRequestID(c))
		} else {
			LogInfo("%s %s | status=%d | latency=%v | request_id=%s",
				c.Request.Method, fullURL, statusCode, latency, GetRequestID(c))
		}
	}
}
