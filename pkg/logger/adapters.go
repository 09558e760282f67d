package logger

import (
	"fmt"
	"strings"
	"time"

	gormlogger "gorm.io/gorm/logger"
)

// printfWriter направляет Printf-логи сторонних библиотек (gorm, cron) в zerolog
type printfWriter struct {
	component string
}

func (w printfWriter) Printf(format string, args ...interface{}) {
	log.Info().
		Str("component", w.component).
		Msg(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

// NewPrintfWriter возвращает writer с методом Printf, например для cron.VerbosePrintfLogger
func NewPrintfWriter(component string) interface {
	Printf(format string, args ...interface{})
} {
	return printfWriter{component: component}
}

// NewGormLogger создает логгер gorm поверх zerolog.
// level: silent, error, warn, info
func NewGormLogger(level string) gormlogger.Interface {
	return gormlogger.New(printfWriter{component: "gorm"}, gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  gormLogLevel(level),
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

func gormLogLevel(level string) gormlogger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info", "debug":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}
