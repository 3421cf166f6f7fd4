package logging

import (
	"fmt"

	"go.uber.org/zap/zapcore"

	"github.com/platformbuilds/acdice-core/internal/config"
)

const timeLayout = "2006-01-02 15:04:05"

// ANSI colors for level tags.
const (
	colorReset   = "\x1b[0m"
	colorCyan    = "\x1b[36m"
	colorBold    = "\x1b[1m"
	colorYellow  = "\x1b[33m"
	colorRed     = "\x1b[31m"
	colorRedBold = "\x1b[1;31m"
)

// zapLevel maps a settings level onto the zap level that gates it.
func zapLevel(l config.LogLevel) (zapcore.Level, error) {
	switch l {
	case config.LevelDebug:
		return zapcore.DebugLevel, nil
	case config.LevelInfo:
		return zapcore.InfoLevel, nil
	case config.LevelWarning:
		return zapcore.WarnLevel, nil
	case config.LevelError:
		return zapcore.ErrorLevel, nil
	case config.LevelCritical:
		return zapcore.DPanicLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", l)
	}
}

// levelName is the inverse of zapLevel; panic and fatal report as CRITICAL.
func levelName(l zapcore.Level) string {
	switch {
	case l <= zapcore.DebugLevel:
		return string(config.LevelDebug)
	case l == zapcore.InfoLevel:
		return string(config.LevelInfo)
	case l == zapcore.WarnLevel:
		return string(config.LevelWarning)
	case l == zapcore.ErrorLevel:
		return string(config.LevelError)
	default:
		return string(config.LevelCritical)
	}
}

func levelColor(l zapcore.Level) string {
	switch {
	case l <= zapcore.DebugLevel:
		return colorCyan
	case l == zapcore.InfoLevel:
		return colorBold
	case l == zapcore.WarnLevel:
		return colorYellow
	case l == zapcore.ErrorLevel:
		return colorRed
	default:
		return colorRedBold
	}
}

func encodeLevel(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(fmt.Sprintf("%-8s", levelName(l)))
}

func encodeColorLevel(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(levelColor(l) + fmt.Sprintf("%-8s", levelName(l)) + colorReset)
}

// encoderConfig renders lines as
// "2006-01-02 15:04:05 | INFO     | pkg/file.go:12 | pkg.Func | message | {fields}".
func encoderConfig(color bool) zapcore.EncoderConfig {
	level := encodeLevel
	if color {
		level = encodeColorLevel
	}
	return zapcore.EncoderConfig{
		TimeKey:          "timestamp",
		LevelKey:         "level",
		NameKey:          "logger",
		CallerKey:        "caller",
		FunctionKey:      "function",
		MessageKey:       "message",
		StacktraceKey:    "stacktrace",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeLevel:      level,
		EncodeTime:       zapcore.TimeEncoderOfLayout(timeLayout),
		EncodeDuration:   zapcore.StringDurationEncoder,
		EncodeCaller:     zapcore.ShortCallerEncoder,
		ConsoleSeparator: " | ",
	}
}
