package logging

import (
	"path/filepath"
	"time"

	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	// DefaultDir holds the daily and error log files.
	DefaultDir = "logs"

	filePrefix    = "acdice_"
	fileSuffix    = ".log"
	errorFileName = "errors.log"

	fileMaxSizeMB      = 500
	errorFileMaxSizeMB = 100

	fileBufferSize    = 256 * 1024
	fileFlushInterval = time.Second
)

// Sink names reported by Handle.Sinks.
const (
	SinkConsole = "console"
	SinkFile    = "file"
	SinkErrors  = "errors"
)

// Sink describes one installed destination.
type Sink struct {
	Name  string
	Level zapcore.Level
	Path  string // empty for the console
}

// DailyFileName returns the rotating sink's file name for day t.
func DailyFileName(t time.Time) string {
	return filePrefix + t.Format("20060102") + fileSuffix
}

// openRotating opens a lumberjack file eagerly so that an unwritable path
// fails Initialize rather than the first write.
func openRotating(path string, maxSizeMB, maxAgeDays int) (*lumberjack.Logger, error) {
	lj := &lumberjack.Logger{
		Filename:  path,
		MaxSize:   maxSizeMB,
		MaxAge:    maxAgeDays,
		Compress:  true,
		LocalTime: true,
	}
	if _, err := lj.Write(nil); err != nil {
		return nil, err
	}
	return lj, nil
}

// sinkSet accumulates opened sinks and releases them in reverse order.
type sinkSet struct {
	sinks   []Sink
	cores   []zapcore.Core
	closers []func() error
}

func (s *sinkSet) add(sink Sink, core zapcore.Core, closers ...func() error) {
	s.sinks = append(s.sinks, sink)
	s.cores = append(s.cores, core)
	s.closers = append(s.closers, closers...)
}

func (s *sinkSet) close() error {
	var first error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	s.closers = nil
	return first
}

// consoleSink writes human-readable lines at the configured level.
func consoleSink(set *sinkSet, o options, level zapcore.Level) {
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig(o.colorize())),
		zapcore.Lock(zapcore.AddSync(o.console)),
		level,
	)
	set.add(Sink{Name: SinkConsole, Level: level}, core)
}

// fileSink is the full-fidelity record: always DEBUG, rotated at
// fileMaxSizeMB, backups gzip-compressed and removed after retentionDays.
// Writes land in a single in-memory buffer drained by one goroutine.
func fileSink(set *sinkSet, o options, retentionDays int) error {
	path := filepath.Join(o.dir, DailyFileName(o.now()))

	lj, err := openRotating(path, fileMaxSizeMB, retentionDays)
	if err != nil {
		return &InitError{Sink: SinkFile, Path: path, Err: err}
	}

	ws := &zapcore.BufferedWriteSyncer{
		WS:            zapcore.AddSync(lj),
		Size:          fileBufferSize,
		FlushInterval: fileFlushInterval,
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig(false)),
		ws,
		zapcore.DebugLevel,
	)
	set.add(Sink{Name: SinkFile, Level: zapcore.DebugLevel, Path: path}, core, lj.Close, ws.Stop)
	return nil
}

// errorSink keeps ERROR and above in a fixed file that retention never
// removes.
func errorSink(set *sinkSet, o options) error {
	path := filepath.Join(o.dir, errorFileName)

	lj, err := openRotating(path, errorFileMaxSizeMB, 0)
	if err != nil {
		return &InitError{Sink: SinkErrors, Path: path, Err: err}
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig(false)),
		zapcore.Lock(zapcore.AddSync(lj)),
		zapcore.ErrorLevel,
	)
	set.add(Sink{Name: SinkErrors, Level: zapcore.ErrorLevel, Path: path}, core, lj.Close)
	return nil
}
