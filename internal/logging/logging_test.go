package logging

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/platformbuilds/acdice-core/internal/config"
	"github.com/platformbuilds/acdice-core/pkg/logger"
)

// safeBuffer is a bytes.Buffer that tolerates concurrent writers.
type safeBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *safeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *safeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func settingsWithLevel(level config.LogLevel) config.Settings {
	s := config.Defaults()
	s.LogLevel = level
	return s
}

func initialize(t *testing.T, s config.Settings, opts ...Option) *Handle {
	t.Helper()
	h, err := Initialize(s, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = Shutdown() })
	return h
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestInitialize_InstallsThreeSinks(t *testing.T) {
	dir := t.TempDir()
	h := initialize(t, settingsWithLevel(config.LevelWarning), WithDir(dir), WithConsole(&safeBuffer{}))

	sinks := h.Sinks()
	require.Len(t, sinks, 3)

	assert.Equal(t, SinkConsole, sinks[0].Name)
	assert.Equal(t, zapcore.WarnLevel, sinks[0].Level)
	assert.Empty(t, sinks[0].Path)

	assert.Equal(t, SinkFile, sinks[1].Name)
	assert.Equal(t, zapcore.DebugLevel, sinks[1].Level)
	assert.Equal(t, filepath.Join(dir, DailyFileName(time.Now())), sinks[1].Path)

	assert.Equal(t, SinkErrors, sinks[2].Name)
	assert.Equal(t, zapcore.ErrorLevel, sinks[2].Level)
	assert.Equal(t, filepath.Join(dir, "errors.log"), sinks[2].Path)

	// files are opened eagerly
	assert.FileExists(t, sinks[1].Path)
	assert.FileExists(t, sinks[2].Path)
	assert.Same(t, h, Current())
}

func TestInitialize_ReinitializeDoesNotDuplicate(t *testing.T) {
	dir := t.TempDir()
	console := &safeBuffer{}
	s := settingsWithLevel(config.LevelDebug)

	first := initialize(t, s, WithDir(dir), WithConsole(console))
	first.Info("before reinit")

	second := initialize(t, s, WithDir(dir), WithConsole(console))
	require.Len(t, second.Sinks(), 3)
	assert.Same(t, second, Current())

	const line = "written once after reinit"
	second.Error(line)
	require.NoError(t, Shutdown())

	assert.Equal(t, 1, strings.Count(console.String(), line))
	assert.Equal(t, 1, strings.Count(readFile(t, second.Sinks()[1].Path), line))
	assert.Equal(t, 1, strings.Count(readFile(t, second.Sinks()[2].Path), line))

	// the earlier entry was flushed when the first handle was replaced
	assert.Equal(t, 1, strings.Count(readFile(t, first.Sinks()[1].Path), "before reinit"))
}

func TestInitialize_StaleHandleForwardsToCurrent(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	s := settingsWithLevel(config.LevelInfo)
	opts := []Option{WithDir(dir), WithConsole(&safeBuffer{}), WithClock(func() time.Time { return now })}

	first := initialize(t, s, opts...)
	second := initialize(t, s, opts...)

	const line = "logged through a replaced handle"
	first.Error(line)
	require.NoError(t, second.Sync())

	assert.Equal(t, 1, strings.Count(readFile(t, second.Sinks()[1].Path), line))
	assert.Equal(t, 1, strings.Count(readFile(t, second.Sinks()[2].Path), line))

	require.NoError(t, Shutdown())
	first.Error("after shutdown")
	second.Error("after shutdown")
	assert.NotContains(t, readFile(t, second.Sinks()[1].Path), "after shutdown")
	assert.NotContains(t, readFile(t, second.Sinks()[2].Path), "after shutdown")
}

func TestInitialize_ConcurrentReinitializeKeepsEveryEntry(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	s := settingsWithLevel(config.LevelInfo)
	opts := []Option{WithDir(dir), WithConsole(&safeBuffer{}), WithClock(func() time.Time { return now })}
	initialize(t, s, opts...)

	const writers, perWriter = 8, 3000
	var logged atomic.Int64
	stop := make(chan struct{})
	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				select {
				case <-stop:
					return
				default:
				}
				logger.Global().Debug("handoff entry", "writer", w, "seq", i)
				logged.Add(1)
			}
		}(w)
	}

	for i := 0; i < 50; i++ {
		_, err := Initialize(s, opts...)
		require.NoError(t, err)
	}
	close(stop)
	wg.Wait()
	require.NoError(t, Shutdown())

	daily := readFile(t, filepath.Join(dir, DailyFileName(now)))
	assert.EqualValues(t, logged.Load(), strings.Count(daily, "handoff entry"))
}

func TestInitialize_LevelRouting(t *testing.T) {
	dir := t.TempDir()
	console := &safeBuffer{}
	h := initialize(t, settingsWithLevel(config.LevelWarning), WithDir(dir), WithConsole(console))

	h.Debug("debug entry")
	h.Info("info entry")
	h.Warn("warning entry")
	h.Error("error entry")
	h.Critical("critical entry")
	require.NoError(t, Shutdown())

	out := console.String()
	assert.NotContains(t, out, "debug entry")
	assert.NotContains(t, out, "info entry")
	assert.Contains(t, out, "warning entry")
	assert.Contains(t, out, "error entry")

	file := readFile(t, h.Sinks()[1].Path)
	for _, msg := range []string{"debug entry", "info entry", "warning entry", "error entry", "critical entry"} {
		assert.Contains(t, file, msg)
	}

	errs := readFile(t, h.Sinks()[2].Path)
	assert.NotContains(t, errs, "warning entry")
	assert.Contains(t, errs, "error entry")
	assert.Contains(t, errs, "critical entry")
	assert.Contains(t, errs, "| CRITICAL |")
}

func TestInitialize_LineFormat(t *testing.T) {
	console := &safeBuffer{}
	h := initialize(t, settingsWithLevel(config.LevelInfo), WithDir(t.TempDir()), WithConsole(console), WithColor(false))

	h.Info("formatted", "component", "test")
	h.Warn("warned")
	h.Error("failed")
	require.NoError(t, h.Sync())

	lines := strings.Split(strings.TrimSpace(console.String()), "\n")
	require.Len(t, lines, 3)

	assert.Regexp(t, `^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2} \| INFO     \| logging/logging_test\.go:\d+ \| .*TestInitialize_LineFormat \| formatted \| \{"component": "test"\}$`, lines[0])
	assert.Contains(t, lines[1], "| WARNING  |")
	assert.Contains(t, lines[2], "| ERROR    |")
}

func TestInitialize_ColorizedConsole(t *testing.T) {
	console := &safeBuffer{}
	dir := t.TempDir()
	h := initialize(t, settingsWithLevel(config.LevelInfo), WithDir(dir), WithConsole(console), WithColor(true))

	h.Error("colored")
	require.NoError(t, Shutdown())

	assert.Contains(t, console.String(), colorRed+"ERROR   "+colorReset)
	// file sinks never carry escape codes
	assert.NotContains(t, readFile(t, h.Sinks()[1].Path), "\x1b[")
}

func TestInitialize_ColorDefaultsOffForNonTerminal(t *testing.T) {
	o := defaultOptions()
	o.console = &safeBuffer{}
	assert.False(t, o.colorize())
}

func TestInitialize_WithFields(t *testing.T) {
	console := &safeBuffer{}
	h := initialize(t, settingsWithLevel(config.LevelInfo), WithDir(t.TempDir()), WithConsole(console), WithFields("run_id", "abc-123"))

	h.Info("tagged")
	require.NoError(t, h.Sync())
	assert.Contains(t, console.String(), `"run_id": "abc-123"`)
}

func TestInitialize_ReplacesZapGlobals(t *testing.T) {
	console := &safeBuffer{}
	initialize(t, settingsWithLevel(config.LevelInfo), WithDir(t.TempDir()), WithConsole(console))

	zap.L().Info("via zap global")
	logger.Global().Info("via logger global")
	require.NoError(t, Current().Sync())

	out := console.String()
	assert.Contains(t, out, "via zap global")
	assert.Contains(t, out, "via logger global")

	require.NoError(t, Shutdown())
	assert.Nil(t, Current())
	assert.NotPanics(t, func() { logger.Global().Info("after shutdown") })
	assert.NotContains(t, console.String(), "after shutdown")
}

func TestInitialize_DirectoryIsIdempotent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "logs")
	initialize(t, settingsWithLevel(config.LevelInfo), WithDir(dir), WithConsole(&safeBuffer{}))
	initialize(t, settingsWithLevel(config.LevelInfo), WithDir(dir), WithConsole(&safeBuffer{}))
	assert.DirExists(t, dir)
}

func TestInitialize_FailureLeavesPreviousSinks(t *testing.T) {
	console := &safeBuffer{}
	good := initialize(t, settingsWithLevel(config.LevelInfo), WithDir(t.TempDir()), WithConsole(console))

	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))

	before := testutil.ToFloat64(Initializations.WithLabelValues("error"))
	h, err := Initialize(settingsWithLevel(config.LevelInfo), WithDir(blocker), WithConsole(console))
	require.Error(t, err)
	assert.Nil(t, h)

	var initErr *InitError
	require.True(t, errors.As(err, &initErr))
	assert.True(t, errors.Is(err, ErrInitFailed))
	assert.Equal(t, blocker, initErr.Path)
	assert.Equal(t, before+1, testutil.ToFloat64(Initializations.WithLabelValues("error")))

	assert.Same(t, good, Current())
	good.Info("still logging")
	require.NoError(t, good.Sync())
	assert.Contains(t, console.String(), "still logging")
}

func TestInitialize_RejectsUnknownLevel(t *testing.T) {
	_, err := Initialize(settingsWithLevel("LOUD"), WithDir(t.TempDir()), WithConsole(&safeBuffer{}))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInitFailed))
}

func TestInitialize_RetentionSweep(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	old := now.Add(-40 * 24 * time.Hour)
	recent := now.Add(-24 * time.Hour)

	touch := func(name string, mtime time.Time) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte("x\n"), 0o600))
		require.NoError(t, os.Chtimes(path, mtime, mtime))
		return path
	}

	expiredDaily := touch(DailyFileName(old), old)
	expiredBackup := touch("acdice_"+old.Format("20060102")+"-"+old.Format("2006-01-02T15-04-05.000")+".log.gz", old)
	keptDaily := touch(DailyFileName(recent), recent)
	keptErrors := touch("errors-"+old.Format("2006-01-02T15-04-05.000")+".log.gz", old)

	s := settingsWithLevel(config.LevelInfo)
	s.LogRetentionDays = 30
	initialize(t, s, WithDir(dir), WithConsole(&safeBuffer{}), WithClock(func() time.Time { return now }))

	assert.NoFileExists(t, expiredDaily)
	assert.NoFileExists(t, expiredBackup)
	assert.FileExists(t, keptDaily)
	assert.FileExists(t, keptErrors)
}

func TestSweepExpired_SkipsActiveFile(t *testing.T) {
	dir := t.TempDir()
	active := filepath.Join(dir, DailyFileName(time.Now()))
	require.NoError(t, os.WriteFile(active, nil, 0o600))
	old := time.Now().Add(-365 * 24 * time.Hour)
	require.NoError(t, os.Chtimes(active, old, old))

	removed, err := sweepExpired(dir, active, 24*time.Hour, time.Now())
	require.NoError(t, err)
	assert.Empty(t, removed)
	assert.FileExists(t, active)
}

func TestHandle_ConcurrentWritesDoNotInterleave(t *testing.T) {
	dir := t.TempDir()
	h := initialize(t, settingsWithLevel(config.LevelError), WithDir(dir), WithConsole(&safeBuffer{}))

	const workers, perWorker = 16, 200
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				h.Debug("concurrent entry", "worker", w, "seq", i)
			}
		}(w)
	}
	wg.Wait()
	require.NoError(t, Shutdown())

	f, err := os.Open(h.Sinks()[1].Path)
	require.NoError(t, err)
	defer f.Close()

	count := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.Contains(line, "concurrent entry") {
			continue
		}
		count++
		assert.Regexp(t, `^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2} \| DEBUG    \| .* \| concurrent entry \| \{"worker": \d+, "seq": \d+\}$`, line)
	}
	require.NoError(t, scanner.Err())
	assert.Equal(t, workers*perWorker, count)
}

func TestHandle_CloseIsIdempotent(t *testing.T) {
	h, err := Initialize(settingsWithLevel(config.LevelInfo), WithDir(t.TempDir()), WithConsole(&safeBuffer{}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = Shutdown() })

	assert.NoError(t, h.Close())
	assert.NoError(t, h.Close())
}

func TestEntryCounts(t *testing.T) {
	h := initialize(t, settingsWithLevel(config.LevelInfo), WithDir(t.TempDir()), WithConsole(&safeBuffer{}))

	before, err := EntryCounts(prometheus.DefaultGatherer)
	require.NoError(t, err)

	h.Warn("counted")
	h.Warn("counted")
	h.Debug("counted even though the console drops it")

	after, err := EntryCounts(prometheus.DefaultGatherer)
	require.NoError(t, err)
	assert.Equal(t, before["WARNING"]+2, after["WARNING"])
	assert.Equal(t, before["DEBUG"]+1, after["DEBUG"])
}

func TestLevelMapping(t *testing.T) {
	for _, l := range config.LogLevels {
		zl, err := zapLevel(l)
		require.NoError(t, err, l)
		assert.Equal(t, string(l), levelName(zl), l)
	}
	assert.Equal(t, "CRITICAL", levelName(zapcore.FatalLevel))
	assert.Equal(t, "acdice_20261019.log", DailyFileName(time.Date(2026, 10, 19, 23, 59, 0, 0, time.Local)))
}

func ExampleDailyFileName() {
	fmt.Println(DailyFileName(time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)))
	// Output: acdice_20260102.log
}
