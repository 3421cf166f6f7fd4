package logging

import (
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
)

type options struct {
	dir     string
	console io.Writer
	color   *bool
	now     func() time.Time
	fields  []interface{}
}

// Option configures Initialize.
type Option func(*options)

// WithDir sets the directory holding the log files. Defaults to DefaultDir.
func WithDir(dir string) Option {
	return func(o *options) {
		o.dir = dir
	}
}

// WithConsole replaces stdout as the console sink destination.
func WithConsole(w io.Writer) Option {
	return func(o *options) {
		o.console = w
	}
}

// WithColor forces colorized console level tags on or off. By default they
// are enabled only when the console is a terminal.
func WithColor(enabled bool) Option {
	return func(o *options) {
		o.color = &enabled
	}
}

// WithClock sets the clock used to name the daily file and to age files for
// retention.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithFields attaches key/value pairs to every entry.
func WithFields(kv ...interface{}) Option {
	return func(o *options) {
		o.fields = append(o.fields, kv...)
	}
}

func defaultOptions() options {
	return options{
		dir:     DefaultDir,
		console: os.Stdout,
		now:     time.Now,
	}
}

func (o options) colorize() bool {
	if o.color != nil {
		return *o.color
	}
	f, ok := o.console.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
