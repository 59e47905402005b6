package ulogger

import (
	"io"
	"os"
)

type Options struct {
	logLevel string
	writer   io.Writer
	pretty   bool
}

type Option func(*Options)

func DefaultOptions() *Options {
	return &Options{
		logLevel: "INFO",
		writer:   os.Stdout,
		pretty:   true,
	}
}

func WithLevel(level string) Option {
	return func(o *Options) {
		o.logLevel = level
	}
}

func WithWriter(w io.Writer) Option {
	return func(o *Options) {
		o.writer = w
	}
}

// WithPrettyLogs switches between the console writer and raw JSON lines.
func WithPrettyLogs(pretty bool) Option {
	return func(o *Options) {
		o.pretty = pretty
	}
}
