// Package build wires up the per-subsystem loggers shared by every package
// in this daemon, following the lnd convention of one btclog.Logger per
// subsystem (ltndLog, srvrLog, peerLog, ...) registered against a single
// backend.
package build

import (
	"io"
	"os"

	"github.com/btcsuite/btclog"
)

// subsystemLoggers lists every subsystem tag handed out by NewSubLogger,
// keyed by the short tag used in log lines.
var subsystemLoggers = make(map[string]btclog.Logger)

// logWriter is the destination the shared backend writes through;
// SetLogWriter swaps it so loggers already handed out follow the change.
type logWriter struct {
	w io.Writer
}

func (l *logWriter) Write(p []byte) (int, error) {
	return l.w.Write(p)
}

var out = &logWriter{w: os.Stderr}

// backend is the shared log backend all subsystem loggers write through. It
// writes to stderr until SetLogWriter redirects it.
var backend = btclog.NewBackend(out)

// SetLogWriter redirects every subsystem logger created so far, and every
// one created afterward, to write through w.
func SetLogWriter(w io.Writer) {
	out.w = w
}

// NewSubLogger creates (or returns the already-created) logger for the given
// subsystem tag, e.g. "WORK", "EXCH", "HTTP", "SPVR", "STOR".
func NewSubLogger(tag string) btclog.Logger {
	if l, ok := subsystemLoggers[tag]; ok {
		return l
	}
	l := backend.Logger(tag)
	l.SetLevel(btclog.LevelInfo)
	subsystemLoggers[tag] = l
	return l
}

// SetLevel adjusts the verbosity of every subsystem logger created so far.
func SetLevel(level btclog.Level) {
	for _, l := range subsystemLoggers {
		l.SetLevel(level)
	}
}
