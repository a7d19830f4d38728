// Package logging configures the process-wide logrus logger.
package logging

import (
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
)

// TimestampFormat is ISO 8601 / RFC 3339.
const TimestampFormat = "2006-01-02T15:04:05Z07:00"

// levelRouter writes INFO/WARN entries to stdout and ERROR+ to stderr.
// The logger's own output is discarded; the hook does all writing.
type levelRouter struct {
	stdout io.Writer
	stderr io.Writer
}

func (lr *levelRouter) Levels() []log.Level { return log.AllLevels }

func (lr *levelRouter) Fire(e *log.Entry) error {
	line, err := e.Logger.Formatter.Format(e)
	if err != nil {
		return err
	}
	w := lr.stdout
	if e.Level <= log.ErrorLevel {
		w = lr.stderr
	}
	_, err = w.Write(line)
	return err
}

// Setup configures l with a JSON formatter and stdout/stderr level
// routing. If logPath is non-empty, all levels are also appended to that
// file. Returns a cleanup function that closes the log file (if opened).
func Setup(l *log.Logger, level, logPath string) (func(), error) {
	return setup(l, level, logPath, os.Stdout, os.Stderr)
}

func setup(l *log.Logger, level, logPath string, stdout, stderr io.Writer) (func(), error) {
	lvl := log.InfoLevel
	if level != "" {
		parsed, err := log.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("parsing log level: %w", err)
		}
		lvl = parsed
	}

	cleanup := func() {}
	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		cleanup = func() { f.Close() }
		stdout = io.MultiWriter(stdout, f)
		stderr = io.MultiWriter(stderr, f)
	}

	l.SetFormatter(&log.JSONFormatter{TimestampFormat: TimestampFormat})
	l.SetLevel(lvl)
	l.SetOutput(io.Discard)
	l.ReplaceHooks(log.LevelHooks{})
	l.AddHook(&levelRouter{stdout: stdout, stderr: stderr})
	return cleanup, nil
}
