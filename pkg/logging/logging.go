// Package logging configures console and log-file output for vmware_modsign.
package logging

import (
	"io"
	"os"

	log "github.com/sirupsen/logrus"
)

var (
	logFile *os.File
	output  io.Writer = os.Stdout
)

// fileHook copies every log entry into the log file without color codes.
type fileHook struct {
	w         io.Writer
	formatter log.Formatter
}

func (h *fileHook) Levels() []log.Level { return log.AllLevels }

func (h *fileHook) Fire(entry *log.Entry) error {
	b, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}
	_, err = h.w.Write(b)
	return err
}

// Setup directs logrus to stderr with colors and opens logPath in append mode
// so that every log entry and every line of subprocess output is kept there.
func Setup(logPath string) error {
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	logFile = f
	output = io.MultiWriter(os.Stdout, f)

	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.TextFormatter{ForceColors: true, FullTimestamp: true})
	log.StandardLogger().ReplaceHooks(make(log.LevelHooks))
	log.AddHook(&fileHook{w: f, formatter: &log.TextFormatter{DisableColors: true, FullTimestamp: true}})
	return nil
}

// Output returns a writer that duplicates writes to stdout and the log file.
// Subprocess output goes through here so the log file keeps it verbatim and
// in order.
func Output() io.Writer { return output }

// FileOnly returns a writer backed by the log file alone. Before Setup it
// discards writes.
func FileOnly() io.Writer {
	if logFile == nil {
		return io.Discard
	}
	return logFile
}

// Close flushes and closes the log file.
func Close() error {
	if logFile == nil {
		return nil
	}
	err := logFile.Sync()
	if cerr := logFile.Close(); err == nil {
		err = cerr
	}
	logFile = nil
	output = os.Stdout
	return err
}
