// Package report implements the append-only evidence sink every check writes to.
package report

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/hardenaudit/hardenaudit/internal/errors"
	"github.com/hardenaudit/hardenaudit/internal/log"
	"github.com/hardenaudit/hardenaudit/internal/util"
)

// Writer is what a check needs from the sink.
type Writer interface {
	Section(name string)
	Add(severity Severity, format string, args ...interface{}) Finding
}

// Sink appends report lines to a file (or any io.Writer). Appends are
// serialized so lines stay whole even if callers write concurrently.
type Sink struct {
	path string
	now  func() time.Time

	mu       sync.Mutex
	out      io.Writer
	file     *os.File
	section  string
	findings []Finding
	firstErr error
	failures int
}

// New returns a sink that will write to path once Init is called.
func New(path string) *Sink {
	return &Sink{path: path, now: time.Now}
}

// NewWriter returns a sink bound to w. Init writes the header to w directly.
func NewWriter(w io.Writer) *Sink {
	return &Sink{out: w, now: time.Now}
}

// SetClock overrides the timestamp source.
func (s *Sink) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Path returns the report file location, empty for writer-backed sinks.
func (s *Sink) Path() string {
	return s.path
}

// Init creates or truncates the report and writes the header line.
// A failure here is the only fatal sink error: there is nowhere to write.
func (s *Sink) Init(runLabel, runID string) error {
	s.mu.Lock()
	if s.path != "" {
		if err := util.EnsureParentDir(s.path); err != nil {
			s.mu.Unlock()
			return errors.Wrap(errors.ErrReportUnavailable, "create report directory for %s: %v", s.path, err)
		}
		if s.file != nil {
			_ = s.file.Close()
		}
		f, err := os.Create(s.path)
		if err != nil {
			s.mu.Unlock()
			return errors.Wrap(errors.ErrReportUnavailable, "create %s: %v", s.path, err)
		}
		s.file = f
		s.out = f
	}
	if s.out == nil {
		s.mu.Unlock()
		return errors.Wrap(errors.ErrReportUnavailable, "sink has no destination")
	}
	s.findings = nil
	s.section = ""
	s.firstErr = nil
	s.failures = 0
	header := fmt.Sprintf("%s - %s (run %s)", runLabel, s.now().Format("2006-01-02 15:04:05 MST"), runID)
	s.mu.Unlock()

	if err := s.Record(header); err != nil {
		return err
	}
	return s.Record("")
}

// Record appends a single line. Write failures are logged and remembered but
// never abort the run.
func (s *Sink) Record(line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recordLocked(line)
}

func (s *Sink) recordLocked(line string) error {
	if s.out == nil {
		err := errors.Wrap(errors.ErrReportUnavailable, "report not initialized")
		s.noteFailure(err)
		return err
	}
	if _, err := io.WriteString(s.out, line+"\n"); err != nil {
		wrapped := errors.Wrap(errors.ErrFileOperation, "append to report: %v", err)
		s.noteFailure(wrapped)
		return wrapped
	}
	return nil
}

func (s *Sink) noteFailure(err error) {
	if s.firstErr == nil {
		s.firstErr = err
		l := log.Component("report")
		l.Warn().Err(err).Str("path", s.path).Msg("report write failed; continuing audit")
	}
	s.failures++
}

// Section writes a "### name ###" marker and attributes later findings to it.
func (s *Sink) Section(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.section = name
	_ = s.recordLocked("### " + name + " ###")
}

// CurrentSection returns the section later findings are attributed to.
func (s *Sink) CurrentSection() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.section
}

// Add records a finding under the current section.
func (s *Sink) Add(severity Severity, format string, args ...interface{}) Finding {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := Finding{
		Time:     s.now(),
		Section:  s.section,
		Severity: severity,
		Message:  fmt.Sprintf(format, args...),
	}
	s.findings = append(s.findings, f)
	_ = s.recordLocked(f.String())
	return f
}

// Findings returns a copy of every finding recorded since Init.
func (s *Sink) Findings() []Finding {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Finding, len(s.findings))
	copy(out, s.findings)
	return out
}

// FindingsIn returns the findings recorded under section.
func (s *Sink) FindingsIn(section string) []Finding {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Finding
	for _, f := range s.findings {
		if f.Section == section {
			out = append(out, f)
		}
	}
	return out
}

// Err returns the first write failure since Init, if any.
func (s *Sink) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.firstErr
}

// Failures counts the lines that could not be written.
func (s *Sink) Failures() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failures
}

// Close flushes and closes the report file.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	s.out = nil
	return err
}
