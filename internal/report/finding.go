package report

import (
	"time"
)

// Severity tags a Finding.
type Severity string

const (
	SeverityOK    Severity = "OK"
	SeverityWarn  Severity = "WARN"
	SeverityInfo  Severity = "INFO"
	SeverityFail  Severity = "FAIL"
	SeverityError Severity = "ERROR"
)

// Tag renders the bracketed form used in the report, e.g. "[WARN]".
func (s Severity) Tag() string {
	return "[" + string(s) + "]"
}

// Finding is one recorded observation. It is never modified after being written.
type Finding struct {
	Time     time.Time `json:"time"`
	Section  string    `json:"section"`
	Severity Severity  `json:"severity"`
	Message  string    `json:"message"`
}

// String renders the report line: "<RFC3339 time> [SEV] message".
func (f Finding) String() string {
	return f.Time.Format(time.RFC3339) + " " + f.Severity.Tag() + " " + f.Message
}
