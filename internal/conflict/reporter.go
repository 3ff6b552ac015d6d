package conflict

import "log"

// ErrorReporter receives internal resolution faults. Implementations are
// fire-and-forget; the resolver never waits on or retries a report.
type ErrorReporter interface {
	Report(kind, message string, context map[string]any)
}

type logReporter struct{}

// NewLogReporter returns a reporter that writes faults to the process log.
func NewLogReporter() ErrorReporter {
	return logReporter{}
}

func (logReporter) Report(kind, message string, context map[string]any) {
	log.Printf("[resolver] %s: %s (context: %v)", kind, message, context)
}
