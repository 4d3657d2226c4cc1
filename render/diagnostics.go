package render

import (
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

type Severity int

const (
	SeverityVerbose Severity = iota
	SeverityInfo
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityVerbose:
		return "verbose"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	}
	return "unknown"
}

type MessageType uint32

const (
	MessageGeneral MessageType = 1 << iota
	MessageValidation
	MessagePerformance
)

func (t MessageType) String() string {
	var names []string
	if t&MessageGeneral != 0 {
		names = append(names, "general")
	}
	if t&MessageValidation != 0 {
		names = append(names, "validation")
	}
	if t&MessagePerformance != 0 {
		names = append(names, "performance")
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}

// Diagnostic is a driver or validation layer message. All strings are copies
// owned by the receiver.
type Diagnostic struct {
	Severity        Severity
	Type            MessageType
	MessageID       string
	MessageIDNumber int
	Message         string
}

// Reporter receives diagnostics synchronously on the thread that produced them.
type Reporter interface {
	Report(d Diagnostic)
}

type ReporterFunc func(d Diagnostic)

func (f ReporterFunc) Report(d Diagnostic) { f(d) }

// LogReporter writes diagnostics to a logrus logger at the matching level.
type LogReporter struct {
	Logger logrus.FieldLogger
}

func (r LogReporter) Report(d Diagnostic) {
	entry := r.Logger.WithFields(logrus.Fields{
		"type": d.Type.String(),
		"id":   d.MessageID,
	})

	switch d.Severity {
	case SeverityError:
		entry.Error(d.Message)
	case SeverityWarning:
		entry.Warn(d.Message)
	case SeverityInfo:
		entry.Info(d.Message)
	default:
		entry.Debug(d.Message)
	}
}

// reporterGate forwards to a Reporter until it is closed. The instance closes
// it before the driver instance is destroyed so no message outlives it.
type reporterGate struct {
	mu       sync.Mutex
	reporter Reporter
	closed   bool
}

func newReporterGate(reporter Reporter) *reporterGate {
	return &reporterGate{reporter: reporter}
}

func (g *reporterGate) Report(d Diagnostic) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return
	}
	g.reporter.Report(d)
}

func (g *reporterGate) close() {
	g.mu.Lock()
	g.closed = true
	g.mu.Unlock()
}
