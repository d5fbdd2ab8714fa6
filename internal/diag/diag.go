package diag

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"
)

type Kind string

const (
	KindAccepted      Kind = "accepted"
	KindSynonym       Kind = "synonym"
	KindLowConfidence Kind = "low_confidence_synonym"
	KindUnmatched     Kind = "unmatched"
	KindMalformed     Kind = "malformed"
	KindQueryError    Kind = "query_error"
	KindSource        Kind = "source"
	KindSourceError   Kind = "source_error"
)

// Event is one noteworthy occurrence during a run, attributed to a single
// candidate (or source). Index/Total carry batch progress when known.
type Event struct {
	Kind      Kind
	Candidate string
	Detail    string
	Index     int
	Total     int
}

// Sink receives diagnostic events. Implementations must be safe for use
// from a single logical thread of control; the pipeline never interleaves
// events for one candidate with another's.
type Sink interface {
	Record(ev Event)
}

// LoggerSink writes events as structured log lines.
type LoggerSink struct {
	logger *log.Logger
}

func NewLoggerSink(w io.Writer) *LoggerSink {
	return &LoggerSink{logger: log.NewWithOptions(w, log.Options{ReportTimestamp: true})}
}

func (s *LoggerSink) Record(ev Event) {
	msg := string(ev.Kind)
	if ev.Total > 0 {
		msg = fmt.Sprintf("[%d/%d] %s", ev.Index, ev.Total, ev.Kind)
	}

	keyvals := []any{}
	if ev.Candidate != "" {
		keyvals = append(keyvals, "candidate", ev.Candidate)
	}
	if ev.Detail != "" {
		keyvals = append(keyvals, "detail", ev.Detail)
	}

	switch ev.Kind {
	case KindLowConfidence, KindUnmatched, KindMalformed, KindSourceError:
		s.logger.Warn(msg, keyvals...)
	case KindQueryError:
		s.logger.Error(msg, keyvals...)
	default:
		s.logger.Info(msg, keyvals...)
	}
}

// CaptureSink collects events in memory for assertions in tests.
type CaptureSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *CaptureSink) Record(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	s.mu.Unlock()
}

func (s *CaptureSink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

func (s *CaptureSink) Count(kind Kind) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, ev := range s.events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}
