package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventSpawn EventType = "spawn"
	EventReap  EventType = "reap"
	EventKill  EventType = "kill"
	EventMode  EventType = "mode"
)

// Event is a single job lifecycle record.
type Event struct {
	TimestampMicros   int64     `json:"timestamp_micros"`
	SessionID         string    `json:"session_id,omitempty"`
	Type              EventType `json:"type"`
	Pid               int       `json:"pid,omitempty"`
	Argv              []string  `json:"argv,omitempty"`
	Background        bool      `json:"background,omitempty"`
	Status            string    `json:"status,omitempty"`
	BackgroundAllowed *bool     `json:"background_allowed,omitempty"`
}

// LogRecorder is a callback that stores events in an external datastore.
type LogRecorder func(e *Event) error

// Logger captures job events.
type Logger struct {
	Record LogRecorder
}

// NewJsonLinesLogRecorder creates a Logger that exports events in newline
// delimited JSON object format. It is safe for concurrent use.
func NewJsonLinesLogRecorder(w io.Writer) *Logger {
	var mu sync.Mutex

	return &Logger{
		Record: func(e *Event) error {
			entry, err := json.Marshal(e)
			if err != nil {
				return err
			}

			mu.Lock()
			defer mu.Unlock()
			_, err = fmt.Fprintln(w, string(entry))
			return err
		},
	}
}

// Nop discards every event.
func Nop() *Logger {
	return &Logger{Record: func(*Event) error { return nil }}
}

// NewSession creates a logger with a fresh session ID.
func (l *Logger) NewSession() *SessionLogger {
	return &SessionLogger{Logger: l, sessionID: uuid.NewString()}
}

// SessionLogger stamps events with a shared session ID.
type SessionLogger struct {
	*Logger
	sessionID string
	now       func() time.Time
}

func (l *SessionLogger) SessionID() string {
	return l.sessionID
}

func (l *SessionLogger) Record(e Event) error {
	now := time.Now
	if l.now != nil {
		now = l.now
	}

	e.TimestampMicros = now().UnixMicro()
	e.SessionID = l.sessionID
	return l.Logger.Record(&e)
}

// NewDebug returns the developer log; output is discarded unless enabled.
func NewDebug(w io.Writer, enabled bool) *log.Logger {
	if !enabled {
		w = io.Discard
	}
	return log.New(w, "[smallsh] ", log.LstdFlags|log.Lmicroseconds)
}
